package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// WikiSource fetches topic reference material from the Wikipedia REST API.
type WikiSource struct {
	baseURL string
	http    *http.Client
}

// NewWikiSource creates a Wikipedia-backed topic source.
func NewWikiSource() *WikiSource {
	return &WikiSource{
		baseURL: "https://en.wikipedia.org/api/rest_v1",
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Fetch returns the plain-text summary for topic, or "" when no page exists.
func (w *WikiSource) Fetch(ctx context.Context, topic string) (string, error) {
	title := url.PathEscape(strings.ReplaceAll(topic, " ", "_"))
	endpoint := w.baseURL + "/page/summary/" + title

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := w.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("wikipedia request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("wikipedia request failed: %d", resp.StatusCode)
	}

	var payload struct {
		Extract string `json:"extract"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode wikipedia response: %w", err)
	}
	return payload.Extract, nil
}
