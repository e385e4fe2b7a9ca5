// Package lang provides language detection and translation for the bilingual
// (English/Burmese) response path.
package lang

import (
	"context"
	"fmt"
	"html"
	"strings"

	"cloud.google.com/go/translate"
	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

// Detector detects the dominant language of a text by script and trigram
// analysis. It needs no external service.
type Detector struct{}

// NewDetector creates a detector.
func NewDetector() *Detector { return &Detector{} }

// Detect returns the ISO 639-1 code of the detected language, defaulting to
// "en" when detection is inconclusive.
func (d *Detector) Detect(text string) string {
	if strings.TrimSpace(text) == "" {
		return "en"
	}
	info := whatlanggo.Detect(text)
	if info.Lang < 0 {
		return "en"
	}
	if info.Lang == whatlanggo.Mya {
		return "my"
	}
	code := info.Lang.Iso6391()
	if code == "" {
		return "en"
	}
	return code
}

// GoogleTranslator translates text through the Google Cloud Translation API.
type GoogleTranslator struct {
	client *translate.Client
}

// NewGoogleTranslator creates a translator authenticated with apiKey.
func NewGoogleTranslator(ctx context.Context, apiKey string) (*GoogleTranslator, error) {
	client, err := translate.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create translate client: %w", err)
	}
	return &GoogleTranslator{client: client}, nil
}

// Translate translates text into the target language code.
func (t *GoogleTranslator) Translate(ctx context.Context, text, target string) (string, error) {
	tag, err := language.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid target language %q: %w", target, err)
	}
	translations, err := t.client.Translate(ctx, []string{text}, tag, nil)
	if err != nil {
		return "", fmt.Errorf("translation request failed: %w", err)
	}
	if len(translations) == 0 {
		return "", fmt.Errorf("translation returned no result")
	}
	return html.UnescapeString(translations[0].Text), nil
}

// Close releases the underlying client.
func (t *GoogleTranslator) Close() error {
	return t.client.Close()
}
