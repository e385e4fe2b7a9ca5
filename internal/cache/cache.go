// Package cache provides the in-process memoization layer for expensive model
// calls: unbounded response caches keyed by request fingerprints, and a small
// LRU for extracted file text.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strings"
	"sync"
	"time"

	"pathfinder/internal/domain"
)

type entry struct {
	value     *domain.ChatResponse
	createdAt time.Time
}

// ResponseCache memoizes full chat responses by a derived key. Entries are
// never invalidated except by process restart; reads take a shared lock since
// entries are write-once-per-key in practice.
type ResponseCache struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewResponseCache creates an empty response cache.
func NewResponseCache() *ResponseCache {
	return &ResponseCache{entries: make(map[string]entry)}
}

// Get returns the cached response for key, if present.
func (c *ResponseCache) Get(key string) (*domain.ChatResponse, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Put stores a response under key. Callers must only store successful results.
func (c *ResponseCache) Put(key string, value *domain.ChatResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, createdAt: time.Now()}
}

// Len returns the number of cached entries.
func (c *ResponseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// QuizKey derives an order-independent cache key from quiz answers: the
// answers are sorted before joining so semantically identical answer sets hit
// the same entry regardless of option order.
func QuizKey(model string, answers []string) string {
	sorted := make([]string, len(answers))
	copy(sorted, answers)
	sort.Strings(sorted)
	return model + "_" + strings.Join(sorted, "|")
}

// CVKey derives a cache key from the model name and a content hash of the raw
// CV text, so identical text and model always address the same entry.
func CVKey(model, cvText string) string {
	sum := md5.Sum([]byte(cvText))
	return "cv_" + model + "_" + hex.EncodeToString(sum[:])
}

// ContentKey derives a cache key from raw bytes, used for uploaded files.
func ContentKey(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
