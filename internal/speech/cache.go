// Package speech synthesizes audio for flashcard text and caches the
// resulting clips in memory.
package speech

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"sync"

	"github.com/lingocards/lingocards/internal/settings"
)

// Cache is a bounded in-memory audio cache. Entries are whole clips keyed by
// the synthesis inputs; there is no eviction, only a full clear. Once the
// cache is full, new clips are simply not stored.
type Cache struct {
	mu       sync.RWMutex
	entries  map[string][]byte
	capacity int
}

// NewCache creates a Cache holding at most capacity clips.
func NewCache(capacity int) *Cache {
	return &Cache{
		entries:  make(map[string][]byte),
		capacity: capacity,
	}
}

// Key derives the deterministic cache key for one synthesis request. The text
// is lowercased and trimmed so trivially different spellings of the same word
// share a clip; every voice-affecting setting participates in the key.
func Key(text string, tts settings.TTSSettings) string {
	payload, _ := json.Marshal(struct {
		Text   string  `json:"text"`
		Model  string  `json:"model"`
		Voice  string  `json:"voice"`
		Speed  float64 `json:"speed"`
		Style  string  `json:"style"`
		Custom string  `json:"custom"`
	}{
		Text:   strings.ToLower(strings.TrimSpace(text)),
		Model:  tts.Model,
		Voice:  tts.Voice,
		Speed:  tts.Speed,
		Style:  tts.VoiceStyle,
		Custom: tts.CustomInstructions,
	})
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// Get returns the cached clip for key, if any.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	audio, ok := c.entries[key]
	return audio, ok
}

// Set stores a clip and reports whether it was stored. A full cache refuses
// new entries; overwriting an existing key is always allowed.
func (c *Cache) Set(key string, audio []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		return false
	}
	c.entries[key] = audio
	return true
}

// Size returns the number of cached clips.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear drops every entry and returns how many were removed.
func (c *Cache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := len(c.entries)
	c.entries = make(map[string][]byte)
	return removed
}
