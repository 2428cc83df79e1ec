// Package textcache keeps extracted document text keyed by a content fingerprint.
package textcache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/markdave123-py/Docsense/internal/core"
)

var _ core.TextCache = (*Cache)(nil)

// Fingerprint is the hex SHA-256 of the raw upload.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Stats is a point-in-time view of cache activity.
type Stats struct {
	Entries   int   `json:"entries"`
	Capacity  int   `json:"capacity"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
}

// Cache is a bounded LRU of extracted text. Concurrent loads of the same key
// are collapsed into one call. A zero capacity disables storage but still
// de-duplicates in-flight loads.
type Cache struct {
	entries  *lru.Cache[string, string]
	capacity int
	flights  singleflight.Group

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

func New(capacity int) (*Cache, error) {
	if capacity < 0 {
		return nil, fmt.Errorf("textcache: negative capacity %d", capacity)
	}
	c := &Cache{capacity: capacity}
	if capacity == 0 {
		return c, nil
	}

	entries, err := lru.NewWithEvict[string, string](capacity, func(key string, _ string) {
		c.evictions.Add(1)
		slog.Debug("text cache eviction", "fingerprint", key)
	})
	if err != nil {
		return nil, fmt.Errorf("textcache: %w", err)
	}
	c.entries = entries
	return c, nil
}

func (c *Cache) Get(key string) (string, bool) {
	if c.entries == nil {
		return "", false
	}
	return c.entries.Get(key)
}

func (c *Cache) Put(key, text string) {
	if c.entries == nil {
		return
	}
	c.entries.Add(key, text)
}

// GetOrLoad returns the cached text for key, or runs load exactly once across
// concurrent callers and stores a successful result. hit reports whether the
// value came from the cache without loading.
func (c *Cache) GetOrLoad(key string, load func() (string, error)) (text string, hit bool, err error) {
	if text, ok := c.Get(key); ok {
		c.hits.Add(1)
		return text, true, nil
	}

	v, err, _ := c.flights.Do(key, func() (any, error) {
		if text, ok := c.Get(key); ok {
			return text, nil
		}
		c.misses.Add(1)
		text, err := load()
		if err != nil {
			return "", err
		}
		c.Put(key, text)
		return text, nil
	})
	if err != nil {
		return "", false, err
	}
	return v.(string), false, nil
}

func (c *Cache) Stats() Stats {
	s := Stats{
		Capacity:  c.capacity,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
	if c.entries != nil {
		s.Entries = c.entries.Len()
	}
	return s
}
