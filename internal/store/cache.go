package store

import (
	"sync"

	"github.com/aherelle/afriweather/internal/weather"
)

// Reader is the read side of the system of record.
type Reader interface {
	ReadAll() ([]weather.Reading, error)
}

// Cache memoizes a full-file scan until explicitly invalidated. The
// dashboard re-parses the whole file at most once per invalidation
// cycle instead of on every request.
type Cache struct {
	mu      sync.RWMutex
	reader  Reader
	loaded  bool
	entries []weather.Reading
}

// NewCache wraps the given reader.
func NewCache(reader Reader) *Cache {
	return &Cache{reader: reader}
}

// Readings returns the cached rows, loading them on first use.
func (c *Cache) Readings() ([]weather.Reading, error) {
	c.mu.RLock()
	if c.loaded {
		entries := c.entries
		c.mu.RUnlock()
		return entries, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return c.entries, nil
	}

	entries, err := c.reader.ReadAll()
	if err != nil {
		return nil, err
	}

	c.entries = entries
	c.loaded = true
	return entries, nil
}

// Invalidate drops the cached rows; the next Readings call re-scans.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
	c.entries = nil
}
