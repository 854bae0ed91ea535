package loader

import (
	"sync"

	"github.com/stwalsh4118/housingdash/api/internal/config"
	"github.com/stwalsh4118/housingdash/api/internal/models"
)

// LoadFunc reads a transaction table. It matches Load.
type LoadFunc func(path string, county config.CountyConfig) ([]models.Transaction, LoadStats, error)

// Cache memoizes loaded record sets by source path.
// Source tables do not change while the server runs, so an entry lives for
// the life of the process unless Invalidate is called. Failed loads are not
// cached. The returned slices are shared and must be treated as read-only.
type Cache struct {
	load    LoadFunc
	entries map[string]cacheEntry
	mu      sync.Mutex
}

type cacheEntry struct {
	records []models.Transaction
	stats   LoadStats
}

// NewCache creates a Cache backed by Load.
func NewCache() *Cache {
	return NewCacheWithLoader(Load)
}

// NewCacheWithLoader creates a Cache backed by a custom load function.
func NewCacheWithLoader(load LoadFunc) *Cache {
	return &Cache{
		load:    load,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the records for path, loading them on first use.
// The lock is held across the load so concurrent first requests for the
// same county read the file once.
func (c *Cache) Get(path string, county config.CountyConfig) ([]models.Transaction, LoadStats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[path]; ok {
		return e.records, e.stats, nil
	}

	records, stats, err := c.load(path, county)
	if err != nil {
		return nil, stats, err
	}

	c.entries[path] = cacheEntry{records: records, stats: stats}
	return records, stats, nil
}

// Invalidate drops the entry for path so the next Get reloads it.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}

// Len returns the number of cached tables.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
