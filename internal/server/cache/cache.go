// Package cache memoizes resolution responses for the HTTP server using
// patrickmn/go-cache. A zero TTL disables caching.
package cache

import (
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache is a TTL cache with hit/miss accounting.
type Cache struct {
	store   *gocache.Cache
	enabled bool
	hits    atomic.Int64
	misses  atomic.Int64
}

// New creates a cache. A ttl of zero or less yields a disabled cache whose
// Get always misses.
func New(ttl, cleanupInterval time.Duration) *Cache {
	if ttl <= 0 {
		return &Cache{store: gocache.New(gocache.NoExpiration, 0)}
	}
	return &Cache{store: gocache.New(ttl, cleanupInterval), enabled: true}
}

// Enabled reports whether values are retained.
func (c *Cache) Enabled() bool {
	return c.enabled
}

// Get retrieves a value.
func (c *Cache) Get(key string) (any, bool) {
	if !c.enabled {
		return nil, false
	}
	v, ok := c.store.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// Set stores a value with the default TTL.
func (c *Cache) Set(key string, value any) {
	if !c.enabled {
		return
	}
	c.store.Set(key, value, gocache.DefaultExpiration)
}

// Delete removes a value.
func (c *Cache) Delete(key string) {
	c.store.Delete(key)
}

// DeletePrefix removes every key starting with prefix.
func (c *Cache) DeletePrefix(prefix string) {
	for k := range c.store.Items() {
		if strings.HasPrefix(k, prefix) {
			c.store.Delete(k)
		}
	}
}

// Clear removes all values.
func (c *Cache) Clear() {
	c.store.Flush()
}

// ItemCount returns the number of cached values, including expired ones not
// yet cleaned up.
func (c *Cache) ItemCount() int {
	return c.store.ItemCount()
}

// Stats are cache counters.
type Stats struct {
	Enabled   bool  `json:"enabled"`
	ItemCount int   `json:"item_count"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
}

// GetStats returns current counters.
func (c *Cache) GetStats() Stats {
	return Stats{
		Enabled:   c.enabled,
		ItemCount: c.store.ItemCount(),
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
	}
}

// Key builds a cache key from a scope and a query. Query parameters are
// encoded in sorted order so equivalent requests share a key.
func Key(scope string, query url.Values) string {
	return scope + "?" + query.Encode()
}
