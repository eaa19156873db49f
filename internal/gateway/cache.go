package gateway

import (
	"sync"
	"time"
)

type cacheEntry struct {
	value     any
	fetchedAt time.Time
	expires   time.Time
}

// Cache is a TTL store keyed by (endpoint, normalized params). Get never
// returns an entry older than its TTL; Last ignores age and exists only for
// the rate-limited and failure degradation paths. The clock is injectable so
// TTL boundaries can be tested without sleeping.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	now     func() time.Time
}

// NewCache creates a Cache. A nil clock defaults to time.Now.
func NewCache(now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{entries: make(map[string]cacheEntry), now: now}
}

// Get returns the cached value for key if it has not expired.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || c.now().After(e.expires) {
		return nil, false
	}
	return e.value, true
}

// Last returns the most recently stored value for key regardless of age.
func (c *Cache) Last(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key with the given TTL.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fetched := c.now()
	c.entries[key] = cacheEntry{value: value, fetchedAt: fetched, expires: fetched.Add(ttl)}
}
