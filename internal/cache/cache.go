package cache

import (
	"sync"
	"time"
)

// DefaultTTL is how long entries live when Set is called without an explicit TTL.
const DefaultTTL = 5 * time.Minute

type entry struct {
	value  any
	expiry time.Time
}

// Cache is a process-local TTL cache for fetched feed data. Entries are
// evicted lazily on read; there is no background sweep. A stale read under
// concurrent requests at worst triggers a duplicate fetch, which is
// self-correcting.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Set stores value under key until now+ttl. ttl <= 0 means DefaultTTL.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c.mu.Lock()
	c.entries[key] = entry{value: value, expiry: c.now().Add(ttl)}
	c.mu.Unlock()
}

// Get returns the value for key if present and not expired. An expired entry
// is evicted and reported as absent.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiry) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}
