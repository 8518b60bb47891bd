package projection

import "sync"

// Cache memoizes projection results keyed by a snapshot digest. Dashboard
// clients refresh aggressively, so identical back-to-back requests are
// common; anything else is a miss and recomputation is cheap. The cache is
// bounded and evicts arbitrarily once full, which is adequate at this size.
type Cache struct {
	mu      sync.Mutex
	entries map[string][]*ChartSample
	max     int
}

// NewCache creates a cache holding at most max entries.
func NewCache(max int) *Cache {
	if max <= 0 {
		max = 64
	}
	return &Cache{
		entries: make(map[string][]*ChartSample, max),
		max:     max,
	}
}

// Get returns the cached series for key, if present.
func (c *Cache) Get(key string) ([]*ChartSample, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	samples, ok := c.entries[key]
	return samples, ok
}

// Put stores a series under key, evicting one arbitrary entry when full.
func (c *Cache) Put(key string, samples []*ChartSample) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.max {
		for k := range c.entries {
			delete(c.entries, k)
			break
		}
	}
	c.entries[key] = samples
}

// Len returns the current number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
