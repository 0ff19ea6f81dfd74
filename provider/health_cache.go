package provider

import (
	"context"
	"sync"
	"time"
)

// HealthCache memoizes a provider's HealthCheck result for a TTL so the
// strategy selector (which may consult health on every action) doesn't
// hammer every provider's HealthCheck on every selection.
type HealthCache struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]cachedHealth
}

type cachedHealth struct {
	health    Health
	checkedAt time.Time
}

// NewHealthCache builds a cache with the given TTL. A non-positive TTL
// disables caching (every call checks live).
func NewHealthCache(ttl time.Duration) *HealthCache {
	return &HealthCache{ttl: ttl, entries: make(map[string]cachedHealth)}
}

// Check returns p's health, either from cache (if fresh) or by calling
// HealthCheck and caching the result.
func (c *HealthCache) Check(ctx context.Context, p Provider) Health {
	name := p.Name()

	c.mu.Lock()
	if c.ttl > 0 {
		if entry, ok := c.entries[name]; ok && time.Since(entry.checkedAt) < c.ttl {
			c.mu.Unlock()
			return entry.health
		}
	}
	c.mu.Unlock()

	health := p.HealthCheck(ctx)

	c.mu.Lock()
	c.entries[name] = cachedHealth{health: health, checkedAt: time.Now()}
	c.mu.Unlock()

	return health
}

// Invalidate drops any cached entry for name, forcing the next Check to
// hit the provider live. Nothing in the engine calls it; circuit breaker
// state does not feed into this cache.
func (c *HealthCache) Invalidate(name string) {
	c.mu.Lock()
	delete(c.entries, name)
	c.mu.Unlock()
}
