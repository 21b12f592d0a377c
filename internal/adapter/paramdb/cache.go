package paramdb

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/couchcryptid/gribmeta/internal/observability"
	"github.com/couchcryptid/gribmeta/internal/pipeline"
	"github.com/jonboulle/clockwork"
)

// CachedResolver wraps a resolver with an in-memory TTL cache. Parameter
// tables change rarely, so hits vastly outnumber registry round trips.
type CachedResolver struct {
	inner   pipeline.ParamResolver
	ttl     time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	info    pipeline.ParamInfo
	expires time.Time
}

// NewCachedResolver creates a cache decorator around a resolver.
func NewCachedResolver(inner pipeline.ParamResolver, ttl time.Duration, metrics *observability.Metrics) *CachedResolver {
	return &CachedResolver{
		inner:   inner,
		ttl:     ttl,
		clock:   clockwork.NewRealClock(),
		metrics: metrics,
		entries: make(map[string]cacheEntry),
	}
}

// WithClock swaps the cache's time source, for tests.
func (c *CachedResolver) WithClock(clock clockwork.Clock) *CachedResolver {
	c.clock = clock
	return c
}

func (c *CachedResolver) Lookup(ctx context.Context, discipline, category, number int) (pipeline.ParamInfo, error) {
	key := fmt.Sprintf("%d/%d/%d", discipline, category, number)

	if info, ok := c.get(key); ok {
		c.metrics.RegistryCache.WithLabelValues("hit").Inc()
		return info, nil
	}
	c.metrics.RegistryCache.WithLabelValues("miss").Inc()

	info, err := c.inner.Lookup(ctx, discipline, category, number)
	if err != nil {
		return info, err
	}
	// Only cache known identities so a registry that learns a parameter
	// later is consulted again.
	if info != (pipeline.ParamInfo{}) {
		c.put(key, info)
	}
	return info, nil
}

func (c *CachedResolver) get(key string) (pipeline.ParamInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return pipeline.ParamInfo{}, false
	}
	if c.clock.Now().After(e.expires) {
		delete(c.entries, key)
		return pipeline.ParamInfo{}, false
	}
	return e.info, true
}

func (c *CachedResolver) put(key string, info pipeline.ParamInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{info: info, expires: c.clock.Now().Add(c.ttl)}
}
