package site

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"

	domsite "github.com/openviglet/sitesearch/internal/domain/site"
)

// Cache defaults.
const (
	DefaultCacheSize = 256
	DefaultCacheTTL  = time.Minute
)

type reader interface {
	Get(ctx context.Context, name string) (*domsite.Site, error)
}

// Cached keeps recently read sites in memory. Sites are immutable, so
// cached values are shared between requests. Misses are not cached.
type Cached struct {
	inner      reader
	cache      *expirable.LRU[string, *domsite.Site]
	cacheTotal *prometheus.CounterVec
}

// NewCached wraps inner with an LRU of size entries that expire after ttl.
// cacheTotal is a counter vec with label "result" ("hit"/"miss") and may be nil.
func NewCached(inner reader, size int, ttl time.Duration, cacheTotal *prometheus.CounterVec) *Cached {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cached{
		inner:      inner,
		cache:      expirable.NewLRU[string, *domsite.Site](size, nil, ttl),
		cacheTotal: cacheTotal,
	}
}

// Get returns a cached site or loads it.
func (c *Cached) Get(ctx context.Context, name string) (*domsite.Site, error) {
	if s, ok := c.cache.Get(name); ok {
		c.inc("hit")
		return s, nil
	}
	c.inc("miss")

	s, err := c.inner.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	c.cache.Add(name, s)
	return s, nil
}

// Invalidate drops a site so the next Get reloads it.
func (c *Cached) Invalidate(name string) {
	c.cache.Remove(name)
}

func (c *Cached) inc(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}
