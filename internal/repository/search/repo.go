// Package search adapts a db.Backend to the search engine, optionally
// caching backend responses in a key-value store.
package search

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/openviglet/sitesearch/internal/db"
	"github.com/openviglet/sitesearch/internal/domain"
)

var cacheKeyPrefix = domain.KeyPrefix + "resp:"

// backend is the consumer interface for query execution (ISP).
type backend interface {
	Search(ctx context.Context, q *db.Query) (*db.Response, error)
}

// cache is the consumer interface for the response cache (ISP).
type cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Repo implements usecase/search.Client.
type Repo struct {
	backend    backend
	cache      cache
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a search repository over a backend.
func New(b backend) *Repo {
	return &Repo{backend: b, logger: zap.NewNop()}
}

// WithCache enables the response cache. A non-positive ttl leaves it off.
// cacheTotal is a counter vec with label "result" ("hit"/"miss") and may be nil.
func (r *Repo) WithCache(c cache, ttl time.Duration, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Repo {
	if c == nil || ttl <= 0 {
		return r
	}
	r.cache = c
	r.ttl = ttl
	r.cacheTotal = cacheTotal
	if logger != nil {
		r.logger = logger
	}
	return r
}

// Copy returns an independent copy of q.
func (r *Repo) Copy(q *db.Query) *db.Query {
	return q.Clone()
}

// Execute runs q, serving and filling the cache when enabled. Cache
// failures are logged and never fail the search.
func (r *Repo) Execute(ctx context.Context, q *db.Query) (*db.Response, error) {
	if r.cache == nil {
		return r.search(ctx, q)
	}

	key, err := cacheKey(q)
	if err != nil {
		r.logger.Warn("Failed to hash query", zap.Error(err))
		return r.search(ctx, q)
	}
	if resp, ok := r.getFromCache(ctx, key); ok {
		r.incCache("hit")
		return resp, nil
	}
	r.incCache("miss")

	resp, err := r.search(ctx, q)
	if err != nil {
		return nil, err
	}
	r.putToCache(ctx, key, resp)
	return resp, nil
}

func (r *Repo) search(ctx context.Context, q *db.Query) (*db.Response, error) {
	resp, err := r.backend.Search(ctx, q)
	if errors.Is(err, db.ErrUnavailable) {
		return nil, fmt.Errorf("search core %s: %w: %w", q.Core, domain.ErrBackendUnavailable, err)
	}
	if err != nil {
		return nil, fmt.Errorf("search core %s: %w", q.Core, err)
	}
	return resp, nil
}

func (r *Repo) incCache(result string) {
	if r.cacheTotal != nil {
		r.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (r *Repo) getFromCache(ctx context.Context, key string) (*db.Response, bool) {
	data, err := r.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			r.logger.Warn("Failed to get cached response", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var resp db.Response
	if err := dec.Decode(&resp); err != nil {
		r.logger.Warn("Failed to parse cached response", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &resp, true
}

func (r *Repo) putToCache(ctx context.Context, key string, resp *db.Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		r.logger.Warn("Failed to encode response", zap.String("key", key), zap.Error(err))
		return
	}
	if err := r.cache.SetWithTTL(ctx, key, data, r.ttl); err != nil {
		r.logger.Warn("Failed to cache response", zap.String("key", key), zap.Error(err))
	}
}

// cacheKey hashes the compiled query. Equal queries share an entry.
func cacheKey(q *db.Query) (string, error) {
	data, err := json.Marshal(q)
	if err != nil {
		return "", err
	}
	h := sha256.Sum256(data)
	return cacheKeyPrefix + hex.EncodeToString(h[:]), nil
}
