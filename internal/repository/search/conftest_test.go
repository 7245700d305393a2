package search

import (
	"context"
	"time"

	"github.com/openviglet/sitesearch/internal/db"
)

// mockBackend implements the consumer interface for tests.
type mockBackend struct {
	calls    int
	searchFn func(ctx context.Context, q *db.Query) (*db.Response, error)
}

func (m *mockBackend) Search(ctx context.Context, q *db.Query) (*db.Response, error) {
	m.calls++
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return &db.Response{}, nil
}

// mockCache is an in-memory cache; fn fields override single calls.
type mockCache struct {
	data  map[string][]byte
	ttls  map[string]time.Duration
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockCache) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}
