package db

import (
	"context"
	"time"
)

// Store is the configuration store facade combining all sub-interfaces.
type Store interface {
	Pinger
	JSONStore
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// JSONStore provides JSON document operations.
type JSONStore interface {
	JSONSet(ctx context.Context, key string, data []byte) error
	JSONGet(ctx context.Context, key string) ([]byte, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// KVStore provides simple key-value operations with expiry.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Backend is the search backend facade.
type Backend interface {
	Pinger
	Searcher
	Close() error
}

// Searcher executes compiled queries.
type Searcher interface {
	Search(ctx context.Context, q *Query) (*Response, error)
}

// Indexer loads documents into a backend that owns its index.
type Indexer interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	IndexDocuments(ctx context.Context, core string, docs []Document) error
	DeleteDocuments(ctx context.Context, core string, ids []string) error
}
