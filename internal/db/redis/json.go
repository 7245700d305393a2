package redis

import (
	"context"

	"github.com/redis/rueidis"

	"github.com/openviglet/sitesearch/internal/db"
)

// rootPath addresses the whole JSON document.
const rootPath = "$"

// JSONSet replaces the JSON document stored at key.
func (s *Store) JSONSet(ctx context.Context, key string, data []byte) error {
	cmd := s.b().JsonSet().Key(key).Path(rootPath).Value(string(data)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpJSONSet, Err: err}
	}
	return nil
}

// JSONGet retrieves the JSON document stored at key.
func (s *Store) JSONGet(ctx context.Context, key string) ([]byte, error) {
	cmd := s.b().JsonGet().Key(key).Build()
	raw, err := s.do(ctx, cmd).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, db.ErrKeyNotFound
		}
		return nil, &db.Error{Op: db.OpJSONGet, Err: err}
	}
	if raw == "" {
		return nil, db.ErrKeyNotFound
	}
	return []byte(raw), nil
}
