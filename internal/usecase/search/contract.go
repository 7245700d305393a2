package search

import (
	"context"

	"github.com/openviglet/sitesearch/internal/db"
	"github.com/openviglet/sitesearch/internal/domain/site"
)

// Client is the backend capability the engine executes against.
type Client interface {
	Execute(ctx context.Context, q *db.Query) (*db.Response, error)
	Copy(q *db.Query) *db.Query
}

// SiteReader provides read-only site configuration.
type SiteReader interface {
	Get(ctx context.Context, name string) (*site.Site, error)
}

// Speller proposes a corrected query when the backend has none.
type Speller interface {
	Correct(ctx context.Context, query, locale string) (string, error)
}
