package sitesearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/openviglet/sitesearch/internal/db"
	dbBleve "github.com/openviglet/sitesearch/internal/db/bleve"
	dbRedis "github.com/openviglet/sitesearch/internal/db/redis"
	dbSolr "github.com/openviglet/sitesearch/internal/db/solr"
	dbSQLite "github.com/openviglet/sitesearch/internal/db/sqlite"
	"github.com/openviglet/sitesearch/internal/domain/search/request"
	"github.com/openviglet/sitesearch/internal/domain/search/result"
	domsite "github.com/openviglet/sitesearch/internal/domain/site"
	searchrepo "github.com/openviglet/sitesearch/internal/repository/search"
	siterepo "github.com/openviglet/sitesearch/internal/repository/site"
	openaiSpeller "github.com/openviglet/sitesearch/internal/transport/openai"
	searchuc "github.com/openviglet/sitesearch/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

const (
	backendSolr  = "solr"
	backendBleve = "bleve"
	storeRedis   = "redis"
	storeValkey  = "valkey"
	storeSQLite  = "sqlite"
)

// searcher runs one search for a site.
type searcher interface {
	Search(ctx context.Context, siteName string, req request.Request) (*result.Result, error)
}

// siteStore manages stored site definitions.
type siteStore interface {
	Put(ctx context.Context, s *domsite.Site) error
	Get(ctx context.Context, name string) (*domsite.Site, error)
	List(ctx context.Context) ([]*domsite.Site, error)
	Delete(ctx context.Context, name string) error
}

// Client is the sitesearch SDK entry point. It runs the search pipeline
// in-process against a Solr server or embedded bleve indexes.
type Client struct {
	store   db.Store
	backend db.Backend
	sites   siteStore
	cached  *siterepo.Cached
	search  searcher
}

// New creates a Client, connects the store and waits until it is ready.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	backend, err := createBackend(cfg)
	if err != nil {
		return nil, err
	}
	store, err := createStore(cfg)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	if err := store.WaitForReady(context.Background(), defaultReadinessTimeout); err != nil {
		store.Close()
		_ = backend.Close()
		return nil, fmt.Errorf("sitesearch: store not ready: %w", err)
	}

	return wireClient(store, backend, cfg), nil
}

func createBackend(cfg *clientConfig) (db.Backend, error) {
	switch cfg.backend {
	case backendSolr:
		c, err := dbSolr.NewClient(dbSolr.Config{
			URL:      cfg.solrURL,
			Timeout:  cfg.timeout,
			Username: cfg.solrUser,
			Password: cfg.solrPass,
		})
		if err != nil {
			return nil, fmt.Errorf("sitesearch: create solr client: %w", err)
		}
		return c, nil
	case backendBleve:
		b, err := dbBleve.New(dbBleve.Config{Path: cfg.blevePath})
		if err != nil {
			return nil, fmt.Errorf("sitesearch: open bleve: %w", err)
		}
		return b, nil
	case "":
		return nil, errors.New("sitesearch: backend required (use WithSolr or WithBleve)")
	default:
		return nil, fmt.Errorf("sitesearch: unknown backend %q", cfg.backend)
	}
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.store {
	case storeRedis, storeValkey:
		if len(cfg.addrs) == 0 {
			return nil, fmt.Errorf("sitesearch: %s address required", cfg.store)
		}
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("sitesearch: create %s store: %w", cfg.store, err)
		}
		return s, nil
	case storeSQLite:
		s, err := dbSQLite.NewStore(dbSQLite.Config{Path: cfg.sqlitePath})
		if err != nil {
			return nil, fmt.Errorf("sitesearch: create sqlite store: %w", err)
		}
		return s, nil
	case "":
		return nil, errors.New("sitesearch: store required (use WithRedis, WithValkey or WithSQLite)")
	default:
		return nil, fmt.Errorf("sitesearch: unknown store %q", cfg.store)
	}
}

func wireClient(store db.Store, backend db.Backend, cfg *clientConfig) *Client {
	sites := siterepo.New(store)
	cached := siterepo.NewCached(sites, cfg.siteCacheSize, cfg.siteCacheTTL, nil)
	client := searchrepo.New(backend).WithCache(store, cfg.responseTTL, nil, cfg.logger)

	var speller searchuc.Speller
	if cfg.spellerKey != "" {
		speller = openaiSpeller.NewSpeller(&openaiSpeller.Config{
			APIKey:  cfg.spellerKey,
			BaseURL: cfg.spellerURL,
			Model:   cfg.spellerModel,
			Logger:  cfg.logger,
		})
	}

	return &Client{
		store:   store,
		backend: backend,
		sites:   sites,
		cached:  cached,
		search:  searchuc.New(cached, client, speller),
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.backend != nil {
		_ = c.backend.Close()
	}
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks the store and the backend.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping store: %w", err)
	}
	if err := c.backend.Ping(ctx); err != nil {
		return fmt.Errorf("ping backend: %w", err)
	}
	return nil
}

// Search starts a search against the named site.
func (c *Client) Search(site string) *SearchBuilder {
	return &SearchBuilder{search: c.search, site: site, params: request.Params{Page: 1}}
}
