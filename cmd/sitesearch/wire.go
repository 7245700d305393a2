package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/openviglet/sitesearch/internal/config"
	"github.com/openviglet/sitesearch/internal/db"
	dbBleve "github.com/openviglet/sitesearch/internal/db/bleve"
	dbRedis "github.com/openviglet/sitesearch/internal/db/redis"
	dbSolr "github.com/openviglet/sitesearch/internal/db/solr"
	dbSQLite "github.com/openviglet/sitesearch/internal/db/sqlite"
	"github.com/openviglet/sitesearch/internal/metrics"
	searchrepo "github.com/openviglet/sitesearch/internal/repository/search"
	siterepo "github.com/openviglet/sitesearch/internal/repository/site"
	openaiSpeller "github.com/openviglet/sitesearch/internal/transport/openai"
	healthuc "github.com/openviglet/sitesearch/internal/usecase/health"
	searchuc "github.com/openviglet/sitesearch/internal/usecase/search"
)

// app owns every long-lived dependency. Close releases them in reverse order.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	store   db.Store
	backend db.Backend
	sites   *siterepo.Repo
	search  *searchuc.Service
	health  *healthuc.Service
}

// openStore connects the configuration store and waits until it answers.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (db.Store, error) {
	var (
		store db.Store
		err   error
	)
	switch cfg.Store.Driver {
	case config.StoreRedis, config.StoreValkey:
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Store.Addrs,
			Username: cfg.Store.Username,
			Password: cfg.Store.Password,
			DB:       cfg.Store.DB,
		})
	case config.StoreSQLite:
		store, err = dbSQLite.NewStore(dbSQLite.Config{Path: cfg.Store.SQLitePath})
	default:
		err = fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}

	timeout := time.Duration(cfg.Store.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, timeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("store not ready: %w", err)
	}
	logger.Info("Connected to configuration store",
		zap.String("driver", cfg.Store.Driver),
		zap.Strings("addrs", cfg.Store.Addrs),
	)
	return store, nil
}

// openBackend creates the search backend.
func openBackend(cfg config.Config) (db.Backend, error) {
	switch cfg.Backend.Driver {
	case config.BackendSolr:
		c, err := dbSolr.NewClient(dbSolr.Config{
			URL:      cfg.Backend.Solr.URL,
			Timeout:  cfg.Backend.Solr.Timeout(),
			Username: cfg.Backend.Solr.Username,
			Password: cfg.Backend.Solr.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("create solr client: %w", err)
		}
		return c, nil
	case config.BackendBleve:
		b, err := dbBleve.New(dbBleve.Config{Path: cfg.Backend.Bleve.Path})
		if err != nil {
			return nil, fmt.Errorf("open bleve backend: %w", err)
		}
		return b, nil
	}
	return nil, fmt.Errorf("unknown backend driver %q", cfg.Backend.Driver)
}

// newApp builds the full search stack.
func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	backend, err := openBackend(cfg)
	if err != nil {
		store.Close()
		return nil, err
	}

	sites := siterepo.New(store)
	cachedSites := siterepo.NewCached(sites, cfg.Cache.SiteSize, cfg.Cache.SiteTTL(), metrics.SiteCacheTotal)

	client := searchrepo.New(backend).
		WithCache(store, cfg.Cache.ResponseTTL(), metrics.ResponseCacheTotal, logger)

	// Pass a nil interface, not a typed nil pointer, when the speller is off.
	var speller searchuc.Speller
	if cfg.Speller.Enabled() {
		speller = openaiSpeller.NewSpeller(&openaiSpeller.Config{
			APIKey:  cfg.Speller.APIKey,
			BaseURL: cfg.Speller.BaseURL,
			Model:   cfg.Speller.Model,
			Logger:  logger,
		})
	}

	logger.Info("Search stack ready",
		zap.String("backend", cfg.Backend.Driver),
		zap.Bool("response_cache", cfg.Cache.ResponseTTLSec > 0),
		zap.Bool("speller", speller != nil),
	)

	return &app{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		backend: backend,
		sites:   sites,
		search:  searchuc.New(cachedSites, client, speller),
		health:  healthuc.New(store, backend),
	}, nil
}

// purgeLoop removes expired cache rows from stores that do not expire keys
// themselves. It returns when ctx is done.
func (a *app) purgeLoop(ctx context.Context) {
	p, ok := a.store.(interface {
		Purge(ctx context.Context) (int64, error)
	})
	if !ok || a.cfg.Store.IsKeyValue() || a.cfg.Cache.ResponseTTLSec <= 0 {
		return
	}

	ticker := time.NewTicker(a.cfg.Cache.PurgeInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.Purge(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Warn("cache purge failed", zap.Error(err))
				continue
			}
			if n > 0 {
				a.logger.Debug("purged expired cache entries", zap.Int64("count", n))
			}
		}
	}
}

func (a *app) Close() {
	if err := a.backend.Close(); err != nil {
		a.logger.Warn("close backend", zap.Error(err))
	}
	a.store.Close()
}
