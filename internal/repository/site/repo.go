// Package site stores site definitions as JSON documents.
package site

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/openviglet/sitesearch/internal/db"
	"github.com/openviglet/sitesearch/internal/domain"
	domsite "github.com/openviglet/sitesearch/internal/domain/site"
)

// store is the consumer interface for site documents (ISP).
type store interface {
	JSONSet(ctx context.Context, key string, data []byte) error
	JSONGet(ctx context.Context, key string) ([]byte, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo reads and writes sites under sitesearch:site:{name}.
type Repo struct {
	store store
}

// New creates a site repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Put creates or replaces a site.
func (r *Repo) Put(ctx context.Context, s *domsite.Site) error {
	data, err := json.Marshal(FromSite(s))
	if err != nil {
		return fmt.Errorf("marshal site %s: %w", s.Name(), err)
	}
	if err := r.store.JSONSet(ctx, siteKey(s.Name()), data); err != nil {
		return fmt.Errorf("json.set site %s: %w", s.Name(), err)
	}
	return nil
}

// Get loads a site by name.
func (r *Repo) Get(ctx context.Context, name string) (*domsite.Site, error) {
	data, err := r.store.JSONGet(ctx, siteKey(name))
	if errors.Is(err, db.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", domain.ErrSiteNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("json.get site %s: %w", name, err)
	}
	return decode(data)
}

// List returns every site ordered by name.
func (r *Repo) List(ctx context.Context) ([]*domsite.Site, error) {
	keys, err := r.store.Scan(ctx, siteKey("*"))
	if err != nil {
		return nil, fmt.Errorf("scan sites: %w", err)
	}
	sort.Strings(keys)

	sites := make([]*domsite.Site, 0, len(keys))
	for _, key := range keys {
		data, err := r.store.JSONGet(ctx, key)
		if errors.Is(err, db.ErrKeyNotFound) {
			// Deleted between SCAN and GET.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("json.get %s: %w", key, err)
		}
		s, err := decode(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", key, err)
		}
		sites = append(sites, s)
	}
	return sites, nil
}

// Delete removes a site.
func (r *Repo) Delete(ctx context.Context, name string) error {
	key := siteKey(name)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", domain.ErrSiteNotFound, name)
	}
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del site %s: %w", name, err)
	}
	return nil
}

func decode(data []byte) (*domsite.Site, error) {
	var d Definition
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("unmarshal site: %w", err)
	}
	s, err := d.ToSite()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSite, err)
	}
	return s, nil
}

func siteKey(name string) string {
	return domain.KeyPrefix + "site:" + name
}
