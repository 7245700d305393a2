// Package index prepares backend cores from site field catalogs and loads
// documents into them.
package index

import (
	"context"
	"errors"
	"fmt"

	"github.com/openviglet/sitesearch/internal/db"
	domsite "github.com/openviglet/sitesearch/internal/domain/site"
)

// DefaultBatchSize is the number of documents sent per IndexDocuments call.
const DefaultBatchSize = 500

// indexer is the consumer interface for backends that own their index (ISP).
type indexer interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexDocuments(ctx context.Context, core string, docs []db.Document) error
	DeleteDocuments(ctx context.Context, core string, ids []string) error
}

// Repo loads site documents into an indexing backend.
type Repo struct {
	indexer   indexer
	batchSize int
}

// New creates an index repository.
func New(i indexer) *Repo {
	return &Repo{indexer: i, batchSize: DefaultBatchSize}
}

// WithBatchSize overrides the batch size. Non-positive values are ignored.
func (r *Repo) WithBatchSize(n int) *Repo {
	if n > 0 {
		r.batchSize = n
	}
	return r
}

// Prepare creates every core the site serves: the default core and one per
// locale. Cores that already exist are left untouched. It returns the cores
// it created.
func (r *Repo) Prepare(ctx context.Context, s *domsite.Site) ([]string, error) {
	var created []string
	for _, core := range Cores(s) {
		def, err := buildIndex(core, s.Catalog())
		if err != nil {
			return created, err
		}
		err = r.indexer.CreateIndex(ctx, def)
		if errors.Is(err, db.ErrIndexExists) {
			continue
		}
		if err != nil {
			return created, fmt.Errorf("create core %s: %w", core, err)
		}
		created = append(created, core)
	}
	return created, nil
}

// Load indexes docs into the core serving locale and returns that core.
func (r *Repo) Load(ctx context.Context, s *domsite.Site, locale string, docs []db.Document) (string, error) {
	core, _ := s.ResolveCore(locale)
	for start := 0; start < len(docs); start += r.batchSize {
		end := min(start+r.batchSize, len(docs))
		if err := r.indexer.IndexDocuments(ctx, core, docs[start:end]); err != nil {
			return core, fmt.Errorf("index documents %d-%d into %s: %w", start, end-1, core, err)
		}
	}
	return core, nil
}

// Remove deletes documents by id from the core serving locale.
func (r *Repo) Remove(ctx context.Context, s *domsite.Site, locale string, ids []string) (string, error) {
	core, _ := s.ResolveCore(locale)
	if err := r.indexer.DeleteDocuments(ctx, core, ids); err != nil {
		return core, fmt.Errorf("delete documents from %s: %w", core, err)
	}
	return core, nil
}

// Cores lists the site's default core followed by its locale cores, without duplicates.
func Cores(s *domsite.Site) []string {
	seen := map[string]bool{s.DefaultCore(): true}
	cores := []string{s.DefaultCore()}
	for _, l := range s.Locales() {
		if !seen[l.Core] {
			seen[l.Core] = true
			cores = append(cores, l.Core)
		}
	}
	return cores
}
