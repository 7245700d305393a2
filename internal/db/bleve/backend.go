// Package bleve implements an embedded db.Backend and db.Indexer on bleve,
// one index per core.
package bleve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/openviglet/sitesearch/internal/db"
)

// Compile-time checks.
var (
	_ db.Backend = (*Backend)(nil)
	_ db.Indexer = (*Backend)(nil)
)

var errClosed = errors.New("bleve backend is closed")

// Config holds the backend location.
type Config struct {
	// Path is the directory holding one index per core. Empty keeps every
	// index in memory.
	Path string
}

// Backend serves searches from local bleve indexes.
type Backend struct {
	mu      sync.RWMutex
	path    string
	indexes map[string]*core
	closed  bool
}

// core is an open index with the text fields its mapping declares.
type core struct {
	index   bleve.Index
	textual map[string]bool
}

// New creates a backend. Existing indexes under cfg.Path are opened lazily.
func New(cfg Config) (*Backend, error) {
	if cfg.Path != "" {
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, fmt.Errorf("create index directory %s: %w", cfg.Path, err)
		}
	}
	return &Backend{path: cfg.Path, indexes: make(map[string]*core)}, nil
}

// Ping reports whether the backend is open.
func (b *Backend) Ping(_ context.Context) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return &db.Error{Op: db.OpPing, Err: errClosed}
	}
	return nil
}

// Close closes every open index.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	var errs []error
	for name, c := range b.indexes {
		if err := c.index.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", name, err))
		}
	}
	b.indexes = nil
	return errors.Join(errs...)
}

// CreateIndex creates a core with an explicit mapping.
func (b *Backend) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return &db.Error{Op: db.OpCreateIndex, Err: errClosed}
	}
	if _, err := b.lookupLocked(def.Name); err == nil {
		return &db.Error{Op: db.OpCreateIndex, Err: fmt.Errorf("%w: %s", db.ErrIndexExists, def.Name)}
	}
	if _, err := b.createLocked(def.Name, buildMapping(def)); err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// IndexDocuments adds or replaces documents. A missing core is created
// with a dynamic mapping.
func (b *Backend) IndexDocuments(_ context.Context, name string, docs []db.Document) error {
	if len(docs) == 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return &db.Error{Op: db.OpIndex, Err: errClosed}
	}

	c, err := b.lookupLocked(name)
	if errors.Is(err, db.ErrIndexNotFound) {
		c, err = b.createLocked(name, buildMapping(&db.IndexDefinition{Name: name}))
	}
	if err != nil {
		return &db.Error{Op: db.OpIndex, Err: err}
	}

	batch := c.index.NewBatch()
	for i, d := range docs {
		id := d.ID
		if id == "" {
			if v, ok := d.Get("id"); ok {
				id = fmt.Sprint(v)
			}
		}
		if id == "" {
			return &db.Error{Op: db.OpIndex, Err: fmt.Errorf("document %d has no id", i)}
		}
		body, err := indexable(id, d)
		if err != nil {
			return &db.Error{Op: db.OpIndex, Err: fmt.Errorf("document %s: %w", id, err)}
		}
		if err := batch.Index(id, body); err != nil {
			return &db.Error{Op: db.OpIndex, Err: fmt.Errorf("document %s: %w", id, err)}
		}
	}
	if err := c.index.Batch(batch); err != nil {
		return &db.Error{Op: db.OpIndex, Err: err}
	}
	return nil
}

// DeleteDocuments removes documents by id.
func (b *Backend) DeleteDocuments(_ context.Context, name string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return &db.Error{Op: db.OpDelete, Err: errClosed}
	}
	c, err := b.lookupLocked(name)
	if err != nil {
		return &db.Error{Op: db.OpDelete, Err: err}
	}
	batch := c.index.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
	}
	if err := c.index.Batch(batch); err != nil {
		return &db.Error{Op: db.OpDelete, Err: err}
	}
	return nil
}

// core returns an open index for reads.
func (b *Backend) core(name string) (*core, error) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return nil, errClosed
	}
	if c, ok := b.indexes[name]; ok {
		b.mu.RUnlock()
		return c, nil
	}
	b.mu.RUnlock()

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, errClosed
	}
	return b.lookupLocked(name)
}

// lookupLocked returns an open index, opening it from disk when needed.
func (b *Backend) lookupLocked(name string) (*core, error) {
	if c, ok := b.indexes[name]; ok {
		return c, nil
	}
	if b.path == "" || !db.IsValidIdentifier(name) {
		return nil, fmt.Errorf("%w: %s", db.ErrIndexNotFound, name)
	}
	idx, err := bleve.Open(b.dir(name))
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		return nil, fmt.Errorf("%w: %s", db.ErrIndexNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("open index %s: %w", name, err)
	}
	c := &core{index: idx, textual: textualFields(idx.Mapping())}
	b.indexes[name] = c
	return c, nil
}

func (b *Backend) createLocked(name string, m *mapping.IndexMappingImpl) (*core, error) {
	if !db.IsValidIdentifier(name) {
		return nil, fmt.Errorf("invalid core name %q", name)
	}
	var (
		idx bleve.Index
		err error
	)
	if b.path == "" {
		idx, err = bleve.NewMemOnly(m)
	} else {
		idx, err = bleve.New(b.dir(name), m)
	}
	if err != nil {
		return nil, fmt.Errorf("create index %s: %w", name, err)
	}
	c := &core{index: idx, textual: textualFields(m)}
	b.indexes[name] = c
	return c, nil
}

func (b *Backend) dir(name string) string {
	return filepath.Join(b.path, name+".bleve")
}

// storedField is one entry of the stored source, which keeps field order
// and repeated values.
type storedField struct {
	Name  string `json:"n"`
	Value any    `json:"v"`
}

// indexable flattens repeated names into lists and attaches the source.
func indexable(id string, d db.Document) (map[string]any, error) {
	body := make(map[string]any, len(d.Fields)+2)
	source := make([]storedField, 0, len(d.Fields)+1)
	hasID := false
	for _, f := range d.Fields {
		if f.Name == sourceField {
			continue
		}
		if f.Name == "id" {
			hasID = true
		}
		source = append(source, storedField{Name: f.Name, Value: f.Value})
		cur, ok := body[f.Name]
		if !ok {
			body[f.Name] = f.Value
			continue
		}
		if list, isList := cur.([]any); isList {
			body[f.Name] = append(list, f.Value)
		} else {
			body[f.Name] = []any{cur, f.Value}
		}
	}
	if !hasID {
		body["id"] = id
		source = append([]storedField{{Name: "id", Value: id}}, source...)
	}
	raw, err := json.Marshal(source)
	if err != nil {
		return nil, fmt.Errorf("encode source: %w", err)
	}
	body[sourceField] = string(raw)
	return body, nil
}
