package index

import (
	"context"
	"testing"

	"github.com/openviglet/sitesearch/internal/db"
	domsite "github.com/openviglet/sitesearch/internal/domain/site"
	"github.com/openviglet/sitesearch/internal/domain/site/field"
)

// mockIndexer implements the consumer interface for tests.
type mockIndexer struct {
	createIndexFn     func(ctx context.Context, def *db.IndexDefinition) error
	indexDocumentsFn  func(ctx context.Context, core string, docs []db.Document) error
	deleteDocumentsFn func(ctx context.Context, core string, ids []string) error
}

func (m *mockIndexer) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockIndexer) IndexDocuments(ctx context.Context, core string, docs []db.Document) error {
	if m.indexDocumentsFn != nil {
		return m.indexDocumentsFn(ctx, core, docs)
	}
	return nil
}

func (m *mockIndexer) DeleteDocuments(ctx context.Context, core string, ids []string) error {
	if m.deleteDocumentsFn != nil {
		return m.deleteDocumentsFn(ctx, core, ids)
	}
	return nil
}

func testSite(t *testing.T) *domsite.Site {
	t.Helper()
	s, err := domsite.New(domsite.Params{
		Name:        "docs",
		DefaultCore: "docs_en",
		Locales: []domsite.Locale{
			{Tag: "en-US", Core: "docs_en"},
			{Tag: "pt-BR", Core: "docs_pt"},
		},
		Fields: []field.Definition{
			{Name: "title", Type: field.Text, Enabled: true, Highlight: true},
			{Name: "type", Type: field.String, Enabled: true, Facet: true},
			{Name: "published", Type: field.Date, Enabled: true},
			{Name: "views", Type: field.Long, Enabled: true},
			{Name: "featured", Type: field.Bool, Enabled: true},
			{Name: "person", Type: field.Array, Kind: field.KindNER, Enabled: true, Facet: true},
		},
	})
	if err != nil {
		t.Fatalf("new site: %v", err)
	}
	return s
}
