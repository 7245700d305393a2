package search

import (
	"context"
	"sync"
	"testing"

	"github.com/openviglet/sitesearch/internal/db"
	"github.com/openviglet/sitesearch/internal/domain"
	"github.com/openviglet/sitesearch/internal/domain/search/boost"
	"github.com/openviglet/sitesearch/internal/domain/search/request"
	"github.com/openviglet/sitesearch/internal/domain/site"
	"github.com/openviglet/sitesearch/internal/domain/site/field"
)

// --- mocks ---

type mockClient struct {
	mu        sync.Mutex
	executeFn func(ctx context.Context, q *db.Query) (*db.Response, error)
	queries   []*db.Query
}

func (m *mockClient) Execute(ctx context.Context, q *db.Query) (*db.Response, error) {
	m.mu.Lock()
	m.queries = append(m.queries, q)
	m.mu.Unlock()
	if m.executeFn != nil {
		return m.executeFn(ctx, q)
	}
	return &db.Response{}, nil
}

func (m *mockClient) Copy(q *db.Query) *db.Query { return q.Clone() }

func (m *mockClient) texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.queries))
	for i, q := range m.queries {
		out[i] = q.Text
	}
	return out
}

type mockSites struct {
	sites map[string]*site.Site
}

func (m *mockSites) Get(_ context.Context, name string) (*site.Site, error) {
	if s, ok := m.sites[name]; ok {
		return s, nil
	}
	return nil, domain.ErrSiteNotFound
}

type mockSpeller struct {
	correctFn func(ctx context.Context, query, locale string) (string, error)
	calls     int
}

func (m *mockSpeller) Correct(ctx context.Context, query, locale string) (string, error) {
	m.calls++
	if m.correctFn != nil {
		return m.correctFn(ctx, query, locale)
	}
	return "", nil
}

// --- fixtures ---

func testFields() []field.Definition {
	return []field.Definition{
		{Name: "id", Type: field.String, Enabled: true},
		{Name: "title", Type: field.Text, Enabled: true, Highlight: true, Similarity: true, Position: 10},
		{Name: "text", Type: field.Text, Enabled: true, Highlight: true, Similarity: true},
		{Name: "type", Type: field.String, Enabled: true, Facet: true, FacetName: "Content Type", Position: 2},
		{Name: "tag", Type: field.String, Enabled: true, Facet: true, FacetType: field.Or, FacetItemType: field.Or, Position: 3},
		{Name: "person", Type: field.String, Kind: field.KindNER, Enabled: true, Facet: true, Position: 4},
		{Name: "published", Type: field.Date, Enabled: true, Facet: true, FacetRange: field.RangeMonth, Position: 1},
		{Name: "views", Type: field.Int, Enabled: true, Highlight: true},
		{Name: "url", Type: field.String, Enabled: true, Required: true, DefaultValue: "/"},
		{Name: "modified", Type: field.Date, Enabled: true},
	}
}

func testParams() site.Params {
	return site.Params{
		Name:        "docs",
		DefaultCore: "docs_en",
		Locales: []site.Locale{
			{Tag: "en-US", Core: "docs_en"},
			{Tag: "pt-BR", Core: "docs_pt"},
		},
		Search: site.SearchConfig{
			FacetEnabled:     true,
			FacetType:        field.And,
			FacetItemType:    field.Or,
			ItemsPerFacet:    20,
			FacetSort:        field.SortCount,
			HighlightEnabled: true,
			HighlightPre:     "<em>",
			HighlightPost:    "</em>",
			Wildcard:         site.WildcardOnEmpty,
			ExactMatch:       true,
			ExactMatchField:  "title_exact",
			DefaultSortField: "modified",
			RowsPerPage:      10,
			MLT:              true,
			SpellCheck:       true,
			QueryFields:      []string{"title^2", "text"},
		},
		Fields: testFields(),
		Rankings: []boost.Expression{
			{Name: "us", Weight: 2.5, Conditions: []boost.Condition{{Attribute: "region", Value: "US"}}},
		},
	}
}

func newTestSite(t *testing.T, mutate func(p *site.Params)) *site.Site {
	t.Helper()
	p := testParams()
	if mutate != nil {
		mutate(&p)
	}
	s, err := site.New(p)
	if err != nil {
		t.Fatalf("site.New: %v", err)
	}
	return s
}

func newTestRequest(t *testing.T, p request.Params) request.Request {
	t.Helper()
	r, err := request.New(p)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return r
}

func doc(id string, fields ...db.DocField) db.Document {
	return db.Document{ID: id, Fields: append([]db.DocField{{Name: "id", Value: id}}, fields...)}
}
