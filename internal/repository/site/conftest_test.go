package site

import (
	"context"
	"path"
	"testing"

	"github.com/openviglet/sitesearch/internal/db"
)

// mockStore keeps documents in a map; fn fields override single calls.
type mockStore struct {
	docs      map[string][]byte
	jsonSetFn func(ctx context.Context, key string, data []byte) error
	jsonGetFn func(ctx context.Context, key string) ([]byte, error)
	scanFn    func(ctx context.Context, pattern string) ([]string, error)
}

func (m *mockStore) JSONSet(ctx context.Context, key string, data []byte) error {
	if m.jsonSetFn != nil {
		return m.jsonSetFn(ctx, key, data)
	}
	m.docs[key] = data
	return nil
}

func (m *mockStore) JSONGet(ctx context.Context, key string) ([]byte, error) {
	if m.jsonGetFn != nil {
		return m.jsonGetFn(ctx, key)
	}
	data, ok := m.docs[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return data, nil
}

func (m *mockStore) Del(_ context.Context, key string) error {
	delete(m.docs, key)
	return nil
}

func (m *mockStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.docs[key]
	return ok, nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	var keys []string
	for k := range m.docs {
		if ok, _ := path.Match(pattern, k); ok {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{docs: make(map[string][]byte)}
	return New(ms), ms
}

func testDefinition() Definition {
	return Definition{
		Name:        "docs",
		Description: "Documentation portal",
		Locales:     []LocaleDef{{Tag: "en-US", Core: "docs_en"}, {Tag: "pt-BR", Core: "docs_pt"}},
		Search: SearchDef{
			FacetEnabled:     true,
			FacetType:        "or",
			HighlightEnabled: true,
			Wildcard:         "always",
			DefaultSortField: "published",
			QueryFields:      []string{"title^2 text"},
		},
		Fields: []FieldDef{
			{Name: "title", Type: "text", Highlight: true},
			{Name: "text", Type: "TEXT", Highlight: true, Similarity: true},
			{Name: "type", Facet: true, FacetName: "Type"},
			{Name: "published", Type: "date", Facet: true, FacetRange: "month"},
			{Name: "person", Kind: "ner", Type: "array", Facet: true},
		},
		Rankings: []RankingDef{
			{Name: "recent", Weight: 2, Conditions: []ConditionDef{{Attribute: "published", Value: "asc"}}},
		},
		Targeting: &TargetingDef{Terms: []string{"audience:public"}},
	}
}
