package site

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/openviglet/sitesearch/internal/domain"
	domsite "github.com/openviglet/sitesearch/internal/domain/site"
	"github.com/openviglet/sitesearch/internal/domain/site/field"
)

func TestDefinition_ToSite(t *testing.T) {
	s, err := testDefinition().ToSite()
	if err != nil {
		t.Fatalf("ToSite: %v", err)
	}

	cfg := s.Search()
	if cfg.FacetType != field.Or {
		t.Errorf("FacetType = %s, want OR", cfg.FacetType)
	}
	if cfg.ItemsPerFacet != domsite.DefaultItemsPerFacet {
		t.Errorf("ItemsPerFacet = %d, want default", cfg.ItemsPerFacet)
	}
	if cfg.Wildcard != domsite.WildcardAlways {
		t.Errorf("Wildcard = %s", cfg.Wildcard)
	}

	d, ok := s.Catalog().Get("published")
	if !ok {
		t.Fatal("published missing")
	}
	if d.FacetRange != field.RangeMonth || !d.Enabled {
		t.Errorf("published = %+v", d)
	}
	if p, _ := s.Catalog().Get("person"); p.BackendName() != "turing_entity_person" {
		t.Errorf("person backend name = %s", p.BackendName())
	}
	if core, _ := s.ResolveCore("pt_BR"); core != "docs_pt" {
		t.Errorf("core = %s", core)
	}
	if got := s.Targeting().Terms; !reflect.DeepEqual(got, []string{"audience:public"}) {
		t.Errorf("targeting = %v", got)
	}
}

func TestDefinition_ToSiteInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Definition)
	}{
		{"bad name", func(d *Definition) { d.Name = "bad name" }},
		{"bad operator", func(d *Definition) { d.Search.FacetType = "xor" }},
		{"bad field operator", func(d *Definition) { d.Fields[0].FacetType = "xor" }},
		{"bad field type", func(d *Definition) { d.Fields[0].Type = "blob" }},
		{"range on text", func(d *Definition) { d.Fields[0].FacetRange = "DAY" }},
		{"duplicate field", func(d *Definition) { d.Fields = append(d.Fields, FieldDef{Name: "title"}) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := testDefinition()
			tt.mutate(&d)
			if _, err := d.ToSite(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestFromSite_RoundTrip(t *testing.T) {
	s, err := testDefinition().ToSite()
	if err != nil {
		t.Fatal(err)
	}
	back, err := FromSite(s).ToSite()
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if !reflect.DeepEqual(FromSite(s), FromSite(back)) {
		t.Errorf("definitions differ:\n%+v\n%+v", FromSite(s), FromSite(back))
	}
}

func TestPutGet(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()
	s, _ := testDefinition().ToSite()

	if err := repo.Put(ctx, s); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, ok := ms.docs["sitesearch:site:docs"]; !ok {
		t.Fatalf("unexpected keys: %v", ms.docs)
	}

	got, err := repo.Get(ctx, "docs")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name() != "docs" || got.Catalog().Len() != 5 {
		t.Errorf("got %s with %d fields", got.Name(), got.Catalog().Len())
	}
}

func TestGet_Errors(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, domain.ErrSiteNotFound) {
		t.Errorf("missing: got %v", err)
	}

	ms.docs["sitesearch:site:broken"] = []byte(`{"name":`)
	if _, err := repo.Get(ctx, "broken"); err == nil || errors.Is(err, domain.ErrSiteNotFound) {
		t.Errorf("broken json: got %v", err)
	}

	ms.docs["sitesearch:site:invalid"] = []byte(`{"name":"in valid"}`)
	if _, err := repo.Get(ctx, "invalid"); !errors.Is(err, domain.ErrInvalidSite) {
		t.Errorf("invalid: got %v", err)
	}

	ms.jsonGetFn = func(context.Context, string) ([]byte, error) { return nil, errors.New("connection lost") }
	if _, err := repo.Get(ctx, "docs"); err == nil || errors.Is(err, domain.ErrSiteNotFound) {
		t.Errorf("store failure: got %v", err)
	}
}

func TestPut_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.jsonSetFn = func(context.Context, string, []byte) error { return errors.New("read only") }
	s, _ := testDefinition().ToSite()
	if err := repo.Put(context.Background(), s); err == nil {
		t.Fatal("expected error")
	}
}

func TestList(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		d := testDefinition()
		d.Name = name
		s, err := d.ToSite()
		if err != nil {
			t.Fatal(err)
		}
		if err := repo.Put(ctx, s); err != nil {
			t.Fatal(err)
		}
	}
	ms.docs["other:key"] = []byte("{}")

	sites, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var names []string
	for _, s := range sites {
		names = append(names, s.Name())
	}
	if !reflect.DeepEqual(names, []string{"alpha", "mid", "zeta"}) {
		t.Errorf("names = %v", names)
	}
}

func TestList_SkipsVanished(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.scanFn = func(context.Context, string) ([]string, error) {
		return []string{"sitesearch:site:gone"}, nil
	}
	sites, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(sites) != 0 {
		t.Errorf("len = %d", len(sites))
	}
}

func TestDelete(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()
	s, _ := testDefinition().ToSite()
	_ = repo.Put(ctx, s)

	if err := repo.Delete(ctx, "docs"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(ms.docs) != 0 {
		t.Errorf("docs left: %v", ms.docs)
	}
	if err := repo.Delete(ctx, "docs"); !errors.Is(err, domain.ErrSiteNotFound) {
		t.Errorf("second delete: got %v", err)
	}
}
