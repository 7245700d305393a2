package field

import (
	"reflect"
	"slices"
	"testing"
)

func testCatalog(t *testing.T) Catalog {
	t.Helper()
	c, err := NewCatalog([]Definition{
		{Name: "title", Type: Text, Enabled: true, Highlight: true, Similarity: true, Position: 3},
		{Name: "type", Type: String, Enabled: true, Facet: true, Position: 2},
		{Name: "published", Type: Date, Enabled: true, Facet: true, FacetRange: RangeMonth, Position: 1},
		{Name: "person", Type: String, Kind: KindNER, Enabled: true, Facet: true, Position: 4},
		{Name: "hidden", Type: String, Enabled: false, Facet: true, Highlight: true},
		{Name: "url", Type: String, Enabled: true, Required: true, DefaultValue: "/"},
	})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	return c
}

func names(defs []Definition) []string {
	out := make([]string, 0, len(defs))
	for _, d := range defs {
		out = append(out, d.Name)
	}
	return out
}

func TestNewCatalog_Duplicate(t *testing.T) {
	_, err := NewCatalog([]Definition{{Name: "a"}, {Name: "a"}})
	if err == nil {
		t.Fatal("expected duplicate error")
	}
}

func TestCatalog_Views(t *testing.T) {
	c := testCatalog(t)

	if got := names(c.Facets()); !reflect.DeepEqual(got, []string{"type", "published", "person"}) {
		t.Errorf("Facets() = %v", got)
	}
	if got := names(c.FacetRanges()); !reflect.DeepEqual(got, []string{"published"}) {
		t.Errorf("FacetRanges() = %v", got)
	}
	if got := names(c.Highlights()); !reflect.DeepEqual(got, []string{"title"}) {
		t.Errorf("Highlights() = %v", got)
	}
	if got := names(c.Similarity()); !reflect.DeepEqual(got, []string{"title"}) {
		t.Errorf("Similarity() = %v", got)
	}
	if got := names(c.Required()); !reflect.DeepEqual(got, []string{"url"}) {
		t.Errorf("Required() = %v", got)
	}
	if !c.HasDateRanges() {
		t.Error("expected HasDateRanges")
	}
}

func TestCatalog_GetEntityName(t *testing.T) {
	c := testCatalog(t)

	d, ok := c.Get("turing_entity_person")
	if !ok || d.Name != "person" {
		t.Fatalf("expected entity lookup to resolve person, got %+v %v", d, ok)
	}
	if _, ok := c.Get("turing_entity_type"); ok {
		t.Error("plain field must not resolve through the entity prefix")
	}
	if _, ok := c.Facet("hidden"); ok {
		t.Error("disabled field must not be a facet")
	}
}

func TestCatalog_ComparePosition(t *testing.T) {
	c := testCatalog(t)
	got := []string{"unknown", "turing_entity_person", "type", "published"}
	slices.SortStableFunc(got, c.ComparePosition)
	want := []string{"published", "type", "turing_entity_person", "unknown"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sorted = %v, want %v", got, want)
	}
	if c.ComparePosition("zeta", "alpha") <= 0 {
		t.Error("unknown facets fall back to name order")
	}
}
