package filter

import (
	"reflect"
	"strings"
	"testing"

	"github.com/openviglet/sitesearch/internal/domain/site/field"
)

func TestParseItem(t *testing.T) {
	tests := []struct {
		raw    string
		want   Item
		wantOK bool
	}{
		{"category:books", Item{"category", "books"}, true},
		{"url:http://x/y", Item{"url", "http://x/y"}, true},
		{"nocolon", Item{}, false},
		{":value", Item{}, false},
		{"field:", Item{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseItem(tt.raw)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParseItem(%q) = %+v, %v; want %+v, %v", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestBuild_DefaultListSingleValue(t *testing.T) {
	s := Build(Lists{Default: []string{"category:books"}}, newTestCatalog(t), andDefaults, Overrides{})

	got, ok := s.Render("")
	if !ok {
		t.Fatal("expected a filter")
	}
	if got != `(category:"books")` {
		t.Errorf("Render() = %s", got)
	}
}

func TestBuild_OrListTagged(t *testing.T) {
	s := Build(Lists{Or: []string{"type:pdf", "type:doc"}}, newTestCatalog(t), orItems, Overrides{})

	got, _ := s.Render("")
	want := `{!tag=_all_}(type:"pdf" OR type:"doc")`
	if got != want {
		t.Errorf("Render() = %s, want %s", got, want)
	}
}

func TestBuild_AccumulatesAndDeduplicates(t *testing.T) {
	s := Build(Lists{
		Default: []string{"category:books", "type:pdf", "category:music"},
		And:     []string{"category:books"},
	}, newTestCatalog(t), andDefaults, Overrides{})

	buckets := s.Buckets()
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(buckets))
	}
	if buckets[0].Name != "category" || !reflect.DeepEqual(buckets[0].Values, []string{"books", "music"}) {
		t.Errorf("unexpected first bucket: %+v", buckets[0])
	}
	if buckets[1].Name != "type" {
		t.Errorf("expected type bucket second, got %s", buckets[1].Name)
	}
}

func TestBuild_DropsMalformed(t *testing.T) {
	s := Build(Lists{Default: []string{"garbage", "x:", ":y"}}, newTestCatalog(t), andDefaults, Overrides{})
	if s.Len() != 0 {
		t.Fatalf("expected no buckets, got %d", s.Len())
	}
	if _, ok := s.Render(""); ok {
		t.Error("expected no filter for empty set")
	}
	if s.Tagged("type") {
		t.Error("empty set must never be tagged")
	}
}

func TestBuild_UnknownFieldUsesSiteDefaults(t *testing.T) {
	defaults := Defaults{FacetType: field.And, FacetItemType: field.Or}
	s := Build(Lists{
		Or: []string{"color:red", "color:blue", "disabled:x"},
	}, newTestCatalog(t), defaults, Overrides{})

	buckets := s.Buckets()
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(buckets))
	}
	b := buckets[0]
	if b.Name != "no_facet_name_color" || b.Known {
		t.Errorf("unexpected synthetic bucket: %+v", b)
	}
	if b.Type != field.And || b.ItemType != field.Or {
		t.Errorf("expected site defaults AND/OR, got %s/%s", b.Type, b.ItemType)
	}
	if buckets[1].Name != "no_facet_name_disabled" {
		t.Errorf("disabled field must be synthetic, got %s", buckets[1].Name)
	}
	got, _ := s.Render("")
	want := `(color:"red" OR color:"blue") AND (disabled:"x")`
	if got != want {
		t.Errorf("Render() = %s, want %s", got, want)
	}
}

func TestBuild_FieldOperatorsAndOverrides(t *testing.T) {
	c := newTestCatalog(t)
	lists := Lists{Default: []string{"tag:a", "tag:b", "category:books"}}

	s := Build(lists, c, andDefaults, Overrides{})
	got, _ := s.Render("")
	want := `{!tag=_all_}(category:"books") AND ((tag:"a" OR tag:"b"))`
	if got != want {
		t.Errorf("Render() = %s, want %s", got, want)
	}

	s = Build(lists, c, andDefaults, Overrides{FacetType: field.And, FacetItemType: field.And})
	got, _ = s.Render("")
	want = `(tag:"a" AND tag:"b") AND (category:"books")`
	if got != want {
		t.Errorf("Render() with overrides = %s, want %s", got, want)
	}
}

func TestBuild_EntityFieldUsesBackendName(t *testing.T) {
	s := Build(Lists{Default: []string{"person:Ada"}}, newTestCatalog(t), andDefaults, Overrides{})
	got, _ := s.Render("")
	if got != `(turing_entity_person:"Ada")` {
		t.Errorf("Render() = %s", got)
	}
	if !s.Has("person") || !s.Selected("person", "Ada") {
		t.Error("expected person bucket with Ada selected")
	}
}

func TestRender_QuotingRules(t *testing.T) {
	s := Build(Lists{Default: []string{
		"category:[a TO b]", "type:(x OR y)", "tag:foo*", `person:say "hi"`,
	}}, newTestCatalog(t), andDefaults, Overrides{FacetType: field.And})

	got, _ := s.Render("")
	for _, part := range []string{
		`category:[a TO b]`, `type:(x OR y)`, `tag:foo*`, `turing_entity_person:"say \"hi\""`,
	} {
		if !strings.Contains(got, part) {
			t.Errorf("Render() = %s, missing %s", got, part)
		}
	}
}

func TestRender_AndGroupHasNoBareOr(t *testing.T) {
	s := Build(Lists{
		Default: []string{"category:a", "category:b", "type:x"},
		Or:      []string{"tag:1", "tag:2"},
	}, newTestCatalog(t), orItems, Overrides{})

	got, _ := s.Render("")
	andGroup, _, found := strings.Cut(strings.TrimPrefix(got, TagAll), " AND ((")
	if !found {
		t.Fatalf("expected AND group followed by OR group, got %s", got)
	}
	depth := 0
	for i := 0; i < len(andGroup); i++ {
		switch andGroup[i] {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth == 0 && strings.HasPrefix(andGroup[i:], " OR ") {
			t.Fatalf("unparenthesized OR in AND group: %s", andGroup)
		}
	}
}

func TestTaggedAndExclude(t *testing.T) {
	c := newTestCatalog(t)
	typeDef, _ := c.Get("type")
	tagDef, _ := c.Get("tag")
	categoryDef, _ := c.Get("category")

	s := Build(Lists{Default: []string{"category:books"}}, c, andDefaults, Overrides{})
	if s.Tagged("") {
		t.Error("AND-only filter must not be tagged")
	}
	if s.Tagged("category") {
		t.Error("refresh of a filtered facet must not be tagged")
	}
	if !s.Tagged("type") {
		t.Error("refresh of an unfiltered facet must be tagged")
	}
	if !s.Exclude(typeDef, "type") {
		t.Error("refresh facet must exclude the tagged filter")
	}
	if s.Exclude(categoryDef, "type") {
		t.Error("AND facet must keep the filter")
	}
	if !s.Exclude(tagDef, "type") {
		t.Error("OR facet must exclude the tagged filter")
	}
	if s.Exclude(tagDef, "") {
		t.Error("untagged filter excludes nothing")
	}
}

func TestTagged_DecisionTable(t *testing.T) {
	tests := []struct {
		facetType, itemType field.Operator
		refresh             string
		want                bool
	}{
		{field.And, field.And, "", false},
		{field.And, field.And, "type", false},
		{field.And, field.And, "category", true},
		{field.And, field.Or, "", false},
		{field.And, field.Or, "type", false},
		{field.And, field.Or, "category", true},
		{field.Or, field.And, "", false},
		{field.Or, field.And, "type", false},
		{field.Or, field.And, "category", true},
		{field.Or, field.Or, "", true},
		{field.Or, field.Or, "type", true},
		{field.Or, field.Or, "category", true},
	}
	c := newTestCatalog(t)
	for _, tt := range tests {
		name := string(tt.facetType) + "/" + string(tt.itemType) + "/" + tt.refresh
		t.Run(name, func(t *testing.T) {
			s := Build(Lists{Default: []string{"type:pdf", "type:doc"}}, c, andDefaults,
				Overrides{FacetType: tt.facetType, FacetItemType: tt.itemType})
			if got := s.Tagged(tt.refresh); got != tt.want {
				t.Errorf("Tagged(%q) = %v, want %v", tt.refresh, got, tt.want)
			}
			q, _ := s.Render(tt.refresh)
			if got := strings.HasPrefix(q, TagAll); got != tt.want {
				t.Errorf("Render(%q) = %s, tagged %v, want %v", tt.refresh, q, got, tt.want)
			}
		})
	}
}

func TestBuild_OrListWithAndItemsUntagged(t *testing.T) {
	defaults := Defaults{FacetType: field.Or, FacetItemType: field.And}
	s := Build(Lists{Or: []string{"type:pdf", "type:doc"}}, newTestCatalog(t), defaults, Overrides{})

	got, _ := s.Render("")
	want := `(type:"pdf" AND type:"doc")`
	if got != want {
		t.Errorf("Render() = %s, want %s", got, want)
	}
}

func TestMapValues(t *testing.T) {
	s := Build(Lists{Default: []string{"category:a"}}, newTestCatalog(t), andDefaults, Overrides{})
	m := s.MapValues(func(b Bucket, v string) string { return strings.ToUpper(v) })

	if s.Buckets()[0].Values[0] != "a" {
		t.Error("MapValues must not mutate the source set")
	}
	if m.Buckets()[0].Values[0] != "A" || !m.Has("category") {
		t.Errorf("unexpected mapped set: %+v", m.Buckets())
	}
}
