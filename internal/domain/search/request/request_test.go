package request

import (
	"strings"
	"testing"

	"github.com/openviglet/sitesearch/internal/domain/search/filter"
	"github.com/openviglet/sitesearch/internal/domain/site/field"
)

func TestNew_Defaults(t *testing.T) {
	r, err := New(Params{Query: "hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Query() != "hello" {
		t.Errorf("Query() = %q", r.Query())
	}
	if r.Page() != 1 {
		t.Errorf("Page() = %d, want 1", r.Page())
	}
	if r.Rows() != 0 {
		t.Errorf("Rows() = %d, want 0 (site default)", r.Rows())
	}
	ov := r.Overrides()
	if ov.FacetType != field.None || ov.FacetItemType != field.None {
		t.Errorf("Overrides() = %+v, want NONE/NONE", ov)
	}
	if !r.Sort().IsZero() {
		t.Errorf("Sort() = %+v, want zero", r.Sort())
	}
}

func TestNew_Clamps(t *testing.T) {
	r, err := New(Params{Rows: 10000, Page: -3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Rows() != MaxRows {
		t.Errorf("Rows() = %d, want %d", r.Rows(), MaxRows)
	}
	if r.Page() != 1 {
		t.Errorf("Page() = %d, want 1", r.Page())
	}
}

func TestNew_Errors(t *testing.T) {
	tooMany := make([]string, MaxFilterItems+1)
	tests := []struct {
		name    string
		params  Params
		wantErr string
	}{
		{"query too long", Params{Query: strings.Repeat("x", MaxQueryLength+1)}, "query too long"},
		{"negative rows", Params{Rows: -1}, "rows"},
		{"page too large", Params{Page: MaxPage + 1}, "page too large"},
		{"too many filters", Params{Filters: filter.Lists{Or: tooMany}}, "too many fq.or"},
		{"bad sort", Params{Sort: "title:sideways"}, "direction"},
		{"bad facet type", Params{FacetType: "XOR"}, "facet type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.params)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestNew_CopiesFilters(t *testing.T) {
	lists := filter.Lists{Default: []string{"a:1"}}
	r, err := New(Params{Filters: lists})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lists.Default[0] = "b:2"
	if r.Filters().Default[0] != "a:1" {
		t.Error("request must not share filter slices with its params")
	}
}

func TestSort(t *testing.T) {
	tests := []struct {
		in       string
		field    string
		desc     bool
		ok       bool
		echoed   string
		fallback string
	}{
		{"newest", "modified", true, true, "newest", "modified"},
		{"OLDEST", "modified", false, true, "oldest", "modified"},
		{"newest", "", true, false, "newest", ""},
		{"relevance", "", false, false, "relevance", "modified"},
		{"title:desc", "title", true, true, "title:desc", "modified"},
		{"title asc", "title", false, true, "title:asc", "modified"},
		{"title", "title", false, true, "title:asc", "modified"},
	}
	for _, tt := range tests {
		s, err := ParseSort(tt.in)
		if err != nil {
			t.Fatalf("ParseSort(%q): %v", tt.in, err)
		}
		f, desc, ok := s.Resolve(tt.fallback)
		if f != tt.field || desc != tt.desc || ok != tt.ok {
			t.Errorf("Resolve(%q) = %q %v %v, want %q %v %v", tt.in, f, desc, ok, tt.field, tt.desc, tt.ok)
		}
		if s.String() != tt.echoed {
			t.Errorf("String(%q) = %q, want %q", tt.in, s.String(), tt.echoed)
		}
	}
}
