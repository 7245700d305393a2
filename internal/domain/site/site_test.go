package site

import (
	"strings"
	"testing"

	"github.com/openviglet/sitesearch/internal/domain/site/field"
)

func validParams() Params {
	return Params{
		Name: "docs",
		Locales: []Locale{
			{Tag: "en-US", Core: "docs_en"},
			{Tag: "pt_BR", Core: "docs_pt"},
		},
		Fields: []field.Definition{
			{Name: "title", Type: field.Text, Enabled: true},
		},
	}
}

func TestNew_Valid(t *testing.T) {
	s, err := New(validParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Name() != "docs" || s.DefaultCore() != "docs" {
		t.Errorf("name=%q core=%q", s.Name(), s.DefaultCore())
	}
	if s.Catalog().Len() != 1 {
		t.Errorf("catalog size = %d", s.Catalog().Len())
	}

	cfg := s.Search()
	if cfg.FacetType != field.And || cfg.FacetItemType != field.And {
		t.Errorf("operators = %s/%s, want AND/AND", cfg.FacetType, cfg.FacetItemType)
	}
	if cfg.Wildcard != WildcardOnEmpty || cfg.RowsPerPage != DefaultRowsPerPage ||
		cfg.FacetSort != field.SortCount || cfg.HighlightPre != DefaultHighlightPre {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Params)
		errMsg string
	}{
		{"empty name", func(p *Params) { p.Name = "" }, "name is required"},
		{"long name", func(p *Params) { p.Name = strings.Repeat("a", 65) }, "too long"},
		{"bad chars", func(p *Params) { p.Name = "my site" }, "alphanumeric"},
		{"bad operator", func(p *Params) { p.Search.FacetType = "XOR" }, "facet type"},
		{"bad wildcard", func(p *Params) { p.Search.Wildcard = "sometimes" }, "wildcard"},
		{"exact without field", func(p *Params) { p.Search.ExactMatch = true }, "exact match"},
		{"negative items", func(p *Params) { p.Search.ItemsPerFacet = -1 }, "items per facet"},
		{"duplicate field", func(p *Params) {
			p.Fields = append(p.Fields, field.Definition{Name: "title"})
		}, "duplicate"},
		{"locale without core", func(p *Params) { p.Locales[0].Core = "" }, "core is required"},
		{"bad locale", func(p *Params) { p.Locales[0].Tag = "not a locale!" }, "locale"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(&p)
			_, err := New(p)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error %q does not contain %q", err, tt.errMsg)
			}
		})
	}
}

func TestSite_ResolveCore(t *testing.T) {
	p := validParams()
	p.DefaultCore = "docs_default"
	s, err := New(p)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		locale   string
		wantCore string
		wantTag  string
	}{
		{"en-US", "docs_en", "en-US"},
		{"pt_br", "docs_pt", "pt_BR"},
		{"pt", "docs_pt", "pt_BR"},
		{"", "docs_default", ""},
		{"ja-JP", "docs_default", ""},
		{"%%", "docs_default", ""},
	}
	for _, tt := range tests {
		core, tag := s.ResolveCore(tt.locale)
		if core != tt.wantCore || tag != tt.wantTag {
			t.Errorf("ResolveCore(%q) = (%q, %q), want (%q, %q)", tt.locale, core, tag, tt.wantCore, tt.wantTag)
		}
	}
}

func TestSite_ResolveCoreWithoutLocales(t *testing.T) {
	p := validParams()
	p.Locales = nil
	s, err := New(p)
	if err != nil {
		t.Fatal(err)
	}
	if core, tag := s.ResolveCore("en-US"); core != "docs" || tag != "" {
		t.Errorf("ResolveCore = (%q, %q)", core, tag)
	}
}

func TestSite_LocalesAreCopied(t *testing.T) {
	s, err := New(validParams())
	if err != nil {
		t.Fatal(err)
	}
	l := s.Locales()
	l[0].Core = "changed"
	if s.Locales()[0].Core != "docs_en" {
		t.Error("Locales must return a copy")
	}
}

func TestNormalizeLocale(t *testing.T) {
	for in, want := range map[string]string{
		"":      "",
		"pt_br": "pt-BR",
		"en-us": "en-US",
		"fr":    "fr",
	} {
		got, err := NormalizeLocale(in)
		if err != nil || got != want {
			t.Errorf("NormalizeLocale(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := NormalizeLocale("not a locale!"); err == nil {
		t.Error("expected error for garbage locale")
	}
}
