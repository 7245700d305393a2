package site

import (
	"fmt"
	"strings"

	"github.com/openviglet/sitesearch/internal/domain/search/boost"
	"github.com/openviglet/sitesearch/internal/domain/search/targeting"
	domsite "github.com/openviglet/sitesearch/internal/domain/site"
	"github.com/openviglet/sitesearch/internal/domain/site/field"
)

// Definition is the serialized form of a site, shared by the store (JSON)
// and site files (YAML).
type Definition struct {
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	DefaultCore string        `json:"default_core,omitempty" yaml:"default_core,omitempty"`
	Locales     []LocaleDef   `json:"locales,omitempty" yaml:"locales,omitempty"`
	Search      SearchDef     `json:"search" yaml:"search"`
	Fields      []FieldDef    `json:"fields" yaml:"fields"`
	Rankings    []RankingDef  `json:"rankings,omitempty" yaml:"rankings,omitempty"`
	Targeting   *TargetingDef `json:"targeting,omitempty" yaml:"targeting,omitempty"`
}

// LocaleDef binds a language tag to a core.
type LocaleDef struct {
	Tag  string `json:"tag" yaml:"tag"`
	Core string `json:"core" yaml:"core"`
}

// SearchDef mirrors site.SearchConfig. Zero values take the site defaults.
type SearchDef struct {
	FacetEnabled     bool     `json:"facet_enabled" yaml:"facet_enabled"`
	FacetType        string   `json:"facet_type,omitempty" yaml:"facet_type,omitempty"`
	FacetItemType    string   `json:"facet_item_type,omitempty" yaml:"facet_item_type,omitempty"`
	ItemsPerFacet    int      `json:"items_per_facet,omitempty" yaml:"items_per_facet,omitempty"`
	FacetSort        string   `json:"facet_sort,omitempty" yaml:"facet_sort,omitempty"`
	HighlightEnabled bool     `json:"highlight_enabled" yaml:"highlight_enabled"`
	HighlightPre     string   `json:"highlight_pre,omitempty" yaml:"highlight_pre,omitempty"`
	HighlightPost    string   `json:"highlight_post,omitempty" yaml:"highlight_post,omitempty"`
	Wildcard         string   `json:"wildcard,omitempty" yaml:"wildcard,omitempty"`
	ExactMatch       bool     `json:"exact_match" yaml:"exact_match"`
	ExactMatchField  string   `json:"exact_match_field,omitempty" yaml:"exact_match_field,omitempty"`
	DefaultSortField string   `json:"default_sort_field,omitempty" yaml:"default_sort_field,omitempty"`
	RowsPerPage      int      `json:"rows_per_page,omitempty" yaml:"rows_per_page,omitempty"`
	MLT              bool     `json:"mlt" yaml:"mlt"`
	SpellCheck       bool     `json:"spell_check" yaml:"spell_check"`
	QueryFields      []string `json:"query_fields,omitempty" yaml:"query_fields,omitempty"`
}

// FieldDef mirrors field.Definition.
type FieldDef struct {
	Name          string `json:"name" yaml:"name"`
	Type          string `json:"type,omitempty" yaml:"type,omitempty"`
	Kind          string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Enabled       *bool  `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Facet         bool   `json:"facet,omitempty" yaml:"facet,omitempty"`
	FacetName     string `json:"facet_name,omitempty" yaml:"facet_name,omitempty"`
	FacetType     string `json:"facet_type,omitempty" yaml:"facet_type,omitempty"`
	FacetItemType string `json:"facet_item_type,omitempty" yaml:"facet_item_type,omitempty"`
	FacetRange    string `json:"facet_range,omitempty" yaml:"facet_range,omitempty"`
	FacetSort     string `json:"facet_sort,omitempty" yaml:"facet_sort,omitempty"`
	Highlight     bool   `json:"highlight,omitempty" yaml:"highlight,omitempty"`
	Similarity    bool   `json:"similarity,omitempty" yaml:"similarity,omitempty"`
	Required      bool   `json:"required,omitempty" yaml:"required,omitempty"`
	DefaultValue  string `json:"default_value,omitempty" yaml:"default_value,omitempty"`
	Position      int    `json:"position,omitempty" yaml:"position,omitempty"`
}

// RankingDef mirrors boost.Expression.
type RankingDef struct {
	Name       string         `json:"name" yaml:"name"`
	Weight     float64        `json:"weight" yaml:"weight"`
	Conditions []ConditionDef `json:"conditions" yaml:"conditions"`
}

// ConditionDef is one attribute condition of a ranking.
type ConditionDef struct {
	Attribute string `json:"attribute" yaml:"attribute"`
	Value     string `json:"value" yaml:"value"`
}

// TargetingDef mirrors targeting.Rules.
type TargetingDef struct {
	Terms          []string            `json:"terms,omitempty" yaml:"terms,omitempty"`
	Conditioned    map[string][]string `json:"conditioned,omitempty" yaml:"conditioned,omitempty"`
	ConditionedAnd map[string][]string `json:"conditioned_and,omitempty" yaml:"conditioned_and,omitempty"`
	ConditionedOr  map[string][]string `json:"conditioned_or,omitempty" yaml:"conditioned_or,omitempty"`
}

// ToSite validates the definition into an immutable site.
func (d Definition) ToSite() (*domsite.Site, error) {
	facetType, err := field.ParseOperator(d.Search.FacetType)
	if err != nil {
		return nil, fmt.Errorf("site %s: facet type: %w", d.Name, err)
	}
	facetItemType, err := field.ParseOperator(d.Search.FacetItemType)
	if err != nil {
		return nil, fmt.Errorf("site %s: facet item type: %w", d.Name, err)
	}
	items := d.Search.ItemsPerFacet
	if items == 0 {
		items = domsite.DefaultItemsPerFacet
	}

	fields := make([]field.Definition, len(d.Fields))
	for i, f := range d.Fields {
		fd, err := f.toDefinition()
		if err != nil {
			return nil, fmt.Errorf("site %s: field %s: %w", d.Name, f.Name, err)
		}
		fields[i] = fd
	}

	locales := make([]domsite.Locale, len(d.Locales))
	for i, l := range d.Locales {
		locales[i] = domsite.Locale{Tag: l.Tag, Core: l.Core}
	}

	rankings := make([]boost.Expression, len(d.Rankings))
	for i, r := range d.Rankings {
		conds := make([]boost.Condition, len(r.Conditions))
		for j, c := range r.Conditions {
			conds[j] = boost.Condition{Attribute: c.Attribute, Value: c.Value}
		}
		rankings[i] = boost.Expression{Name: r.Name, Weight: r.Weight, Conditions: conds}
	}

	var rules targeting.Rules
	if t := d.Targeting; t != nil {
		rules = targeting.Rules{
			Terms:          t.Terms,
			Conditioned:    t.Conditioned,
			ConditionedAnd: t.ConditionedAnd,
			ConditionedOr:  t.ConditionedOr,
		}
	}

	return domsite.New(domsite.Params{
		Name:        d.Name,
		Description: d.Description,
		DefaultCore: d.DefaultCore,
		Locales:     locales,
		Search: domsite.SearchConfig{
			FacetEnabled:     d.Search.FacetEnabled,
			FacetType:        facetType,
			FacetItemType:    facetItemType,
			ItemsPerFacet:    items,
			FacetSort:        field.FacetSort(upper(d.Search.FacetSort)),
			HighlightEnabled: d.Search.HighlightEnabled,
			HighlightPre:     d.Search.HighlightPre,
			HighlightPost:    d.Search.HighlightPost,
			Wildcard:         domsite.WildcardPolicy(d.Search.Wildcard),
			ExactMatch:       d.Search.ExactMatch,
			ExactMatchField:  d.Search.ExactMatchField,
			DefaultSortField: d.Search.DefaultSortField,
			RowsPerPage:      d.Search.RowsPerPage,
			MLT:              d.Search.MLT,
			SpellCheck:       d.Search.SpellCheck,
			QueryFields:      d.Search.QueryFields,
		},
		Fields:    fields,
		Rankings:  rankings,
		Targeting: rules,
	})
}

func (f FieldDef) toDefinition() (field.Definition, error) {
	facetType, err := field.ParseOperator(f.FacetType)
	if err != nil {
		return field.Definition{}, err
	}
	facetItemType, err := field.ParseOperator(f.FacetItemType)
	if err != nil {
		return field.Definition{}, err
	}
	enabled := true
	if f.Enabled != nil {
		enabled = *f.Enabled
	}
	return field.Definition{
		Name:          f.Name,
		Type:          field.Type(upper(f.Type)),
		Kind:          field.Kind(upper(f.Kind)),
		Enabled:       enabled,
		Facet:         f.Facet,
		FacetName:     f.FacetName,
		FacetType:     facetType,
		FacetItemType: facetItemType,
		FacetRange:    field.DateRange(upper(f.FacetRange)),
		FacetSort:     field.FacetSort(upper(f.FacetSort)),
		Highlight:     f.Highlight,
		Similarity:    f.Similarity,
		Required:      f.Required,
		DefaultValue:  f.DefaultValue,
		Position:      f.Position,
	}, nil
}

// FromSite serializes a site.
func FromSite(s *domsite.Site) Definition {
	cfg := s.Search()
	d := Definition{
		Name:        s.Name(),
		Description: s.Description(),
		DefaultCore: s.DefaultCore(),
		Search: SearchDef{
			FacetEnabled:     cfg.FacetEnabled,
			FacetType:        string(cfg.FacetType),
			FacetItemType:    string(cfg.FacetItemType),
			ItemsPerFacet:    cfg.ItemsPerFacet,
			FacetSort:        string(cfg.FacetSort),
			HighlightEnabled: cfg.HighlightEnabled,
			HighlightPre:     cfg.HighlightPre,
			HighlightPost:    cfg.HighlightPost,
			Wildcard:         string(cfg.Wildcard),
			ExactMatch:       cfg.ExactMatch,
			ExactMatchField:  cfg.ExactMatchField,
			DefaultSortField: cfg.DefaultSortField,
			RowsPerPage:      cfg.RowsPerPage,
			MLT:              cfg.MLT,
			SpellCheck:       cfg.SpellCheck,
			QueryFields:      cfg.QueryFields,
		},
	}
	for _, l := range s.Locales() {
		d.Locales = append(d.Locales, LocaleDef{Tag: l.Tag, Core: l.Core})
	}
	for _, f := range s.Catalog().All() {
		enabled := f.Enabled
		d.Fields = append(d.Fields, FieldDef{
			Name:          f.Name,
			Type:          string(f.Type),
			Kind:          string(f.Kind),
			Enabled:       &enabled,
			Facet:         f.Facet,
			FacetName:     f.FacetName,
			FacetType:     string(f.FacetType),
			FacetItemType: string(f.FacetItemType),
			FacetRange:    string(f.FacetRange),
			FacetSort:     string(f.FacetSort),
			Highlight:     f.Highlight,
			Similarity:    f.Similarity,
			Required:      f.Required,
			DefaultValue:  f.DefaultValue,
			Position:      f.Position,
		})
	}
	for _, r := range s.Rankings() {
		rd := RankingDef{Name: r.Name, Weight: r.Weight}
		for _, c := range r.Conditions {
			rd.Conditions = append(rd.Conditions, ConditionDef{Attribute: c.Attribute, Value: c.Value})
		}
		d.Rankings = append(d.Rankings, rd)
	}
	if t := s.Targeting(); !t.Empty() {
		d.Targeting = &TargetingDef{
			Terms:          t.Terms,
			Conditioned:    t.Conditioned,
			ConditionedAnd: t.ConditionedAnd,
			ConditionedOr:  t.ConditionedOr,
		}
	}
	return d
}

func upper(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }
