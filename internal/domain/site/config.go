package site

import (
	"fmt"

	"github.com/openviglet/sitesearch/internal/domain/site/field"
)

// WildcardPolicy controls when a trailing wildcard is added to the query text.
type WildcardPolicy string

// WildcardPolicy constants.
const (
	// WildcardAlways appends the wildcard before the first execution.
	WildcardAlways  WildcardPolicy = "always"
	WildcardOnEmpty WildcardPolicy = "on-empty"
	WildcardOff     WildcardPolicy = "off"
)

// IsValid checks if the policy is one of the supported values.
func (p WildcardPolicy) IsValid() bool {
	return p == WildcardAlways || p == WildcardOnEmpty || p == WildcardOff
}

// Search defaults.
const (
	DefaultRowsPerPage   = 10
	DefaultItemsPerFacet = 10
	DefaultHighlightPre  = "<mark>"
	DefaultHighlightPost = "</mark>"
)

// SearchConfig holds the site-wide search behavior.
type SearchConfig struct {
	FacetEnabled     bool
	FacetType        field.Operator
	FacetItemType    field.Operator
	ItemsPerFacet    int
	FacetSort        field.FacetSort
	HighlightEnabled bool
	HighlightPre     string
	HighlightPost    string
	Wildcard         WildcardPolicy
	ExactMatch       bool
	ExactMatchField  string
	DefaultSortField string
	RowsPerPage      int
	MLT              bool
	SpellCheck       bool
	QueryFields      []string
}

// Normalize fills unset values with their defaults and validates the rest.
func (c SearchConfig) Normalize() (SearchConfig, error) {
	if c.FacetType == "" || c.FacetType == field.Default {
		c.FacetType = field.And
	}
	if c.FacetItemType == "" || c.FacetItemType == field.Default {
		c.FacetItemType = field.And
	}
	if !c.FacetType.Concrete() {
		return c, fmt.Errorf("invalid site facet type %q", c.FacetType)
	}
	if !c.FacetItemType.Concrete() {
		return c, fmt.Errorf("invalid site facet item type %q", c.FacetItemType)
	}
	if c.ItemsPerFacet < 0 {
		return c, fmt.Errorf("items per facet must not be negative")
	}
	if c.FacetSort == "" || c.FacetSort == field.SortDefault {
		c.FacetSort = field.SortCount
	}
	if c.FacetSort != field.SortCount && c.FacetSort != field.SortAlphabetical {
		return c, fmt.Errorf("invalid facet sort %q", c.FacetSort)
	}
	if c.HighlightPre == "" {
		c.HighlightPre = DefaultHighlightPre
	}
	if c.HighlightPost == "" {
		c.HighlightPost = DefaultHighlightPost
	}
	if c.Wildcard == "" {
		c.Wildcard = WildcardOnEmpty
	}
	if !c.Wildcard.IsValid() {
		return c, fmt.Errorf("invalid wildcard policy %q", c.Wildcard)
	}
	if c.ExactMatch && c.ExactMatchField == "" {
		return c, fmt.Errorf("exact match requires a field")
	}
	if c.RowsPerPage <= 0 {
		c.RowsPerPage = DefaultRowsPerPage
	}
	return c, nil
}
