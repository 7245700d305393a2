package request

import (
	"fmt"

	"github.com/openviglet/sitesearch/internal/domain/search/filter"
	"github.com/openviglet/sitesearch/internal/domain/search/targeting"
	"github.com/openviglet/sitesearch/internal/domain/site/field"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 4096
	MaxRows        = 500
	MaxPage        = 10000
	// MaxFilterItems caps each filter list.
	MaxFilterItems = 32
)

// Params are the raw inputs to New.
type Params struct {
	Query         string
	Rows          int
	Page          int
	Sort          string
	Group         string
	Filters       filter.Lists
	FacetType     field.Operator
	FacetItemType field.Operator
	Locale        string
	Facet         string
	Targeting     targeting.Rules
	Exact         bool
}

// Request is a validated search request (immutable).
type Request struct {
	query         string
	rows          int
	page          int
	sort          Sort
	group         string
	filters       filter.Lists
	facetType     field.Operator
	facetItemType field.Operator
	locale        string
	facet         string
	targeting     targeting.Rules
	exact         bool
}

// New validates and normalizes search parameters.
// Defaults: page=1; rows=0 means the site's rows per page.
func New(p Params) (Request, error) {
	if len(p.Query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if p.Rows < 0 {
		return Request{}, fmt.Errorf("rows must not be negative")
	}
	if p.Rows > MaxRows {
		p.Rows = MaxRows
	}
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		return Request{}, fmt.Errorf("page too large (max %d)", MaxPage)
	}
	for name, l := range map[string][]string{
		"fq": p.Filters.Default, "fq.and": p.Filters.And, "fq.or": p.Filters.Or,
	} {
		if len(l) > MaxFilterItems {
			return Request{}, fmt.Errorf("too many %s filters (max %d)", name, MaxFilterItems)
		}
	}
	s, err := ParseSort(p.Sort)
	if err != nil {
		return Request{}, err
	}
	ft, err := requestOperator(p.FacetType)
	if err != nil {
		return Request{}, fmt.Errorf("facet type: %w", err)
	}
	fit, err := requestOperator(p.FacetItemType)
	if err != nil {
		return Request{}, fmt.Errorf("facet item type: %w", err)
	}

	return Request{
		query:         p.Query,
		rows:          p.Rows,
		page:          p.Page,
		sort:          s,
		group:         p.Group,
		filters:       copyLists(p.Filters),
		facetType:     ft,
		facetItemType: fit,
		locale:        p.Locale,
		facet:         p.Facet,
		targeting:     p.Targeting,
		exact:         p.Exact,
	}, nil
}

func requestOperator(op field.Operator) (field.Operator, error) {
	switch op {
	case "", field.None, field.Default:
		return field.None, nil
	case field.And, field.Or:
		return op, nil
	}
	return "", fmt.Errorf("invalid operator %q", op)
}

func copyLists(l filter.Lists) filter.Lists {
	return filter.Lists{
		Default: append([]string(nil), l.Default...),
		And:     append([]string(nil), l.And...),
		Or:      append([]string(nil), l.Or...),
	}
}

// WithFacet returns a copy restricted to refreshing one facet.
func (r Request) WithFacet(name string) Request {
	r.facet = name
	return r
}

// Query returns the free-text query.
func (r Request) Query() string { return r.query }

// Rows returns the requested page size (0 = site default).
func (r Request) Rows() int { return r.rows }

// Page returns the 1-based page number.
func (r Request) Page() int { return r.page }

// Sort returns the requested sort.
func (r Request) Sort() Sort { return r.sort }

// Group returns the group-by field, if any.
func (r Request) Group() string { return r.group }

// Filters returns a copy of the raw filter lists.
func (r Request) Filters() filter.Lists { return copyLists(r.filters) }

// Overrides returns the request-level facet operators.
func (r Request) Overrides() filter.Overrides {
	return filter.Overrides{FacetType: r.facetType, FacetItemType: r.facetItemType}
}

// Locale returns the requested locale.
func (r Request) Locale() string { return r.locale }

// Facet returns the facet being refreshed, if any.
func (r Request) Facet() string { return r.facet }

// Targeting returns the request targeting rules.
func (r Request) Targeting() targeting.Rules { return r.targeting }

// Exact reports whether exact matching was requested.
func (r Request) Exact() bool { return r.exact }
