package sitesearch

import (
	"context"
	"fmt"

	"github.com/openviglet/sitesearch/internal/domain/search/request"
	"github.com/openviglet/sitesearch/internal/domain/search/targeting"
	"github.com/openviglet/sitesearch/internal/domain/site/field"
)

// SearchBuilder is a fluent builder for one search.
type SearchBuilder struct {
	search searcher
	site   string
	params request.Params
	target []string
}

// Query sets the query text. Empty matches every document.
func (b *SearchBuilder) Query(q string) *SearchBuilder {
	b.params.Query = q
	return b
}

// Filter adds field:value filters combined with the site's facet operators.
func (b *SearchBuilder) Filter(fq ...string) *SearchBuilder {
	b.params.Filters.Default = append(b.params.Filters.Default, fq...)
	return b
}

// FilterAnd adds filters that are always ANDed.
func (b *SearchBuilder) FilterAnd(fq ...string) *SearchBuilder {
	b.params.Filters.And = append(b.params.Filters.And, fq...)
	return b
}

// FilterOr adds filters that are ORed together.
func (b *SearchBuilder) FilterOr(fq ...string) *SearchBuilder {
	b.params.Filters.Or = append(b.params.Filters.Or, fq...)
	return b
}

// FacetOperators overrides how facets and items of one facet combine.
// Valid values are "and", "or" and "" for the site default.
func (b *SearchBuilder) FacetOperators(facets, items string) *SearchBuilder {
	b.params.FacetType = field.Operator(facets)
	b.params.FacetItemType = field.Operator(items)
	return b
}

// Page selects a 1-based page.
func (b *SearchBuilder) Page(n int) *SearchBuilder {
	b.params.Page = n
	return b
}

// Rows sets the page size. Zero uses the site default.
func (b *SearchBuilder) Rows(n int) *SearchBuilder {
	b.params.Rows = n
	return b
}

// Sort sets the order: relevance, newest, oldest or field:asc|desc.
func (b *SearchBuilder) Sort(s string) *SearchBuilder {
	b.params.Sort = s
	return b
}

// GroupBy groups hits by a field.
func (b *SearchBuilder) GroupBy(name string) *SearchBuilder {
	b.params.Group = name
	return b
}

// Locale selects the locale core, e.g. "pt_BR".
func (b *SearchBuilder) Locale(tag string) *SearchBuilder {
	b.params.Locale = tag
	return b
}

// Exact matches the query as a phrase against the site's exact-match field.
func (b *SearchBuilder) Exact() *SearchBuilder {
	b.params.Exact = true
	return b
}

// Target adds targeting rules in the tr[] form: a filter term, or
// "condition|term" to apply the term only under a condition.
func (b *SearchBuilder) Target(rules ...string) *SearchBuilder {
	b.target = append(b.target, rules...)
	return b
}

func (b *SearchBuilder) request() (request.Request, error) {
	p := b.params
	ft, err := field.ParseOperator(string(p.FacetType))
	if err != nil {
		return request.Request{}, err
	}
	fit, err := field.ParseOperator(string(p.FacetItemType))
	if err != nil {
		return request.Request{}, err
	}
	p.FacetType, p.FacetItemType = ft, fit
	p.Targeting = targeting.Parse(b.target)
	return request.New(p)
}

// Do runs the search.
func (b *SearchBuilder) Do(ctx context.Context) (*Result, error) {
	req, err := b.request()
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", b.site, err)
	}
	res, err := b.search.Search(ctx, b.site, req)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", b.site, err)
	}
	return fromResult(res), nil
}
