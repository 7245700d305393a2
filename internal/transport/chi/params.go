package chi

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/oapi-codegen/runtime"

	"github.com/openviglet/sitesearch/internal/domain"
	"github.com/openviglet/sitesearch/internal/domain/search/filter"
	"github.com/openviglet/sitesearch/internal/domain/search/request"
	"github.com/openviglet/sitesearch/internal/domain/search/targeting"
	"github.com/openviglet/sitesearch/internal/domain/site/field"
)

// SearchParams are the query parameters accepted by the search and facet endpoints.
type SearchParams struct {
	Q             string
	Page          int
	Rows          int
	Sort          string
	Group         string
	Filters       []string
	FiltersAnd    []string
	FiltersOr     []string
	FacetType     string
	FacetItemType string
	Locale        string
	Exact         bool
	Targeting     []string
}

// Aliases accepted for the repeatable list parameters, in merge order.
var (
	filterNames    = []string{"fq[]", "fq"}
	filterAndNames = []string{"fq[and]", "fqand[]", "fqand"}
	filterOrNames  = []string{"fq[or]", "fqor[]", "fqor"}
	targetingNames = []string{"tr[]", "tr"}
)

// bindSearchParams reads the search parameters from the query string.
func bindSearchParams(query url.Values) (SearchParams, error) {
	var p SearchParams

	scalars := []struct {
		name string
		dest any
	}{
		{"q", &p.Q},
		{"p", &p.Page},
		{"rows", &p.Rows},
		{"sort", &p.Sort},
		{"group", &p.Group},
		{"ft", &p.FacetType},
		{"fit", &p.FacetItemType},
		{"_setlocale", &p.Locale},
		{"exact", &p.Exact},
	}
	for _, s := range scalars {
		if err := runtime.BindQueryParameter("form", true, false, s.name, query, s.dest); err != nil {
			return SearchParams{}, invalidParam(s.name, err)
		}
	}

	lists := []struct {
		names []string
		dest  *[]string
	}{
		{filterNames, &p.Filters},
		{filterAndNames, &p.FiltersAnd},
		{filterOrNames, &p.FiltersOr},
		{targetingNames, &p.Targeting},
	}
	for _, l := range lists {
		for _, name := range l.names {
			var vals []string
			if err := runtime.BindQueryParameter("form", true, false, name, query, &vals); err != nil {
				return SearchParams{}, invalidParam(name, err)
			}
			*l.dest = append(*l.dest, vals...)
		}
	}

	return p, nil
}

// toRequest validates the parameters into a search request.
func (p SearchParams) toRequest() (request.Request, error) {
	ft, err := field.ParseOperator(p.FacetType)
	if err != nil {
		return request.Request{}, invalidParam("ft", err)
	}
	fit, err := field.ParseOperator(p.FacetItemType)
	if err != nil {
		return request.Request{}, invalidParam("fit", err)
	}

	req, err := request.New(request.Params{
		Query: p.Q,
		Rows:  p.Rows,
		Page:  p.Page,
		Sort:  p.Sort,
		Group: p.Group,
		Filters: filter.Lists{
			Default: p.Filters,
			And:     p.FiltersAnd,
			Or:      p.FiltersOr,
		},
		FacetType:     ft,
		FacetItemType: fit,
		Locale:        p.Locale,
		Targeting:     targeting.Parse(p.Targeting),
		Exact:         p.Exact,
	})
	if err != nil {
		return request.Request{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	return req, nil
}

func bindSearchRequest(r *http.Request) (request.Request, error) {
	p, err := bindSearchParams(r.URL.Query())
	if err != nil {
		return request.Request{}, err
	}
	return p.toRequest()
}
