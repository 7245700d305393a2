package search

import (
	"strings"

	"github.com/openviglet/sitesearch/internal/db"
	"github.com/openviglet/sitesearch/internal/domain/search/boost"
	"github.com/openviglet/sitesearch/internal/domain/search/daterange"
	"github.com/openviglet/sitesearch/internal/domain/search/filter"
	"github.com/openviglet/sitesearch/internal/domain/search/request"
	"github.com/openviglet/sitesearch/internal/domain/search/targeting"
	"github.com/openviglet/sitesearch/internal/domain/site"
)

// Compiled is a request translated for one site. Query is never mutated
// after Compile returns.
type Compiled struct {
	Site    *site.Site
	Request request.Request
	Query   *db.Query
	// Selected holds the filters as requested, before range rewriting.
	Selected filter.Set
	Rows     int
	Locale   string
	// Refresh is the catalog name of the facet being refreshed, if any.
	Refresh string
}

// Compile builds the backend query for req. It is pure and never fails:
// anything it cannot resolve is dropped from the query.
func Compile(s *site.Site, req request.Request) *Compiled {
	cfg := s.Search()
	catalog := s.Catalog()

	core, locale := s.ResolveCore(req.Locale())
	rows := req.Rows()
	if rows <= 0 {
		rows = cfg.RowsPerPage
	}

	refresh := req.Facet()
	if d, ok := catalog.Get(refresh); ok {
		refresh = d.Name
	}

	q := &db.Query{
		Core:        core,
		Text:        queryText(cfg, req),
		QueryFields: append([]string(nil), cfg.QueryFields...),
		Start:       (req.Page() - 1) * rows,
		Rows:        rows,
		SpellCheck:  cfg.SpellCheck,
	}
	if f, desc, ok := req.Sort().Resolve(cfg.DefaultSortField); ok {
		// Unknown fields are ignored; the default sort field may live outside the catalog.
		if d, known := catalog.Get(f); known {
			q.Sort = []db.SortField{{Field: d.BackendName(), Desc: desc}}
		} else if f == cfg.DefaultSortField {
			q.Sort = []db.SortField{{Field: f, Desc: desc}}
		}
	}

	selected := filter.Build(req.Filters(), catalog,
		filter.Defaults{FacetType: cfg.FacetType, FacetItemType: cfg.FacetItemType},
		req.Overrides())
	rewritten := daterange.Rewrite(selected, catalog)
	if fq, ok := rewritten.Render(refresh); ok {
		q.Filters = append(q.Filters, fq)
	}

	rules := req.Targeting()
	if rules.Empty() {
		rules = s.Targeting()
	}
	if clause, ok := targeting.Compile(rules); ok {
		q.Filters = append(q.Filters, clause)
	}

	q.Boosts = boost.Build(s.Rankings(), catalog)
	q.Facet = facetDirective(s, rewritten, refresh)
	q.Highlight = highlightDirective(s)
	q.MLT = mltDirective(s)

	if g := strings.TrimSpace(req.Group()); g != "" {
		if d, ok := catalog.Get(g); ok {
			g = d.BackendName()
		}
		q.Group = &db.GroupDirective{Field: g, Limit: rows}
	}

	return &Compiled{
		Site:     s,
		Request:  req,
		Query:    q,
		Selected: selected,
		Rows:     rows,
		Locale:   locale,
		Refresh:  refresh,
	}
}

// queryText applies match-all and exact-match rules to the free text.
func queryText(cfg site.SearchConfig, req request.Request) string {
	text := strings.TrimSpace(req.Query())
	if text == "" {
		return db.MatchAll
	}
	if cfg.ExactMatch && req.Exact() && isQuoted(text) {
		return cfg.ExactMatchField + ":" + text
	}
	return text
}

func isQuoted(s string) bool {
	return len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`)
}
