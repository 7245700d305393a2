package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/openviglet/sitesearch/internal/db"
	"github.com/openviglet/sitesearch/internal/domain"
	"github.com/openviglet/sitesearch/internal/domain/search/request"
	"github.com/openviglet/sitesearch/internal/domain/search/result"
	"github.com/openviglet/sitesearch/internal/domain/site"
	logpkg "github.com/openviglet/sitesearch/internal/logger"
	"github.com/openviglet/sitesearch/internal/metrics"
)

// Service compiles, executes and assembles site searches.
type Service struct {
	sites   SiteReader
	exec    *Executor
	speller Speller
}

// New creates a search service. speller may be nil.
func New(sites SiteReader, client Client, speller Speller) *Service {
	return &Service{sites: sites, exec: NewExecutor(client), speller: speller}
}

// Search runs one request against a site. Only an unknown site is an error;
// backend failures produce an empty result.
func (s *Service) Search(ctx context.Context, siteName string, req request.Request) (*result.Result, error) {
	start := time.Now()

	st, err := s.sites.Get(ctx, siteName)
	if err != nil {
		return nil, fmt.Errorf("get site: %w", err)
	}

	c := Compile(st, req)
	ex := s.exec.Execute(ctx, st.Name(), st.Search().Wildcard, c.Query)
	res := Assemble(c, ex)

	if st.Search().SpellCheck && ex.Response != nil {
		s.suggest(ctx, c, res)
	}

	res.Elapsed = time.Since(start)
	metrics.SearchDuration.WithLabelValues(st.Name()).Observe(res.Elapsed.Seconds())
	return res, nil
}

// FacetRefresh recomputes one facet as if it were not filtering itself.
func (s *Service) FacetRefresh(
	ctx context.Context, siteName, facet string, req request.Request,
) (*result.Facet, error) {
	st, err := s.sites.Get(ctx, siteName)
	if err != nil {
		return nil, fmt.Errorf("get site: %w", err)
	}
	def, ok := st.Catalog().Facet(facet)
	if !ok {
		return nil, fmt.Errorf("facet %q: %w", facet, domain.ErrNotFound)
	}

	c := Compile(st, req.WithFacet(def.Name))
	ex := s.exec.Execute(ctx, st.Name(), st.Search().Wildcard, c.Query)
	res := Assemble(c, ex)

	for i := range res.Facets {
		if res.Facets[i].Name == def.Name {
			return &res.Facets[i], nil
		}
	}
	return &result.Facet{Name: def.Name, Label: def.Label(), Range: def.IsRangeFacet()}, nil
}

// Locales lists the locales a site serves.
func (s *Service) Locales(ctx context.Context, siteName string) ([]site.Locale, error) {
	st, err := s.sites.Get(ctx, siteName)
	if err != nil {
		return nil, fmt.Errorf("get site: %w", err)
	}
	return st.Locales(), nil
}

// suggest asks the speller for a correction when nothing matched and the
// backend offered none.
func (s *Service) suggest(ctx context.Context, c *Compiled, res *result.Result) {
	if s.speller == nil || res.SpellCheck != nil || res.NumFound > 0 {
		return
	}
	q := c.Request.Query()
	if q == "" || q == db.MatchAll {
		return
	}
	corrected, err := s.speller.Correct(ctx, q, c.Locale)
	if err != nil {
		logpkg.FromContext(ctx).Warn("spell correction failed",
			zap.String("site", c.Site.Name()), zap.Error(err))
		return
	}
	if corrected == "" || corrected == q {
		return
	}
	res.SpellCheck = &result.SpellCheck{Original: q, Corrected: corrected, Source: "speller"}
}
