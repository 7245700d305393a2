package search

import (
	"github.com/openviglet/sitesearch/internal/db"
	"github.com/openviglet/sitesearch/internal/domain/search/filter"
	"github.com/openviglet/sitesearch/internal/domain/site"
	"github.com/openviglet/sitesearch/internal/domain/site/field"
)

// Fixed directive parameters.
const (
	rangeFacetStart = "NOW-100YEARS"
	rangeFacetEnd   = "NOW+100YEARS"

	highlightSnippets = 1
	highlightFragSize = 0

	mltMinDF = 1
	mltMinTF = 1
	mltMinWL = 7
	mltMaxQT = 1000
	mltCount = 5
)

// facetDirective returns nil unless faceting is enabled with a positive
// item limit and at least one enabled facet. A refresh restricts it to one
// field.
func facetDirective(s *site.Site, set filter.Set, refresh string) *db.FacetDirective {
	cfg := s.Search()
	if !cfg.FacetEnabled || cfg.ItemsPerFacet <= 0 {
		return nil
	}
	facets := s.Catalog().Facets()
	if refresh != "" {
		d, ok := s.Catalog().Facet(refresh)
		if !ok {
			return nil
		}
		facets = []field.Definition{d}
	}
	if len(facets) == 0 {
		return nil
	}

	dir := &db.FacetDirective{}
	for _, d := range facets {
		if d.IsRangeFacet() {
			dir.Ranges = append(dir.Ranges, db.RangeFacet{
				Field: d.BackendName(),
				Start: rangeFacetStart,
				End:   rangeFacetEnd,
				Gap:   "+1" + string(d.FacetRange),
			})
			continue
		}
		dir.Fields = append(dir.Fields, db.FieldFacet{
			Field:    d.BackendName(),
			Limit:    cfg.ItemsPerFacet,
			MinCount: 1,
			Sort:     facetSort(d, cfg),
			Exclude:  set.Exclude(d, refresh),
		})
	}
	return dir
}

func facetSort(d field.Definition, cfg site.SearchConfig) string {
	sort := cfg.FacetSort
	if d.FacetSort != field.SortDefault && d.FacetSort != "" {
		sort = d.FacetSort
	}
	if sort == field.SortAlphabetical {
		return db.FacetSortIndex
	}
	return db.FacetSortCount
}

func highlightDirective(s *site.Site) *db.HighlightDirective {
	cfg := s.Search()
	defs := s.Catalog().Highlights()
	if !cfg.HighlightEnabled || len(defs) == 0 {
		return nil
	}
	return &db.HighlightDirective{
		Fields:   backendNames(defs),
		Pre:      cfg.HighlightPre,
		Post:     cfg.HighlightPost,
		Snippets: highlightSnippets,
		FragSize: highlightFragSize,
	}
}

func mltDirective(s *site.Site) *db.MLTDirective {
	defs := s.Catalog().Similarity()
	if !s.Search().MLT || len(defs) == 0 {
		return nil
	}
	return &db.MLTDirective{
		Fields: backendNames(defs),
		MinDF:  mltMinDF,
		MinTF:  mltMinTF,
		MinWL:  mltMinWL,
		Boost:  false,
		MaxQT:  mltMaxQT,
		Count:  mltCount,
	}
}

func backendNames(defs []field.Definition) []string {
	out := make([]string, len(defs))
	for i, d := range defs {
		out[i] = d.BackendName()
	}
	return out
}
