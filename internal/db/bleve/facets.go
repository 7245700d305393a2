package bleve

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/openviglet/sitesearch/internal/db"
)

// facets counts field and date-range facets over base. Field facets
// marked Exclude are counted a second time without tagged filters.
func (c *core) facets(ctx context.Context, q *db.Query, base query.Query, resp *db.Response) error {
	f := q.Facet
	if f == nil || (len(f.Fields) == 0 && len(f.Ranges) == 0) {
		return nil
	}

	var plain, excluded []db.FieldFacet
	for _, ff := range f.Fields {
		if ff.Exclude {
			excluded = append(excluded, ff)
		} else {
			plain = append(plain, ff)
		}
	}

	counted := make(map[string]db.FacetCounts, len(f.Fields))
	if len(plain) > 0 || len(f.Ranges) > 0 {
		req := bleve.NewSearchRequestOptions(base, 0, 0, false)
		for _, ff := range plain {
			req.AddFacet(ff.Field, fieldFacetRequest(ff))
		}
		var ranges []db.RangeFacet
		for _, r := range f.Ranges {
			fr, err := c.rangeFacetRequest(ctx, base, r)
			if err != nil {
				return err
			}
			if fr != nil {
				req.AddFacet(rangeKey+r.Field, fr)
				ranges = append(ranges, r)
			}
		}
		if len(req.Facets) > 0 {
			res, err := c.index.SearchInContext(ctx, req)
			if err != nil {
				return fmt.Errorf("facets: %w", err)
			}
			for _, ff := range plain {
				counted[ff.Field] = fieldCounts(ff, res.Facets[ff.Field])
			}
			for _, r := range ranges {
				resp.RangeFacets = append(resp.RangeFacets, rangeCounts(r.Field, res.Facets[rangeKey+r.Field]))
			}
		}
	}

	if len(excluded) > 0 {
		untagged, err := c.compile(q, false)
		if err != nil {
			return err
		}
		req := bleve.NewSearchRequestOptions(untagged, 0, 0, false)
		for _, ff := range excluded {
			req.AddFacet(ff.Field, fieldFacetRequest(ff))
		}
		res, err := c.index.SearchInContext(ctx, req)
		if err != nil {
			return fmt.Errorf("excluded facets: %w", err)
		}
		for _, ff := range excluded {
			counted[ff.Field] = fieldCounts(ff, res.Facets[ff.Field])
		}
	}

	for _, ff := range f.Fields {
		if fc, ok := counted[ff.Field]; ok {
			resp.FieldFacets = append(resp.FieldFacets, fc)
		}
	}
	return nil
}

// fieldFacetRequest asks for every term when sorting by value, since
// bleve only returns the most frequent ones.
func fieldFacetRequest(ff db.FieldFacet) *bleve.FacetRequest {
	size := ff.Limit
	if size <= 0 || ff.Sort == db.FacetSortIndex {
		size = maxFacetTerms
	}
	return bleve.NewFacetRequest(ff.Field, size)
}

func fieldCounts(ff db.FieldFacet, fr *search.FacetResult) db.FacetCounts {
	out := db.FacetCounts{Field: ff.Field}
	terms := termsOf(fr)
	if ff.Sort == db.FacetSortIndex {
		terms = append([]*search.TermFacet(nil), terms...)
		sort.Slice(terms, func(i, j int) bool { return terms[i].Term < terms[j].Term })
	}
	for _, t := range terms {
		if t.Count < ff.MinCount {
			continue
		}
		if ff.Limit > 0 && len(out.Counts) >= ff.Limit {
			break
		}
		out.Counts = append(out.Counts, db.FacetCount{Value: t.Term, Count: int64(t.Count)})
	}
	return out
}

// rangeFacetRequest lays calendar-aligned buckets between the first and
// last date present in the matching documents, clipped to the facet
// bounds. It returns nil when no document has a date in range.
func (c *core) rangeFacetRequest(ctx context.Context, base query.Query, r db.RangeFacet) (*bleve.FacetRequest, error) {
	next, err := parseGap(r.Gap)
	if err != nil {
		return nil, fmt.Errorf("%w: range facet %s: %v", db.ErrBadQuery, r.Field, err)
	}
	lo, hi, ok, err := c.dateBounds(ctx, base, r.Field)
	if err != nil {
		return nil, fmt.Errorf("range facet %s: %w", r.Field, err)
	}
	if !ok {
		return nil, nil
	}
	if start, ok := parseBound(r.Start); ok && !start.IsZero() && lo.Before(start) {
		lo = start.UTC()
	}
	if end, ok := parseBound(r.End); ok && !end.IsZero() && hi.After(end) {
		hi = end.UTC()
	}
	if lo.After(hi) {
		return nil, nil
	}

	fr := bleve.NewFacetRequest(r.Field, maxRangeBuckets)
	n := 0
	for t := floorTo(lo, r.Gap); !t.After(hi) && n < maxRangeBuckets; t = next(t) {
		fr.AddDateTimeRange(t.Format(time.RFC3339), t, next(t))
		n++
	}
	return fr, nil
}

// rangeCounts lists buckets in chronological order. Bucket names are
// RFC 3339 UTC starts and sort as strings.
func rangeCounts(field string, fr *search.FacetResult) db.FacetCounts {
	out := db.FacetCounts{Field: field}
	if fr == nil {
		return out
	}
	ranges := append([]*search.DateRangeFacet(nil), fr.DateRanges...)
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Name < ranges[j].Name })
	for _, d := range ranges {
		out.Counts = append(out.Counts, db.FacetCount{Value: d.Name, Count: int64(d.Count)})
	}
	return out
}
