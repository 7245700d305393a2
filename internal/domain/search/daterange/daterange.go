// Package daterange rewrites point dates on range-faceted fields into the
// bounded range of their bucket.
package daterange

import (
	"fmt"
	"strings"
	"time"

	"github.com/openviglet/sitesearch/internal/domain/search/filter"
	"github.com/openviglet/sitesearch/internal/domain/site/field"
)

// Layout is the wire format of dates in filters.
const Layout = time.RFC3339

// UpperBound returns the last millisecond of the bucket that starts at t.
func UpperBound(t time.Time, r field.DateRange) (time.Time, bool) {
	var next time.Time
	switch r {
	case field.RangeDay:
		next = time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, t.Location())
	case field.RangeMonth:
		next = time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location())
	case field.RangeYear:
		next = time.Date(t.Year()+1, time.January, 1, 0, 0, 0, 0, t.Location())
	default:
		return time.Time{}, false
	}
	return next.Add(-time.Millisecond), true
}

// RewriteValue turns a point date into "[ value TO upper ]". Values that are
// already ranges or do not parse are returned unchanged.
func RewriteValue(value string, r field.DateRange) string {
	if strings.Contains(value, "[") {
		return value
	}
	t, err := time.Parse(Layout, strings.TrimSpace(value))
	if err != nil {
		return value
	}
	upper, ok := UpperBound(t, r)
	if !ok {
		return value
	}
	return fmt.Sprintf("[ %s TO %s ]", value, upper.Format(Layout))
}

// Rewrite applies RewriteValue to every bucket of a known range field.
func Rewrite(set filter.Set, catalog field.Catalog) filter.Set {
	if !catalog.HasDateRanges() {
		return set
	}
	return set.MapValues(func(b filter.Bucket, v string) string {
		if !b.Known {
			return v
		}
		d, ok := catalog.Get(b.Name)
		if !ok || d.Type != field.Date || !d.FacetRange.Enabled() {
			return v
		}
		return RewriteValue(v, d.FacetRange)
	})
}
