package filter

import (
	"strconv"
	"strings"

	"github.com/openviglet/sitesearch/internal/domain/site/field"
)

// Exclusion tags keep a facet's own filter from reducing its counts.
const (
	TagAll     = "{!tag=_all_}"
	ExcludeAll = "{!ex=_all_}"
)

// Tagged reports whether the rendered filter carries TagAll. It does when a
// bucket is OR across facets and OR within its values, or when refresh names
// a facet that has no bucket of its own.
func (s Set) Tagged(refresh string) bool {
	if len(s.buckets) == 0 {
		return false
	}
	for _, b := range s.buckets {
		if b.Type == field.Or && b.ItemType == field.Or {
			return true
		}
	}
	return refresh != "" && !s.Has(refresh)
}

// Exclude reports whether the facet on def must ignore tagged filters.
func (s Set) Exclude(def field.Definition, refresh string) bool {
	if !s.Tagged(refresh) {
		return false
	}
	if refresh != "" && def.Name == refresh {
		return true
	}
	return s.FacetType(def) == field.Or
}

// Render builds the filter query. AND buckets come first, then OR buckets,
// glued by AND when both exist. It reports false when there are no buckets.
func (s Set) Render(refresh string) (string, bool) {
	if len(s.buckets) == 0 {
		return "", false
	}
	var ands, ors []string
	for _, b := range s.buckets {
		if b.Type == field.Or {
			ors = append(ors, renderBucket(b))
		} else {
			ands = append(ands, renderBucket(b))
		}
	}

	var q string
	switch {
	case len(ands) > 0 && len(ors) > 0:
		q = strings.Join(ands, " AND ") + " AND (" + strings.Join(ors, " OR ") + ")"
	case len(ands) > 0:
		q = strings.Join(ands, " AND ")
	default:
		q = strings.Join(ors, " OR ")
	}
	if s.Tagged(refresh) {
		q = TagAll + q
	}
	return q, true
}

func renderBucket(b Bucket) string {
	op := " AND "
	if b.ItemType == field.Or {
		op = " OR "
	}
	parts := make([]string, len(b.Values))
	for i, v := range b.Values {
		parts[i] = b.Field + ":" + quote(v)
	}
	return "(" + strings.Join(parts, op) + ")"
}

// quote leaves ranges, groups and trailing wildcards as they are.
func quote(v string) string {
	if strings.HasPrefix(v, "[") || strings.HasPrefix(v, "(") || strings.HasSuffix(v, "*") {
		return v
	}
	return strconv.Quote(v)
}
