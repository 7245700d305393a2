// Package filter resolves raw field:value filters into facet buckets and
// renders them as one filter query.
package filter

import (
	"strings"

	"github.com/openviglet/sitesearch/internal/domain/site/field"
)

// NoFacetPrefix names the synthetic bucket of a field the catalog does not know.
const NoFacetPrefix = "no_facet_name_"

// Lists are the raw request filters by origin.
type Lists struct {
	Default []string
	And     []string
	Or      []string
}

// Empty reports whether all lists are empty.
func (l Lists) Empty() bool {
	return len(l.Default) == 0 && len(l.And) == 0 && len(l.Or) == 0
}

// All returns every raw item in list order.
func (l Lists) All() []string {
	out := make([]string, 0, len(l.Default)+len(l.And)+len(l.Or))
	out = append(out, l.Default...)
	out = append(out, l.And...)
	return append(out, l.Or...)
}

// Item is one parsed field:value filter.
type Item struct {
	Field string
	Value string
}

// ParseItem splits a raw filter on its first colon. Items without a field or
// a value are malformed.
func ParseItem(raw string) (Item, bool) {
	f, v, ok := strings.Cut(raw, ":")
	if !ok {
		return Item{}, false
	}
	f, v = strings.TrimSpace(f), strings.TrimSpace(v)
	if f == "" || v == "" {
		return Item{}, false
	}
	return Item{Field: f, Value: v}, true
}

// Bucket groups the values selected for one facet.
type Bucket struct {
	// Name is the field name, or NoFacetPrefix+field for unknown fields.
	Name string
	// Field is the backend field the values are matched against.
	Field    string
	Type     field.Operator
	ItemType field.Operator
	Values   []string
	Known    bool
}

// Set is the ordered result of Build.
type Set struct {
	buckets   []Bucket
	index     map[string]int
	overrides Overrides
	defaults  Defaults
}

// Build resolves every raw item into a bucket. Buckets keep the order of
// their first item; values are deduplicated. Malformed items are dropped.
func Build(lists Lists, catalog field.Catalog, defaults Defaults, overrides Overrides) Set {
	s := Set{index: make(map[string]int), overrides: overrides, defaults: defaults}
	add := func(raws []string, origin Origin) {
		for _, raw := range raws {
			item, ok := ParseItem(raw)
			if !ok {
				continue
			}
			s.add(item, origin, catalog)
		}
	}
	add(lists.Default, OriginDefault)
	add(lists.And, OriginAnd)
	add(lists.Or, OriginOr)
	return s
}

func (s *Set) add(item Item, origin Origin, catalog field.Catalog) {
	def, known := catalog.Get(item.Field)
	known = known && def.Enabled

	var b Bucket
	if known {
		b = Bucket{
			Name:     def.Name,
			Field:    def.BackendName(),
			Type:     ResolveFacetType(s.overrides.FacetType, def.FacetType, origin, s.defaults.FacetType),
			ItemType: ResolveFacetItemType(s.overrides.FacetItemType, def.FacetItemType, s.defaults.FacetItemType),
			Known:    true,
		}
	} else {
		b = Bucket{
			Name:     NoFacetPrefix + item.Field,
			Field:    item.Field,
			Type:     concreteOr(s.defaults.FacetType, field.And),
			ItemType: concreteOr(s.defaults.FacetItemType, field.And),
		}
	}

	if i, ok := s.index[b.Name]; ok {
		existing := &s.buckets[i]
		for _, v := range existing.Values {
			if v == item.Value {
				return
			}
		}
		existing.Values = append(existing.Values, item.Value)
		return
	}
	b.Values = []string{item.Value}
	s.index[b.Name] = len(s.buckets)
	s.buckets = append(s.buckets, b)
}

// Buckets returns a copy of the buckets in order.
func (s Set) Buckets() []Bucket {
	out := make([]Bucket, len(s.buckets))
	for i, b := range s.buckets {
		b.Values = append([]string(nil), b.Values...)
		out[i] = b
	}
	return out
}

// Len returns the number of buckets.
func (s Set) Len() int { return len(s.buckets) }

// Has reports whether a known field has a bucket.
func (s Set) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Selected reports whether field:value is one of the filter values.
func (s Set) Selected(name, value string) bool {
	i, ok := s.index[name]
	if !ok {
		return false
	}
	for _, v := range s.buckets[i].Values {
		if v == value {
			return true
		}
	}
	return false
}

// MapValues returns a copy with fn applied to every value.
func (s Set) MapValues(fn func(b Bucket, value string) string) Set {
	out := Set{
		buckets:   s.Buckets(),
		index:     make(map[string]int, len(s.index)),
		overrides: s.overrides,
		defaults:  s.defaults,
	}
	for i := range out.buckets {
		b := &out.buckets[i]
		for j, v := range b.Values {
			b.Values[j] = fn(*b, v)
		}
		out.index[b.Name] = i
	}
	return out
}

// FacetType resolves how a facet field combines with other facets when it
// has no bucket of its own.
func (s Set) FacetType(def field.Definition) field.Operator {
	if i, ok := s.index[def.Name]; ok {
		return s.buckets[i].Type
	}
	return ResolveFacetType(s.overrides.FacetType, def.FacetType, OriginDefault, s.defaults.FacetType)
}
