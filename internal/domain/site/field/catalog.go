package field

import (
	"cmp"
	"fmt"
	"strings"
)

// Catalog is a read-only, ordered view of a site's field definitions.
type Catalog struct {
	defs   []Definition
	byName map[string]int
}

// NewCatalog validates definitions and builds a catalog. Names must be unique.
func NewCatalog(defs []Definition) (Catalog, error) {
	c := Catalog{
		defs:   make([]Definition, 0, len(defs)),
		byName: make(map[string]int, len(defs)),
	}
	for _, d := range defs {
		v, err := d.Validate()
		if err != nil {
			return Catalog{}, err
		}
		if _, dup := c.byName[v.Name]; dup {
			return Catalog{}, fmt.Errorf("duplicate field name: %s", v.Name)
		}
		c.byName[v.Name] = len(c.defs)
		c.defs = append(c.defs, v)
	}
	return c, nil
}

// Len returns the number of fields.
func (c Catalog) Len() int { return len(c.defs) }

// All returns a copy of every definition in declaration order.
func (c Catalog) All() []Definition {
	out := make([]Definition, len(c.defs))
	copy(out, c.defs)
	return out
}

// Get looks a field up by name. Entity-prefixed names resolve to their field.
func (c Catalog) Get(name string) (Definition, bool) {
	if i, ok := c.byName[name]; ok {
		return c.defs[i], true
	}
	if trimmed, ok := strings.CutPrefix(name, EntityPrefix); ok {
		if i, ok := c.byName[trimmed]; ok && c.defs[i].BackendName() == name {
			return c.defs[i], true
		}
	}
	return Definition{}, false
}

// Facet returns the field when it is an enabled facet.
func (c Catalog) Facet(name string) (Definition, bool) {
	d, ok := c.Get(name)
	if !ok || !d.IsFacet() {
		return Definition{}, false
	}
	return d, true
}

func (c Catalog) filter(keep func(Definition) bool) []Definition {
	var out []Definition
	for _, d := range c.defs {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}

// Facets returns enabled facet fields in declaration order.
func (c Catalog) Facets() []Definition {
	return c.filter(Definition.IsFacet)
}

// FacetRanges returns facet fields bucketed by date ranges.
func (c Catalog) FacetRanges() []Definition {
	return c.filter(Definition.IsRangeFacet)
}

// Highlights returns enabled fields eligible for highlighting.
func (c Catalog) Highlights() []Definition {
	return c.filter(func(d Definition) bool { return d.Enabled && d.Highlight })
}

// Similarity returns enabled fields used for more-like-this.
func (c Catalog) Similarity() []Definition {
	return c.filter(func(d Definition) bool { return d.Enabled && d.Similarity })
}

// Required returns enabled fields that must be present on every document.
func (c Catalog) Required() []Definition {
	return c.filter(func(d Definition) bool { return d.Enabled && d.Required })
}

// DateRanges returns DATE fields with a range granularity, enabled or not as
// facets. The range rewriter applies to all of them.
func (c Catalog) DateRanges() []Definition {
	return c.filter(func(d Definition) bool { return d.Type == Date && d.FacetRange.Enabled() })
}

// HasDateRanges reports whether any field needs range rewriting.
func (c Catalog) HasDateRanges() bool { return len(c.DateRanges()) > 0 }

// Position returns the display position of a facet by backend name. Unknown
// facets sort last.
func (c Catalog) Position(name string) int {
	if d, ok := c.Get(name); ok {
		return d.Position
	}
	return int(^uint(0) >> 1)
}

// ComparePosition orders two facet names by display position, then by name.
func (c Catalog) ComparePosition(a, b string) int {
	if n := cmp.Compare(c.Position(a), c.Position(b)); n != 0 {
		return n
	}
	return strings.Compare(a, b)
}
