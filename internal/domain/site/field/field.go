package field

import (
	"fmt"
	"strings"
)

// Type is the value type of a site field.
type Type string

// Field type constants.
const (
	Text   Type = "TEXT"
	String Type = "STRING"
	Int    Type = "INT"
	Bool   Type = "BOOL"
	Date   Type = "DATE"
	Long   Type = "LONG"
	Array  Type = "ARRAY"
)

// IsValid checks if the type is one of the supported values.
func (t Type) IsValid() bool {
	switch t {
	case Text, String, Int, Bool, Date, Long, Array:
		return true
	}
	return false
}

// Textual reports whether highlight snippets may replace values of this type.
func (t Type) Textual() bool { return t == Text || t == String }

// Operator combines filter clauses. Fields and sites use Default to defer to
// the next level; requests use None for the same purpose.
type Operator string

// Operator constants.
const (
	Default Operator = "DEFAULT"
	None    Operator = "NONE"
	And     Operator = "AND"
	Or      Operator = "OR"
)

// Concrete reports whether the operator is AND or OR.
func (o Operator) Concrete() bool { return o == And || o == Or }

// ParseOperator accepts and/or/none/default in any case. Empty means Default.
func ParseOperator(s string) (Operator, error) {
	if s == "" {
		return Default, nil
	}
	op := Operator(strings.ToUpper(s))
	switch op {
	case Default, None, And, Or:
		return op, nil
	}
	return "", fmt.Errorf("invalid operator %q", s)
}

// DateRange is the bucket granularity of a date facet.
type DateRange string

// DateRange constants.
const (
	RangeDisabled DateRange = "DISABLED"
	RangeDay      DateRange = "DAY"
	RangeMonth    DateRange = "MONTH"
	RangeYear     DateRange = "YEAR"
)

// Enabled reports whether the granularity produces a range facet.
func (r DateRange) Enabled() bool {
	return r == RangeDay || r == RangeMonth || r == RangeYear
}

// FacetSort orders facet items.
type FacetSort string

// FacetSort constants.
const (
	SortDefault      FacetSort = "DEFAULT"
	SortCount        FacetSort = "COUNT"
	SortAlphabetical FacetSort = "ALPHABETICAL"
)

// Kind is the semantic origin of a field.
type Kind string

// Kind constants. NER and Thesaurus fields are stored under EntityPrefix.
const (
	KindField     Kind = "FIELD"
	KindNER       Kind = "NER"
	KindThesaurus Kind = "THESAURUS"
)

// EntityPrefix is prepended to the backend name of entity fields.
const EntityPrefix = "turing_entity_"

// Definition describes one field of a site. Values are read-only once a
// Catalog is built from them.
type Definition struct {
	Name          string
	Type          Type
	Kind          Kind
	Enabled       bool
	Facet         bool
	FacetName     string
	FacetType     Operator
	FacetItemType Operator
	FacetRange    DateRange
	FacetSort     FacetSort
	Highlight     bool
	Similarity    bool
	Required      bool
	DefaultValue  string
	Position      int
}

// BackendName is the name the backend indexes the field under.
func (d Definition) BackendName() string {
	if d.Kind == KindNER || d.Kind == KindThesaurus {
		return EntityPrefix + d.Name
	}
	return d.Name
}

// IsFacet reports whether the field is an enabled facet.
func (d Definition) IsFacet() bool { return d.Enabled && d.Facet }

// IsRangeFacet reports whether the field is faceted by date ranges.
func (d Definition) IsRangeFacet() bool {
	return d.IsFacet() && d.Type == Date && d.FacetRange.Enabled()
}

// Label is the display name of the facet, falling back to the field name.
func (d Definition) Label() string {
	if d.FacetName != "" {
		return d.FacetName
	}
	return d.Name
}

// Validate checks the definition and fills unset enums with their defaults.
func (d Definition) Validate() (Definition, error) {
	if d.Name == "" {
		return d, fmt.Errorf("field name is required")
	}
	if strings.ContainsAny(d.Name, ": ") {
		return d, fmt.Errorf("field name %q must not contain spaces or colons", d.Name)
	}
	if d.Type == "" {
		d.Type = String
	}
	if !d.Type.IsValid() {
		return d, fmt.Errorf("invalid field type %q for %q", d.Type, d.Name)
	}
	if d.Kind == "" {
		d.Kind = KindField
	}
	if d.FacetType == "" {
		d.FacetType = Default
	}
	if d.FacetItemType == "" {
		d.FacetItemType = Default
	}
	if d.FacetRange == "" {
		d.FacetRange = RangeDisabled
	}
	if d.FacetSort == "" {
		d.FacetSort = SortDefault
	}
	if d.FacetRange.Enabled() && d.Type != Date {
		return d, fmt.Errorf("field %q: date range requires DATE type", d.Name)
	}
	return d, nil
}
