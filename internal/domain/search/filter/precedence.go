package filter

import "github.com/openviglet/sitesearch/internal/domain/site/field"

// Origin is the request list a raw filter item came from.
type Origin int

// Origin constants.
const (
	OriginDefault Origin = iota
	OriginAnd
	OriginOr
)

// operator returns the facet type implied by the list, or Default for the
// plain list.
func (o Origin) operator() field.Operator {
	switch o {
	case OriginAnd:
		return field.And
	case OriginOr:
		return field.Or
	}
	return field.Default
}

// Overrides are the request-level operators. None (or empty) defers.
type Overrides struct {
	FacetType     field.Operator
	FacetItemType field.Operator
}

// Defaults are the site-level operators. Both must be AND or OR.
type Defaults struct {
	FacetType     field.Operator
	FacetItemType field.Operator
}

// ResolveFacetType picks how a bucket combines with sibling buckets:
// request override, then the field's own type, then the list origin, then the site.
func ResolveFacetType(request, fieldType field.Operator, origin Origin, site field.Operator) field.Operator {
	if request.Concrete() {
		return request
	}
	if fieldType.Concrete() {
		return fieldType
	}
	if op := origin.operator(); op.Concrete() {
		return op
	}
	return concreteOr(site, field.And)
}

// ResolveFacetItemType picks how values inside one bucket combine:
// request override, then the field's own type, then the site.
func ResolveFacetItemType(request, fieldType, site field.Operator) field.Operator {
	if request.Concrete() {
		return request
	}
	if fieldType.Concrete() {
		return fieldType
	}
	return concreteOr(site, field.And)
}

func concreteOr(op, fallback field.Operator) field.Operator {
	if op.Concrete() {
		return op
	}
	return fallback
}
