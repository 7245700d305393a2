package filter

import (
	"testing"

	"github.com/openviglet/sitesearch/internal/domain/site/field"
)

func TestResolveFacetType(t *testing.T) {
	tests := []struct {
		name      string
		request   field.Operator
		fieldType field.Operator
		origin    Origin
		site      field.Operator
		want      field.Operator
	}{
		{"request wins", field.Or, field.And, OriginAnd, field.And, field.Or},
		{"request none defers to field", field.None, field.Or, OriginAnd, field.And, field.Or},
		{"empty request defers to field", "", field.Or, OriginDefault, field.And, field.Or},
		{"field default defers to origin", field.None, field.Default, OriginOr, field.And, field.Or},
		{"and list", field.None, field.Default, OriginAnd, field.Or, field.And},
		{"default list defers to site", field.None, field.Default, OriginDefault, field.Or, field.Or},
		{"unset site falls back to AND", field.None, field.Default, OriginDefault, "", field.And},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveFacetType(tt.request, tt.fieldType, tt.origin, tt.site)
			if got != tt.want {
				t.Errorf("ResolveFacetType() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestResolveFacetItemType(t *testing.T) {
	tests := []struct {
		name      string
		request   field.Operator
		fieldType field.Operator
		site      field.Operator
		want      field.Operator
	}{
		{"request wins", field.And, field.Or, field.Or, field.And},
		{"field wins over site", field.None, field.Or, field.And, field.Or},
		{"site", field.None, field.Default, field.Or, field.Or},
		{"fallback", "", "", "", field.And},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveFacetItemType(tt.request, tt.fieldType, tt.site)
			if got != tt.want {
				t.Errorf("ResolveFacetItemType() = %s, want %s", got, tt.want)
			}
		})
	}
}
