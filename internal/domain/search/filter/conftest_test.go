package filter

import (
	"testing"

	"github.com/openviglet/sitesearch/internal/domain/site/field"
)

func newTestCatalog(t *testing.T) field.Catalog {
	t.Helper()
	c, err := field.NewCatalog([]field.Definition{
		{Name: "category", Type: field.String, Enabled: true, Facet: true},
		{Name: "type", Type: field.String, Enabled: true, Facet: true},
		{Name: "tag", Type: field.String, Enabled: true, Facet: true, FacetType: field.Or, FacetItemType: field.Or},
		{Name: "person", Type: field.String, Kind: field.KindNER, Enabled: true, Facet: true},
		{Name: "published", Type: field.Date, Enabled: true, Facet: true, FacetRange: field.RangeMonth},
		{Name: "disabled", Type: field.String, Enabled: false, Facet: true},
	})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	return c
}

var (
	andDefaults = Defaults{FacetType: field.And, FacetItemType: field.And}
	orItems     = Defaults{FacetType: field.And, FacetItemType: field.Or}
)
