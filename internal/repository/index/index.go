package index

import (
	"fmt"

	"github.com/openviglet/sitesearch/internal/db"
	"github.com/openviglet/sitesearch/internal/domain/site/field"
)

// buildIndex creates the definition of one core from a site's field catalog.
// Fields are indexed under their backend names so entity fields keep their prefix.
func buildIndex(core string, catalog field.Catalog) (*db.IndexDefinition, error) {
	def, err := db.NewIndex(core).Catalog(catalog).Build()
	if err != nil {
		return nil, fmt.Errorf("index definition for %s: %w", core, err)
	}
	return def, nil
}
