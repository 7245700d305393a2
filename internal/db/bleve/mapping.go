package bleve

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/openviglet/sitesearch/internal/db"
)

// sourceField stores the original document; it is never indexed.
const sourceField = "sitesearch_source"

// buildMapping maps each declared field; undeclared fields stay dynamic.
// Faceted TEXT fields are indexed as keywords so facet values stay whole.
func buildMapping(def *db.IndexDefinition) *mapping.IndexMappingImpl {
	im := bleve.NewIndexMapping()
	doc := bleve.NewDocumentMapping()

	for _, f := range def.Fields {
		var fm *mapping.FieldMapping
		switch f.Type {
		case db.IndexFieldText:
			if f.Facet {
				fm = bleve.NewKeywordFieldMapping()
			} else {
				fm = bleve.NewTextFieldMapping()
			}
		case db.IndexFieldKeyword:
			fm = bleve.NewKeywordFieldMapping()
		case db.IndexFieldNumeric:
			fm = bleve.NewNumericFieldMapping()
		case db.IndexFieldDate:
			fm = bleve.NewDateTimeFieldMapping()
		case db.IndexFieldBool:
			fm = bleve.NewBooleanFieldMapping()
		default:
			continue
		}
		fm.Store = true
		doc.AddFieldMappingsAt(f.Name, fm)
	}

	src := bleve.NewTextFieldMapping()
	src.Index = false
	src.Store = true
	src.IncludeInAll = false
	src.IncludeTermVectors = false
	doc.AddFieldMappingsAt(sourceField, src)

	im.DefaultMapping = doc
	return im
}

// textualFields reports, per declared field, whether it is analyzed text.
func textualFields(m mapping.IndexMapping) map[string]bool {
	out := make(map[string]bool)
	impl, ok := m.(*mapping.IndexMappingImpl)
	if !ok || impl.DefaultMapping == nil {
		return out
	}
	for name, dm := range impl.DefaultMapping.Properties {
		for _, fm := range dm.Fields {
			out[name] = fm.Type == "text" && fm.Analyzer != "keyword"
		}
	}
	return out
}

// isTextual treats undeclared fields as text, like the dynamic mapping does.
func (c *core) isTextual(field string) bool {
	t, ok := c.textual[field]
	return !ok || t
}
