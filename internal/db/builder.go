package db

import (
	"strings"

	"github.com/openviglet/sitesearch/internal/domain/site/field"
)

// IndexBuilder is a fluent builder for index definitions.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts building an index definition.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{def: IndexDefinition{Name: name}}
}

func (b *IndexBuilder) add(name string, t IndexFieldType, facet bool) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, IndexField{Name: name, Type: t, Facet: facet})
	return b
}

// Text adds an analyzed text field.
func (b *IndexBuilder) Text(name string) *IndexBuilder { return b.add(name, IndexFieldText, false) }

// Keyword adds an exact-match field that can be faceted.
func (b *IndexBuilder) Keyword(name string) *IndexBuilder {
	return b.add(name, IndexFieldKeyword, true)
}

// Numeric adds a numeric field.
func (b *IndexBuilder) Numeric(name string) *IndexBuilder {
	return b.add(name, IndexFieldNumeric, false)
}

// Date adds a date-time field.
func (b *IndexBuilder) Date(name string) *IndexBuilder { return b.add(name, IndexFieldDate, false) }

// Bool adds a boolean field.
func (b *IndexBuilder) Bool(name string) *IndexBuilder { return b.add(name, IndexFieldBool, false) }

// Catalog adds every enabled field of a site catalog under its backend name.
// Facet and string fields are keywords, TEXT fields are analyzed.
func (b *IndexBuilder) Catalog(c field.Catalog) *IndexBuilder {
	for _, d := range c.All() {
		if !d.Enabled {
			continue
		}
		name := d.BackendName()
		switch d.Type {
		case field.Text:
			b.add(name, IndexFieldText, d.Facet)
		case field.Int, field.Long:
			b.add(name, IndexFieldNumeric, d.Facet)
		case field.Date:
			b.add(name, IndexFieldDate, d.Facet)
		case field.Bool:
			b.add(name, IndexFieldBool, d.Facet)
		default:
			b.add(name, IndexFieldKeyword, true)
		}
	}
	return b
}

// Build validates and returns the index definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	return &b.def, nil
}

// MustBuild calls Build and panics on error.
func (b *IndexBuilder) MustBuild() *IndexDefinition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}

// String returns a debug representation of the schema.
func (idx *IndexDefinition) String() string {
	parts := []string{"INDEX", idx.Name, "SCHEMA"}
	for i := range idx.Fields {
		f := &idx.Fields[i]
		parts = append(parts, f.Name)
		switch f.Type {
		case IndexFieldText:
			parts = append(parts, "TEXT")
		case IndexFieldKeyword:
			parts = append(parts, "KEYWORD")
		case IndexFieldNumeric:
			parts = append(parts, "NUMERIC")
		case IndexFieldDate:
			parts = append(parts, "DATE")
		case IndexFieldBool:
			parts = append(parts, "BOOL")
		}
		if f.Facet && f.Type != IndexFieldKeyword {
			parts = append(parts, "FACET")
		}
	}
	return strings.Join(parts, " ")
}
