package db

import (
	"errors"
	"strconv"
)

// IndexFieldType enumerates index field types.
type IndexFieldType int

const (
	// IndexFieldText is an analyzed full-text field.
	IndexFieldText IndexFieldType = iota
	// IndexFieldKeyword is an exact-match, facetable field.
	IndexFieldKeyword
	// IndexFieldNumeric is a numeric field.
	IndexFieldNumeric
	// IndexFieldDate is a date-time field.
	IndexFieldDate
	// IndexFieldBool is a boolean field.
	IndexFieldBool
)

// IndexField describes a single field of an index.
type IndexField struct {
	Name string
	Type IndexFieldType
	// Facet also indexes the raw value for faceting and exact filters.
	Facet bool
}

// IndexDefinition is the schema of one core.
type IndexDefinition struct {
	Name   string
	Fields []IndexField
}

// Validate checks that the index definition is well-formed.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return errors.New("index name is required")
	}
	if !IsValidIdentifier(idx.Name) {
		return errors.New("index name contains invalid characters")
	}

	seen := make(map[string]bool)
	for i := range idx.Fields {
		f := &idx.Fields[i]
		if f.Name == "" {
			return errors.New("field name is required at index " + strconv.Itoa(i))
		}
		if seen[f.Name] {
			return errors.New("duplicate field name: " + f.Name)
		}
		seen[f.Name] = true
	}
	return nil
}

// Field returns the definition of a field by name.
func (idx *IndexDefinition) Field(name string) (IndexField, bool) {
	for _, f := range idx.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return IndexField{}, false
}

// IsValidIdentifier returns true if s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isSpecial := r == '_' || r == ':' || r == '-'
		if !isAlpha && !isDigit && !isSpecial {
			return false
		}
	}
	return true
}
