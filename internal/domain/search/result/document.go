package result

import "github.com/openviglet/sitesearch/internal/domain/search/value"

// Document is one result row: field values in the order they were first set.
type Document struct {
	order  []string
	values map[string]value.Value
}

// NewDocument creates an empty document.
func NewDocument() Document {
	return Document{values: make(map[string]value.Value)}
}

// Set replaces the value of a field.
func (d *Document) Set(name string, v value.Value) {
	if d.values == nil {
		d.values = make(map[string]value.Value)
	}
	if _, ok := d.values[name]; !ok {
		d.order = append(d.order, name)
	}
	d.values[name] = v
}

// Append accumulates v into the field, turning repeated values into a list.
func (d *Document) Append(name string, v value.Value) {
	if cur, ok := d.values[name]; ok {
		d.values[name] = cur.Append(v)
		return
	}
	d.Set(name, v)
}

// Get returns a field value.
func (d Document) Get(name string) (value.Value, bool) {
	v, ok := d.values[name]
	return v, ok
}

// Text returns the text of a field, or "" when it is absent.
func (d Document) Text(name string) string {
	return d.values[name].Text()
}

// Fields returns field names in order.
func (d Document) Fields() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Len returns the number of fields.
func (d Document) Len() int { return len(d.order) }
