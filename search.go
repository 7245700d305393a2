package sitesearch

import (
	"time"

	"github.com/openviglet/sitesearch/internal/domain/search/result"
)

// Result is the answer to one search.
type Result struct {
	NumFound   int64
	Start      int64
	Rows       int
	Page       int
	PageCount  int
	Sort       string
	Query      string
	Locale     string
	QTime      time.Duration
	Elapsed    time.Duration
	Wildcard   bool
	Filters    []string
	Documents  []Document
	Facets     []Facet
	Groups     []Group
	Similar    []Similar
	SpellCheck *SpellCheck
}

// Field is one named document value. Values are string, float64, bool,
// an RFC 3339 date string, or []any for multi-valued fields.
type Field struct {
	Name  string
	Value any
}

// Document is a search hit with its fields in backend order.
type Document struct {
	Fields []Field
}

// Get returns the value of a field.
func (d Document) Get(name string) (any, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Facet is one facet with its items.
type Facet struct {
	Name  string
	Label string
	Range bool
	Items []FacetItem
}

// FacetItem is a facet value. Filter is the fq value that selects it.
type FacetItem struct {
	Label    string
	Count    int64
	Selected bool
	Filter   string
}

// Group is one group of a grouped search.
type Group struct {
	Name      string
	NumFound  int64
	Start     int64
	PageCount int
	Documents []Document
}

// Similar is a more-like-this record.
type Similar struct {
	ID    string
	Title string
	Type  string
	URL   string
}

// SpellCheck is a proposed query correction.
type SpellCheck struct {
	Original  string
	Corrected string
	Source    string
}

func fromResult(r *result.Result) *Result {
	out := &Result{
		NumFound:  r.NumFound,
		Start:     r.Start,
		Rows:      r.Rows,
		Page:      r.Page,
		PageCount: r.PageCount,
		Sort:      r.Sort,
		Query:     r.Query,
		Locale:    r.Locale,
		QTime:     r.QTime,
		Elapsed:   r.Elapsed,
		Wildcard:  r.Wildcard,
		Filters:   r.Filters,
		Documents: fromDocuments(r.Documents),
	}
	for _, f := range r.Facets {
		items := make([]FacetItem, len(f.Items))
		for i, it := range f.Items {
			items[i] = FacetItem(it)
		}
		out.Facets = append(out.Facets, Facet{Name: f.Name, Label: f.Label, Range: f.Range, Items: items})
	}
	for _, g := range r.Groups {
		out.Groups = append(out.Groups, Group{
			Name:      g.Name,
			NumFound:  g.NumFound,
			Start:     g.Start,
			PageCount: g.PageCount,
			Documents: fromDocuments(g.Documents),
		})
	}
	for _, s := range r.Similar {
		out.Similar = append(out.Similar, Similar(s))
	}
	if r.SpellCheck != nil {
		sc := SpellCheck(*r.SpellCheck)
		out.SpellCheck = &sc
	}
	return out
}

func fromDocuments(docs []result.Document) []Document {
	out := make([]Document, len(docs))
	for i, d := range docs {
		names := d.Fields()
		fields := make([]Field, 0, len(names))
		for _, name := range names {
			v, _ := d.Get(name)
			fields = append(fields, Field{Name: name, Value: v.Interface()})
		}
		out[i] = Document{Fields: fields}
	}
	return out
}
