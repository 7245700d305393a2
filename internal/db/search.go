package db

import (
	"slices"
	"time"
)

// MatchAll is the query text that matches every document.
const MatchAll = "*:*"

// Query is a compiled, backend-neutral search query.
type Query struct {
	Core        string
	Text        string
	QueryFields []string
	Start       int
	Rows        int
	Sort        []SortField
	Filters     []string
	Boosts      []string
	Facet       *FacetDirective
	Highlight   *HighlightDirective
	MLT         *MLTDirective
	Group       *GroupDirective
	SpellCheck  bool
}

// SortField orders results by one field.
type SortField struct {
	Field string
	Desc  bool
}

// Facet sort modes.
const (
	FacetSortCount = "count"
	FacetSortIndex = "index"
)

// FacetDirective requests field and date-range facets.
type FacetDirective struct {
	Fields []FieldFacet
	Ranges []RangeFacet
}

// FieldFacet counts distinct values of one field.
type FieldFacet struct {
	Field    string
	Limit    int
	MinCount int
	Sort     string
	// Exclude drops tagged filters while counting.
	Exclude bool
}

// RangeFacet counts documents per date bucket. Start, End and Gap use
// date-math syntax such as NOW-100YEARS and +1MONTH.
type RangeFacet struct {
	Field string
	Start string
	End   string
	Gap   string
}

// HighlightDirective requests highlighted snippets.
type HighlightDirective struct {
	Fields   []string
	Pre      string
	Post     string
	Snippets int
	FragSize int
}

// MLTDirective requests more-like-this siblings per document.
type MLTDirective struct {
	Fields []string
	MinDF  int
	MinTF  int
	MinWL  int
	Boost  bool
	MaxQT  int
	Count  int
}

// GroupDirective groups results by one field.
type GroupDirective struct {
	Field string
	Limit int
}

// Clone returns a deep copy.
func (q *Query) Clone() *Query {
	c := *q
	c.QueryFields = slices.Clone(q.QueryFields)
	c.Sort = slices.Clone(q.Sort)
	c.Filters = slices.Clone(q.Filters)
	c.Boosts = slices.Clone(q.Boosts)
	if q.Facet != nil {
		f := FacetDirective{Fields: slices.Clone(q.Facet.Fields), Ranges: slices.Clone(q.Facet.Ranges)}
		c.Facet = &f
	}
	if q.Highlight != nil {
		h := *q.Highlight
		h.Fields = slices.Clone(q.Highlight.Fields)
		c.Highlight = &h
	}
	if q.MLT != nil {
		m := *q.MLT
		m.Fields = slices.Clone(q.MLT.Fields)
		c.MLT = &m
	}
	if q.Group != nil {
		g := *q.Group
		c.Group = &g
	}
	return &c
}

// Response is the raw answer of a backend.
type Response struct {
	QTime        time.Duration
	NumFound     int64
	Start        int64
	Docs         []Document
	FieldFacets  []FacetCounts
	RangeFacets  []FacetCounts
	Highlighting map[string]map[string][]string
	MoreLikeThis map[string][]Document
	Groups       []GroupCommand
	SpellCheck   *Suggestion
}

// Document is one backend document with its fields in backend order.
type Document struct {
	ID     string
	Fields []DocField
}

// DocField is one stored field value. Repeated names are allowed.
type DocField struct {
	Name  string
	Value any
}

// Get returns the first value of a field.
func (d Document) Get(name string) (any, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// FacetCounts are the value counts of one facet in backend order.
type FacetCounts struct {
	Field  string
	Counts []FacetCount
}

// FacetCount is one facet value with its count.
type FacetCount struct {
	Value string
	Count int64
}

// GroupCommand is the grouped answer for one group-by field.
type GroupCommand struct {
	Field   string
	Matches int64
	Groups  []Group
}

// Group holds the documents of one group value.
type Group struct {
	Value    string
	NumFound int64
	Start    int64
	Docs     []Document
}

// Suggestion is a backend spell-check collation.
type Suggestion struct {
	Corrected      string
	CorrectlySpelt bool
}

// Grouped reports whether the response carries grouped results.
func (r *Response) Grouped() bool { return len(r.Groups) > 0 }

// Empty reports whether the response has no hits. Grouped responses are
// empty when every command has no groups or one group without documents.
func (r *Response) Empty() bool {
	if !r.Grouped() {
		return len(r.Docs) == 0
	}
	for _, cmd := range r.Groups {
		switch {
		case len(cmd.Groups) == 0:
		case len(cmd.Groups) == 1 && len(cmd.Groups[0].Docs) == 0:
		default:
			return false
		}
	}
	return true
}
