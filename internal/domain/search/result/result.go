// Package result holds the normalized search result model.
package result

import "time"

// Result is the assembled answer to one search request.
type Result struct {
	NumFound  int64
	Start     int64
	Rows      int
	Page      int
	PageCount int
	Sort      string
	Query     string
	Locale    string
	QTime     time.Duration
	Elapsed   time.Duration
	// Wildcard reports whether the delivered response came from a wildcard pass.
	Wildcard   bool
	Filters    []string
	Documents  []Document
	Facets     []Facet
	Groups     []Group
	Similar    []Similar
	SpellCheck *SpellCheck
}

// Facet is one facet with its items in backend order.
type Facet struct {
	Name  string
	Label string
	Range bool
	Items []FacetItem
}

// FacetItem is a facet value and its document count.
type FacetItem struct {
	Label    string
	Count    int64
	Selected bool
	// Filter is the field:value filter that selects this item.
	Filter string
}

// Group is one value of the group-by field with its own page of documents.
type Group struct {
	Name      string
	NumFound  int64
	Start     int64
	PageCount int
	Documents []Document
}

// Similar is a lightweight more-like-this record.
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
	// Source names what proposed the correction: "backend" or "speller".
	Source string
}

// PageCount returns ceil(numFound/rows), or 0 when rows is not positive.
func PageCount(numFound int64, rows int) int {
	if rows <= 0 || numFound <= 0 {
		return 0
	}
	r := int64(rows)
	return int((numFound + r - 1) / r)
}

// Empty returns the result delivered when the backend produced no response.
func Empty(rows, page int, sort, query string) *Result {
	return &Result{Rows: rows, Page: page, Sort: sort, Query: query}
}
