package request

import (
	"fmt"
	"strings"
)

// Named sorts.
const (
	SortRelevance = "relevance"
	SortNewest    = "newest"
	SortOldest    = "oldest"
)

// Sort is either a named sort or an explicit field and direction.
type Sort struct {
	Name  string
	Field string
	Desc  bool
}

// ParseSort accepts a named sort or "field", "field:asc", "field:desc",
// "field asc" and "field desc".
func ParseSort(s string) (Sort, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Sort{}, nil
	}
	switch strings.ToLower(s) {
	case SortRelevance, SortNewest, SortOldest:
		return Sort{Name: strings.ToLower(s)}, nil
	}
	f, dir, found := strings.Cut(s, ":")
	if !found {
		f, dir, _ = strings.Cut(s, " ")
	}
	f = strings.TrimSpace(f)
	if f == "" {
		return Sort{}, fmt.Errorf("invalid sort %q", s)
	}
	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "", "asc":
		return Sort{Field: f}, nil
	case "desc":
		return Sort{Field: f, Desc: true}, nil
	}
	return Sort{}, fmt.Errorf("invalid sort direction in %q", s)
}

// IsZero reports whether no sort was requested.
func (s Sort) IsZero() bool { return s == Sort{} }

// Resolve maps named sorts onto the site's default sort field. It reports
// false for relevance or when newest/oldest has no field to sort by.
func (s Sort) Resolve(defaultField string) (field string, desc, ok bool) {
	switch s.Name {
	case SortNewest:
		return defaultField, true, defaultField != ""
	case SortOldest:
		return defaultField, false, defaultField != ""
	case SortRelevance:
		return "", false, false
	}
	return s.Field, s.Desc, s.Field != ""
}

// String echoes the sort as requested.
func (s Sort) String() string {
	switch {
	case s.Name != "":
		return s.Name
	case s.Field == "":
		return ""
	case s.Desc:
		return s.Field + ":desc"
	}
	return s.Field + ":asc"
}
