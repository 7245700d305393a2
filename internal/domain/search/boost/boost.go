// Package boost compiles ranking expressions into boost-query fragments.
package boost

import (
	"fmt"
	"strings"

	"github.com/openviglet/sitesearch/internal/domain/site/field"
)

// RecencyToken is the condition value that turns a DATE condition into a
// recency decay instead of an exact match.
const RecencyToken = "asc"

// Condition is one attribute match inside a ranking expression.
type Condition struct {
	Attribute string
	Value     string
}

// Expression is a named, weighted set of conditions combined with AND.
type Expression struct {
	Name       string
	Weight     float64
	Conditions []Condition
}

// Build renders one boost clause per expression that has conditions.
// Expressions are independent; the backend adds their scores.
func Build(exprs []Expression, catalog field.Catalog) []string {
	out := make([]string, 0, len(exprs))
	for _, e := range exprs {
		if clause, ok := Clause(e, catalog); ok {
			out = append(out, clause)
		}
	}
	return out
}

// Clause renders a single expression, reporting false when it has no conditions.
func Clause(e Expression, catalog field.Catalog) (string, bool) {
	if len(e.Conditions) == 0 {
		return "", false
	}
	parts := make([]string, 0, len(e.Conditions))
	for _, c := range e.Conditions {
		parts = append(parts, fragment(c, catalog))
	}
	return fmt.Sprintf("(%s)^%.1f", strings.Join(parts, " AND "), e.Weight), true
}

func fragment(c Condition, catalog field.Catalog) string {
	if d, ok := catalog.Get(c.Attribute); ok && d.Type == field.Date &&
		strings.EqualFold(strings.TrimSpace(c.Value), RecencyToken) {
		return recency(c.Attribute)
	}
	return fmt.Sprintf("%s:%q", c.Attribute, c.Value)
}

// recency decays with the document age in days.
func recency(attr string) string {
	return fmt.Sprintf(`_query_:"{!func}recip(div(ms(NOW,%s),86400000),1,1000,1000)"`, attr)
}
