// Package targeting compiles targeting rules into a single filter clause.
package targeting

import (
	"sort"
	"strings"
)

// Rules holds the two disjoint rule shapes. Terms are unconditioned; the
// conditioned maps key rule terms by the condition that activates them.
// Conditioned terms join the AND side.
type Rules struct {
	Terms          []string
	Conditioned    map[string][]string
	ConditionedAnd map[string][]string
	ConditionedOr  map[string][]string
}

// Empty reports whether no rule of either shape is present.
func (r Rules) Empty() bool {
	return len(clean(r.Terms)) == 0 && len(r.conditions()) == 0
}

// Compile renders the rules as one filter clause. Unconditioned terms win;
// conditioned rules are only compiled when there are none.
func Compile(r Rules) (string, bool) {
	if terms := clean(r.Terms); len(terms) > 0 {
		return group(terms, " AND "), true
	}
	conds := r.conditions()
	if len(conds) == 0 {
		return "", false
	}

	clauses := make([]string, 0, len(conds)+1)
	for _, c := range conds {
		andSide := append(clean(r.Conditioned[c]), clean(r.ConditionedAnd[c])...)
		orSide := clean(r.ConditionedOr[c])

		var sides []string
		if len(andSide) > 0 {
			sides = append(sides, group(andSide, " AND "))
		}
		if len(orSide) > 0 {
			sides = append(sides, group(orSide, " OR "))
		}
		if len(sides) == 0 {
			continue
		}
		clauses = append(clauses, "("+c+" AND ("+strings.Join(sides, " AND ")+"))")
	}
	if len(clauses) == 0 {
		return "", false
	}
	clauses = append(clauses, "(*:* NOT ("+strings.Join(conds, " OR ")+"))")
	return strings.Join(clauses, " OR "), true
}

// conditions returns the sorted, distinct condition keys across all maps.
func (r Rules) conditions() []string {
	seen := make(map[string]struct{})
	for _, m := range []map[string][]string{r.Conditioned, r.ConditionedAnd, r.ConditionedOr} {
		for k, v := range m {
			if strings.TrimSpace(k) == "" || len(clean(v)) == 0 {
				continue
			}
			seen[k] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func group(terms []string, op string) string {
	if len(terms) == 1 {
		return terms[0]
	}
	return "(" + strings.Join(terms, op) + ")"
}

func clean(terms []string) []string {
	var out []string
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Parse splits a request rule of the form "condition|term" into its parts.
// A rule without a separator is unconditioned.
func Parse(raw []string) Rules {
	var r Rules
	for _, s := range raw {
		cond, term, ok := strings.Cut(s, "|")
		if !ok {
			r.Terms = append(r.Terms, s)
			continue
		}
		if r.Conditioned == nil {
			r.Conditioned = make(map[string][]string)
		}
		r.Conditioned[cond] = append(r.Conditioned[cond], term)
	}
	return r
}
