package bleve

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// funcQueryField marks function sub-queries, which have no equivalent here.
const funcQueryField = "_query_"

type weightedField struct {
	name  string
	boost float64
}

// parseQueryFields reads "title^2 text" style query fields.
func parseQueryFields(qf []string) []weightedField {
	var out []weightedField
	for _, spec := range qf {
		for _, f := range strings.Fields(spec) {
			name, weight, ok := strings.Cut(f, "^")
			w := 1.0
			if ok {
				if v, err := strconv.ParseFloat(weight, 64); err == nil {
					w = v
				}
			}
			out = append(out, weightedField{name: name, boost: w})
		}
	}
	return out
}

// parser turns the query subset into bleve queries. Unfielded terms search
// the query fields, or the composite field when there are none.
type parser struct {
	toks    []token
	pos     int
	qf      []weightedField
	textual func(field string) bool
}

// parseQuery compiles s. It returns nil when nothing in s can be expressed.
func parseQuery(s string, qf []weightedField, textual func(string) bool) (query.Query, error) {
	toks, err := lex(s)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", s, err)
	}
	p := &parser{toks: toks, qf: qf, textual: textual}
	q, err := p.orExpr("")
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", s, err)
	}
	if p.peek().kind != tokEOF {
		return nil, fmt.Errorf("parse %q: unexpected trailing input", s)
	}
	return q, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

// orExpr joins clauses by OR; juxtaposed clauses are optional as well.
func (p *parser) orExpr(field string) (query.Query, error) {
	var parts []query.Query
	for {
		q, err := p.andExpr(field)
		if err != nil {
			return nil, err
		}
		if q != nil {
			parts = append(parts, q)
		}
		switch p.peek().kind {
		case tokOr:
			p.next()
			continue
		case tokEOF, tokRParen:
			return disjunction(parts), nil
		}
	}
}

// andExpr joins clauses by AND. "a NOT b" reads as a AND NOT b.
func (p *parser) andExpr(field string) (query.Query, error) {
	var must, mustNot []query.Query
	first := true
	for {
		negate := false
		switch t := p.peek(); {
		case t.kind == tokNot && !first:
			p.next()
			negate = true
		case t.kind == tokAnd && !first:
			p.next()
			if p.peek().kind == tokNot {
				p.next()
				negate = true
			}
		case !first:
			return conjunction(must, mustNot), nil
		}
		first = false

		q, err := p.unary(field)
		if err != nil {
			return nil, err
		}
		if q == nil {
			continue
		}
		if neg, ok := q.(*negated); ok {
			negate = !negate
			q = neg.inner
		}
		if negate {
			mustNot = append(mustNot, q)
		} else {
			must = append(must, q)
		}
	}
}

// negated carries a leading NOT up to the enclosing conjunction.
type negated struct {
	query.Query
	inner query.Query
}

func (p *parser) unary(field string) (query.Query, error) {
	switch p.peek().kind {
	case tokNot:
		p.next()
		q, err := p.unary(field)
		if err != nil || q == nil {
			return nil, err
		}
		if neg, ok := q.(*negated); ok {
			return neg.inner, nil
		}
		return &negated{Query: q, inner: q}, nil
	case tokPlus:
		p.next()
		return p.unary(field)
	}
	q, err := p.primary(field)
	if err != nil {
		return nil, err
	}
	if p.peek().kind == tokBoost {
		w, err := strconv.ParseFloat(p.next().text, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid boost: %w", err)
		}
		if q != nil {
			setBoost(q, w)
		}
	}
	return q, nil
}

func (p *parser) primary(field string) (query.Query, error) {
	t := p.next()
	switch t.kind {
	case tokLParen:
		q, err := p.orExpr(field)
		if err != nil {
			return nil, err
		}
		if p.next().kind != tokRParen {
			return nil, fmt.Errorf("missing closing parenthesis")
		}
		return q, nil
	case tokPhrase:
		return p.phrase(field, t.text), nil
	case tokRange:
		if field == "" {
			return nil, fmt.Errorf("range without field")
		}
		return rangeQuery(field, t.text)
	case tokWord:
		if p.peek().kind == tokColon {
			p.next()
			return p.fielded(t.text)
		}
		return p.term(field, t.text), nil
	}
	return nil, fmt.Errorf("unexpected token")
}

// fielded parses the value after "name:".
func (p *parser) fielded(name string) (query.Query, error) {
	if name == funcQueryField {
		// Consume the function body and drop it.
		if k := p.peek().kind; k == tokPhrase || k == tokWord {
			p.next()
		}
		return nil, nil
	}
	switch p.peek().kind {
	case tokLParen:
		p.next()
		q, err := p.orExpr(name)
		if err != nil {
			return nil, err
		}
		if p.next().kind != tokRParen {
			return nil, fmt.Errorf("missing closing parenthesis")
		}
		return q, nil
	case tokPhrase:
		return p.phrase(name, p.next().text), nil
	case tokRange:
		return rangeQuery(name, p.next().text)
	case tokWord:
		v := p.next().text
		if name == "*" && v == "*" {
			return bleve.NewMatchAllQuery(), nil
		}
		return p.term(name, v), nil
	}
	return nil, fmt.Errorf("missing value for field %s", name)
}

func (p *parser) term(field, text string) query.Query {
	if field == "" && text == "*" {
		return bleve.NewMatchAllQuery()
	}
	if strings.ContainsAny(text, "*?") {
		if field == "" || p.textual(field) {
			text = strings.ToLower(text)
		}
		return p.perField(field, func(f string) query.Query {
			q := bleve.NewWildcardQuery(text)
			q.SetField(f)
			return q
		})
	}
	return p.perField(field, func(f string) query.Query {
		q := bleve.NewMatchQuery(text)
		q.SetField(f)
		return q
	})
}

func (p *parser) phrase(field, text string) query.Query {
	return p.perField(field, func(f string) query.Query {
		q := bleve.NewMatchPhraseQuery(text)
		q.SetField(f)
		return q
	})
}

// perField targets field, or fans out over the query fields.
func (p *parser) perField(field string, build func(f string) query.Query) query.Query {
	if field != "" || len(p.qf) == 0 {
		return build(field)
	}
	qs := make([]query.Query, 0, len(p.qf))
	for _, f := range p.qf {
		q := build(f.name)
		if f.boost != 1 {
			setBoost(q, f.boost)
		}
		qs = append(qs, q)
	}
	return disjunction(qs)
}

// rangeQuery handles "[a TO b]" (inclusive) and "{a TO b}" (exclusive).
// Dates and numbers get typed ranges; anything else compares as terms.
func rangeQuery(field, raw string) (query.Query, error) {
	inclusive := raw[0] == '['
	body := strings.TrimSpace(raw[1 : len(raw)-1])
	lo, hi, ok := strings.Cut(body, " TO ")
	if !ok {
		return nil, fmt.Errorf("invalid range %s", raw)
	}
	lo, hi = strings.TrimSpace(lo), strings.TrimSpace(hi)
	incl := &inclusive

	loT, loDate := parseBound(lo)
	hiT, hiDate := parseBound(hi)
	if loDate && hiDate {
		q := bleve.NewDateRangeInclusiveQuery(loT, hiT, incl, incl)
		q.SetField(field)
		return q, nil
	}

	loN, loNum := parseNumber(lo)
	hiN, hiNum := parseNumber(hi)
	if loNum && hiNum {
		q := bleve.NewNumericRangeInclusiveQuery(loN, hiN, incl, incl)
		q.SetField(field)
		return q, nil
	}

	if lo == "*" {
		lo = ""
	}
	if hi == "*" {
		hi = ""
	}
	q := bleve.NewTermRangeInclusiveQuery(lo, hi, incl, incl)
	q.SetField(field)
	return q, nil
}

// parseBound accepts RFC 3339, date math and "*". The zero time stands for
// "*": bleve leaves a zero start or end unbounded.
func parseBound(s string) (time.Time, bool) {
	if s == "*" {
		return time.Time{}, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := resolveDateMath(s, time.Now().UTC()); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func parseNumber(s string) (*float64, bool) {
	if s == "*" {
		return nil, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, false
	}
	return &f, true
}

func setBoost(q query.Query, w float64) {
	if b, ok := q.(query.BoostableQuery); ok {
		b.SetBoost(w)
	}
}

func disjunction(qs []query.Query) query.Query {
	switch len(qs) {
	case 0:
		return nil
	case 1:
		return qs[0]
	}
	return bleve.NewDisjunctionQuery(qs...)
}

func conjunction(must, mustNot []query.Query) query.Query {
	if len(mustNot) == 0 {
		switch len(must) {
		case 0:
			return nil
		case 1:
			return must[0]
		}
		return bleve.NewConjunctionQuery(must...)
	}
	b := bleve.NewBooleanQuery()
	if len(must) == 0 {
		b.AddMust(bleve.NewMatchAllQuery())
	} else {
		b.AddMust(must...)
	}
	b.AddMustNot(mustNot...)
	return b
}
