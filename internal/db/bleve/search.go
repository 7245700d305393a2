package bleve

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search"
	"github.com/blevesearch/bleve/v2/search/highlight/highlighter/html"
	"github.com/blevesearch/bleve/v2/search/query"
	"golang.org/x/sync/errgroup"

	"github.com/openviglet/sitesearch/internal/db"
)

const (
	maxFacetTerms   = 1000
	maxRangeBuckets = 1000
	defaultMLTCount = 5
	defaultGroups   = 10
	// subSearchWorkers bounds concurrent per-group and per-document searches.
	subSearchWorkers = 4

	tagPrefix = "{!tag="
	groupKey  = "group"
	rangeKey  = "range:"

	// Markers of the html highlighter, replaced by the requested ones.
	markPre  = "<mark>"
	markPost = "</mark>"
)

// Search runs q against its core. Spell checking is not available and
// Response.SpellCheck stays nil.
func (b *Backend) Search(ctx context.Context, q *db.Query) (*db.Response, error) {
	c, err := b.core(q.Core)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	resp, err := c.search(ctx, q)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("core %s: %w", q.Core, err)}
	}
	return resp, nil
}

func (c *core) search(ctx context.Context, q *db.Query) (*db.Response, error) {
	base, err := c.compile(q, true)
	if err != nil {
		return nil, err
	}

	resp := &db.Response{Start: int64(q.Start)}
	if q.Group != nil && q.Group.Field != "" {
		err = c.grouped(ctx, q, base, resp)
	} else {
		err = c.flat(ctx, q, base, resp)
	}
	if err != nil {
		return nil, err
	}
	if err := c.facets(ctx, q, base, resp); err != nil {
		return nil, err
	}
	if q.MLT != nil && len(q.MLT.Fields) > 0 {
		if err := c.moreLikeThis(ctx, q.MLT, resp); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// compile builds the main query with filters as required clauses and
// boosts as optional ones. Tagged filters are left out when withTagged is
// false. Boosts that cannot be expressed are dropped.
func (c *core) compile(q *db.Query, withTagged bool) (query.Query, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		text = db.MatchAll
	}
	main, err := parseQuery(text, parseQueryFields(q.QueryFields), c.isTextual)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", db.ErrBadQuery, err)
	}
	if main == nil {
		main = bleve.NewMatchAllQuery()
	}

	bq := bleve.NewBooleanQuery()
	bq.AddMust(main)
	for _, fq := range q.Filters {
		if !withTagged && strings.HasPrefix(fq, tagPrefix) {
			continue
		}
		f, err := parseQuery(fq, nil, c.isTextual)
		if err != nil {
			return nil, fmt.Errorf("%w: filter: %v", db.ErrBadQuery, err)
		}
		if f != nil {
			bq.AddMust(f)
		}
	}
	for _, raw := range q.Boosts {
		if bqry, err := parseQuery(raw, nil, c.isTextual); err == nil && bqry != nil {
			bq.AddShould(bqry)
		}
	}
	return bq, nil
}

func (c *core) request(q *db.Query, qry query.Query, size, from int) *bleve.SearchRequest {
	req := bleve.NewSearchRequestOptions(qry, size, from, false)
	req.Fields = []string{sourceField}
	if len(q.Sort) > 0 {
		order := make([]string, 0, len(q.Sort)+1)
		for _, s := range q.Sort {
			if s.Desc {
				order = append(order, "-"+s.Field)
			} else {
				order = append(order, s.Field)
			}
		}
		req.SortBy(append(order, "-_score"))
	}
	if h := q.Highlight; h != nil && len(h.Fields) > 0 {
		req.Highlight = bleve.NewHighlightWithStyle(html.Name)
		for _, f := range h.Fields {
			req.Highlight.AddField(f)
		}
	}
	return req
}

func (c *core) flat(ctx context.Context, q *db.Query, base query.Query, resp *db.Response) error {
	res, err := c.index.SearchInContext(ctx, c.request(q, base, q.Rows, q.Start))
	if err != nil {
		return err
	}
	resp.QTime = res.Took
	resp.NumFound = int64(res.Total)
	resp.Docs, resp.Highlighting, err = hits(res.Hits, q.Highlight)
	return err
}

// grouped takes the top group values from a term facet and pages each
// group with its own search.
func (c *core) grouped(ctx context.Context, q *db.Query, base query.Query, resp *db.Response) error {
	g := q.Group
	size := q.Rows
	if size <= 0 {
		size = defaultGroups
	}
	req := bleve.NewSearchRequestOptions(base, 0, 0, false)
	req.AddFacet(groupKey, bleve.NewFacetRequest(g.Field, size))
	res, err := c.index.SearchInContext(ctx, req)
	if err != nil {
		return err
	}
	resp.QTime = res.Took

	terms := termsOf(res.Facets[groupKey])
	groups := make([]db.Group, len(terms))
	highlights := make([]map[string]map[string][]string, len(terms))

	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(subSearchWorkers)
	for i, t := range terms {
		eg.Go(func() error {
			tq := bleve.NewTermQuery(t.Term)
			tq.SetField(g.Field)
			sub := bleve.NewConjunctionQuery(base, tq)
			r, err := c.index.SearchInContext(ectx, c.request(q, sub, g.Limit, q.Start))
			if err != nil {
				return fmt.Errorf("group %s: %w", t.Term, err)
			}
			docs, hl, err := hits(r.Hits, q.Highlight)
			if err != nil {
				return err
			}
			groups[i] = db.Group{Value: t.Term, NumFound: int64(r.Total), Start: int64(q.Start), Docs: docs}
			highlights[i] = hl
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for _, hl := range highlights {
		for id, fields := range hl {
			if resp.Highlighting == nil {
				resp.Highlighting = make(map[string]map[string][]string)
			}
			resp.Highlighting[id] = fields
		}
	}
	resp.Groups = []db.GroupCommand{{Field: g.Field, Matches: int64(res.Total), Groups: groups}}
	return nil
}

// hits decodes stored sources and rewrites highlight markers.
func hits(
	matches search.DocumentMatchCollection, h *db.HighlightDirective,
) ([]db.Document, map[string]map[string][]string, error) {
	if len(matches) == 0 {
		return nil, nil, nil
	}
	docs := make([]db.Document, 0, len(matches))
	var hl map[string]map[string][]string
	var marks *strings.Replacer
	if h != nil {
		marks = strings.NewReplacer(markPre, h.Pre, markPost, h.Post)
	}

	for _, m := range matches {
		d, err := decodeSource(m)
		if err != nil {
			return nil, nil, err
		}
		docs = append(docs, d)

		if marks == nil || len(m.Fragments) == 0 {
			continue
		}
		fields := make(map[string][]string, len(m.Fragments))
		for name, frags := range m.Fragments {
			if h.Snippets > 0 && len(frags) > h.Snippets {
				frags = frags[:h.Snippets]
			}
			out := make([]string, len(frags))
			for i, f := range frags {
				out[i] = marks.Replace(f)
			}
			fields[name] = out
		}
		if hl == nil {
			hl = make(map[string]map[string][]string)
		}
		hl[m.ID] = fields
	}
	return docs, hl, nil
}

// decodeSource restores a document from its stored source. Documents
// indexed elsewhere fall back to their stored fields in name order.
func decodeSource(m *search.DocumentMatch) (db.Document, error) {
	d := db.Document{ID: m.ID}
	raw, ok := m.Fields[sourceField].(string)
	if !ok {
		names := make([]string, 0, len(m.Fields))
		for name := range m.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			d.Fields = append(d.Fields, db.DocField{Name: name, Value: m.Fields[name]})
		}
		return d, nil
	}
	var stored []storedField
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return db.Document{}, fmt.Errorf("decode source of %s: %w", m.ID, err)
	}
	d.Fields = make([]db.DocField, len(stored))
	for i, f := range stored {
		d.Fields[i] = db.DocField{Name: f.Name, Value: f.Value}
	}
	return d, nil
}

func termsOf(fr *search.FacetResult) []*search.TermFacet {
	if fr == nil || fr.Terms == nil {
		return nil
	}
	return fr.Terms.Terms()
}

// moreLikeThis searches siblings of every page document with the long
// words of its similarity fields.
func (c *core) moreLikeThis(ctx context.Context, m *db.MLTDirective, resp *db.Response) error {
	page := resp.Docs
	for _, cmd := range resp.Groups {
		for _, g := range cmd.Groups {
			page = append(page, g.Docs...)
		}
	}
	if len(page) == 0 {
		return nil
	}
	count := m.Count
	if count <= 0 {
		count = defaultMLTCount
	}

	var mu sync.Mutex
	out := make(map[string][]db.Document)
	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(subSearchWorkers)
	for _, d := range page {
		text := likeText(d, m)
		if text == "" || d.ID == "" {
			continue
		}
		eg.Go(func() error {
			like := make([]query.Query, 0, len(m.Fields))
			for _, f := range m.Fields {
				mq := bleve.NewMatchQuery(text)
				mq.SetField(f)
				like = append(like, mq)
			}
			bq := bleve.NewBooleanQuery()
			bq.AddMust(disjunction(like))
			bq.AddMustNot(bleve.NewDocIDQuery([]string{d.ID}))

			req := bleve.NewSearchRequestOptions(bq, count, 0, false)
			req.Fields = []string{sourceField}
			r, err := c.index.SearchInContext(ectx, req)
			if err != nil {
				return fmt.Errorf("more like %s: %w", d.ID, err)
			}
			sims, _, err := hits(r.Hits, nil)
			if err != nil {
				return err
			}
			if len(sims) > 0 {
				mu.Lock()
				out[d.ID] = sims
				mu.Unlock()
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	if len(out) > 0 {
		resp.MoreLikeThis = out
	}
	return nil
}

// likeText collects distinct lowercase words of at least MinWL letters.
func likeText(d db.Document, m *db.MLTDirective) string {
	seen := make(map[string]bool)
	var words []string
	for _, f := range m.Fields {
		for _, df := range d.Fields {
			if df.Name != f {
				continue
			}
			for _, w := range strings.FieldsFunc(fmt.Sprint(df.Value), func(r rune) bool {
				return !unicode.IsLetter(r) && !unicode.IsDigit(r)
			}) {
				w = strings.ToLower(w)
				if len([]rune(w)) < m.MinWL || seen[w] {
					continue
				}
				if m.MaxQT > 0 && len(words) >= m.MaxQT {
					return strings.Join(words, " ")
				}
				seen[w] = true
				words = append(words, w)
			}
		}
	}
	return strings.Join(words, " ")
}

// dateBounds finds the earliest and latest value of a date field among
// the documents matching qry.
func (c *core) dateBounds(ctx context.Context, qry query.Query, field string) (lo, hi time.Time, ok bool, err error) {
	edge := func(desc bool) (time.Time, bool, error) {
		req := bleve.NewSearchRequestOptions(qry, 1, 0, false)
		req.Fields = []string{sourceField}
		req.SortByCustom(search.SortOrder{&search.SortField{
			Field:   field,
			Desc:    desc,
			Type:    search.SortFieldAsDate,
			Missing: search.SortFieldMissingLast,
		}})
		res, err := c.index.SearchInContext(ctx, req)
		if err != nil {
			return time.Time{}, false, err
		}
		if len(res.Hits) == 0 {
			return time.Time{}, false, nil
		}
		d, err := decodeSource(res.Hits[0])
		if err != nil {
			return time.Time{}, false, err
		}
		t, ok := extremeTime(d, field, desc)
		return t, ok, nil
	}

	lo, okLo, err := edge(false)
	if err != nil || !okLo {
		return time.Time{}, time.Time{}, false, err
	}
	hi, okHi, err := edge(true)
	if err != nil || !okHi {
		return time.Time{}, time.Time{}, false, err
	}
	return lo.UTC(), hi.UTC(), true, nil
}

// extremeTime picks the latest (or earliest) parseable date of field.
func extremeTime(d db.Document, field string, latest bool) (time.Time, bool) {
	var out time.Time
	found := false
	for _, f := range d.Fields {
		if f.Name != field {
			continue
		}
		s, isStr := f.Value.(string)
		if !isStr {
			continue
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			continue
		}
		if !found || (latest && t.After(out)) || (!latest && t.Before(out)) {
			out, found = t, true
		}
	}
	return out, found
}
