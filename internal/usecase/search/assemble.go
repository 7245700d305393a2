package search

import (
	"slices"
	"strings"

	"github.com/openviglet/sitesearch/internal/db"
	"github.com/openviglet/sitesearch/internal/domain/search/result"
	"github.com/openviglet/sitesearch/internal/domain/search/value"
	"github.com/openviglet/sitesearch/internal/domain/site/field"
)

// Fields projected into similar-item records.
const (
	fieldID    = "id"
	fieldTitle = "title"
	fieldType  = "type"
	fieldURL   = "url"
)

// Assemble converts a backend response into the result model. A nil
// response yields an empty result with the echoed paging parameters.
func Assemble(c *Compiled, ex Execution) *result.Result {
	req := c.Request
	res := result.Empty(c.Rows, req.Page(), req.Sort().String(), req.Query())
	res.Locale = c.Locale
	res.Filters = req.Filters().All()

	resp := ex.Response
	if resp == nil {
		return res
	}
	res.Wildcard = ex.Wildcard
	res.QTime = resp.QTime

	a := assembler{c: c, resp: resp}

	if resp.Grouped() {
		for _, cmd := range resp.Groups {
			res.NumFound += cmd.Matches
			for _, g := range cmd.Groups {
				res.Groups = append(res.Groups, result.Group{
					Name:      g.Value,
					NumFound:  g.NumFound,
					Start:     g.Start,
					PageCount: result.PageCount(g.NumFound, c.Rows),
					Documents: a.documents(g.Docs),
				})
			}
		}
		res.Start = int64(ex.Query.Start)
	} else {
		res.NumFound = resp.NumFound
		res.Start = resp.Start
		res.Documents = a.documents(resp.Docs)
	}
	res.PageCount = result.PageCount(res.NumFound, c.Rows)
	res.Facets = a.facets()
	if ex.Query.MLT != nil {
		res.Similar = a.similar()
	}
	if sc := resp.SpellCheck; sc != nil && sc.Corrected != "" && !sc.CorrectlySpelt {
		res.SpellCheck = &result.SpellCheck{
			Original:  req.Query(),
			Corrected: sc.Corrected,
			Source:    "backend",
		}
	}
	return res
}

type assembler struct {
	c    *Compiled
	resp *db.Response
}

func (a assembler) documents(raw []db.Document) []result.Document {
	out := make([]result.Document, 0, len(raw))
	for _, d := range raw {
		out = append(out, a.document(d))
	}
	return out
}

// document injects required defaults, then substitutes highlights. Names
// lose their entity prefix; repeated names accumulate into a list.
func (a assembler) document(raw db.Document) result.Document {
	catalog := a.c.Site.Catalog()
	doc := result.NewDocument()
	for _, f := range raw.Fields {
		doc.Append(strings.TrimPrefix(f.Name, field.EntityPrefix), value.From(f.Value))
	}

	for _, def := range catalog.Required() {
		if _, ok := doc.Get(def.Name); !ok {
			doc.Set(def.Name, value.Parse(def.DefaultValue, string(def.Type)))
		}
	}

	id := raw.ID
	if id == "" {
		id = doc.Text(fieldID)
	}
	hl := a.resp.Highlighting[id]
	if len(hl) == 0 {
		return doc
	}
	for _, name := range doc.Fields() {
		def, ok := catalog.Get(name)
		if !ok || !def.Enabled || !def.Highlight || !def.Type.Textual() {
			continue
		}
		snippets := hl[def.BackendName()]
		switch len(snippets) {
		case 0:
		case 1:
			doc.Set(name, value.String(snippets[0]))
		default:
			vs := make([]value.Value, len(snippets))
			for i, s := range snippets {
				vs[i] = value.String(s)
			}
			doc.Set(name, value.List(vs...))
		}
	}
	return doc
}

// facets merges range and field facets, a range field is never repeated as
// a field facet, and orders them by display position.
func (a assembler) facets() []result.Facet {
	catalog := a.c.Site.Catalog()
	var out []result.Facet
	seen := make(map[string]bool)

	add := func(fc db.FacetCounts, isRange bool) {
		name := strings.TrimPrefix(fc.Field, field.EntityPrefix)
		label := name
		if def, ok := catalog.Get(fc.Field); ok {
			name, label = def.Name, def.Label()
		}
		if seen[name] {
			return
		}
		seen[name] = true
		f := result.Facet{Name: name, Label: label, Range: isRange}
		for _, cnt := range fc.Counts {
			if cnt.Count <= 0 {
				continue
			}
			f.Items = append(f.Items, result.FacetItem{
				Label:    cnt.Value,
				Count:    cnt.Count,
				Selected: a.c.Selected.Selected(name, cnt.Value),
				Filter:   name + ":" + cnt.Value,
			})
		}
		out = append(out, f)
	}
	for _, fc := range a.resp.RangeFacets {
		add(fc, true)
	}
	for _, fc := range a.resp.FieldFacets {
		add(fc, false)
	}

	slices.SortStableFunc(out, func(x, y result.Facet) int {
		return catalog.ComparePosition(x.Name, y.Name)
	})
	return out
}

// similar flattens more-like-this siblings of the page, deduplicated and
// without documents already on the page.
func (a assembler) similar() []result.Similar {
	onPage := make(map[string]bool)
	var order []string
	collect := func(docs []db.Document) {
		for _, d := range docs {
			id := docID(d)
			if !onPage[id] {
				onPage[id] = true
				order = append(order, id)
			}
		}
	}
	collect(a.resp.Docs)
	for _, cmd := range a.resp.Groups {
		for _, g := range cmd.Groups {
			collect(g.Docs)
		}
	}

	var out []result.Similar
	seen := make(map[string]bool)
	for _, id := range order {
		for _, sib := range a.resp.MoreLikeThis[id] {
			sid := docID(sib)
			if sid == "" || onPage[sid] || seen[sid] {
				continue
			}
			seen[sid] = true
			out = append(out, result.Similar{
				ID:    sid,
				Title: text(sib, fieldTitle),
				Type:  text(sib, fieldType),
				URL:   text(sib, fieldURL),
			})
		}
	}
	return out
}

func docID(d db.Document) string {
	if d.ID != "" {
		return d.ID
	}
	return text(d, fieldID)
}

func text(d db.Document, name string) string {
	v, ok := d.Get(name)
	if !ok {
		return ""
	}
	return value.From(v).Text()
}
