package solr

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/openviglet/sitesearch/internal/db"
)

// excludeLocal is the local param that drops tagged filters from a facet.
const excludeLocal = "{!ex=_all_}"

// buildParams renders q as select handler parameters.
func buildParams(q *db.Query) url.Values {
	v := url.Values{}
	v.Set("wt", "json")
	v.Set("json.nl", "flat")
	v.Set("q", q.Text)
	v.Set("start", strconv.Itoa(q.Start))
	v.Set("rows", strconv.Itoa(q.Rows))

	if len(q.QueryFields) > 0 {
		v.Set("defType", "edismax")
		v.Set("qf", strings.Join(q.QueryFields, " "))
		for _, b := range q.Boosts {
			v.Add("bq", b)
		}
	} else if len(q.Boosts) > 0 {
		// The standard parser has no bq; boosts become optional clauses.
		v.Set("q", "+("+q.Text+") "+strings.Join(q.Boosts, " "))
	}
	for _, fq := range q.Filters {
		v.Add("fq", fq)
	}
	if len(q.Sort) > 0 {
		parts := make([]string, len(q.Sort))
		for i, s := range q.Sort {
			dir := "asc"
			if s.Desc {
				dir = "desc"
			}
			parts[i] = s.Field + " " + dir
		}
		v.Set("sort", strings.Join(parts, ","))
	}

	facetParams(v, q.Facet)
	highlightParams(v, q.Highlight)
	mltParams(v, q.MLT)
	groupParams(v, q)

	if q.SpellCheck {
		v.Set("spellcheck", "true")
		v.Set("spellcheck.q", q.Text)
		v.Set("spellcheck.collate", "true")
		v.Set("spellcheck.extendedResults", "true")
	}
	return v
}

func facetParams(v url.Values, f *db.FacetDirective) {
	if f == nil || (len(f.Fields) == 0 && len(f.Ranges) == 0) {
		return
	}
	v.Set("facet", "true")
	for _, ff := range f.Fields {
		name := ff.Field
		if ff.Exclude {
			name = excludeLocal + name
		}
		v.Add("facet.field", name)
		p := "f." + ff.Field + ".facet."
		v.Set(p+"limit", strconv.Itoa(ff.Limit))
		v.Set(p+"mincount", strconv.Itoa(ff.MinCount))
		if ff.Sort != "" {
			v.Set(p+"sort", ff.Sort)
		}
	}
	for _, r := range f.Ranges {
		v.Add("facet.range", r.Field)
		p := "f." + r.Field + ".facet.range."
		v.Set(p+"start", r.Start)
		v.Set(p+"end", r.End)
		v.Set(p+"gap", r.Gap)
	}
}

func highlightParams(v url.Values, h *db.HighlightDirective) {
	if h == nil || len(h.Fields) == 0 {
		return
	}
	v.Set("hl", "true")
	v.Set("hl.fl", strings.Join(h.Fields, ","))
	v.Set("hl.simple.pre", h.Pre)
	v.Set("hl.simple.post", h.Post)
	v.Set("hl.tag.pre", h.Pre)
	v.Set("hl.tag.post", h.Post)
	v.Set("hl.snippets", strconv.Itoa(h.Snippets))
	v.Set("hl.fragsize", strconv.Itoa(h.FragSize))
}

func mltParams(v url.Values, m *db.MLTDirective) {
	if m == nil || len(m.Fields) == 0 {
		return
	}
	v.Set("mlt", "true")
	v.Set("mlt.fl", strings.Join(m.Fields, ","))
	v.Set("mlt.mindf", strconv.Itoa(m.MinDF))
	v.Set("mlt.mintf", strconv.Itoa(m.MinTF))
	v.Set("mlt.minwl", strconv.Itoa(m.MinWL))
	v.Set("mlt.boost", strconv.FormatBool(m.Boost))
	v.Set("mlt.maxqt", strconv.Itoa(m.MaxQT))
	if m.Count > 0 {
		v.Set("mlt.count", strconv.Itoa(m.Count))
	}
}

// groupParams pages inside every group; the group list itself starts at 0.
func groupParams(v url.Values, q *db.Query) {
	g := q.Group
	if g == nil || g.Field == "" {
		return
	}
	v.Set("group", "true")
	v.Set("group.field", g.Field)
	v.Set("group.limit", strconv.Itoa(g.Limit))
	v.Set("group.offset", strconv.Itoa(q.Start))
	v.Set("start", "0")
}
