package solr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/openviglet/sitesearch/internal/db"
)

type responseHeader struct {
	Status int `json:"status"`
	QTime  int `json:"QTime"`
}

type docList struct {
	NumFound int64             `json:"numFound"`
	Start    int64             `json:"start"`
	Docs     []json.RawMessage `json:"docs"`
}

type facetCounts struct {
	FacetFields map[string][]any `json:"facet_fields"`
	FacetRanges map[string]struct {
		Counts []any `json:"counts"`
	} `json:"facet_ranges"`
}

type groupCommand struct {
	Matches int64 `json:"matches"`
	Groups  []struct {
		GroupValue any     `json:"groupValue"`
		DocList    docList `json:"doclist"`
	} `json:"groups"`
}

type spellCheck struct {
	CorrectlySpelled *bool `json:"correctlySpelled"`
	// Collations is a flat ["collation", value, ...] list. Values are
	// strings, or objects with collationQuery under extended results.
	Collations []json.RawMessage `json:"collations"`
}

type selectResponse struct {
	ResponseHeader responseHeader                 `json:"responseHeader"`
	Response       docList                        `json:"response"`
	FacetCounts    *facetCounts                   `json:"facet_counts"`
	Highlighting   map[string]map[string][]string `json:"highlighting"`
	MoreLikeThis   map[string]docList             `json:"moreLikeThis"`
	Grouped        map[string]groupCommand        `json:"grouped"`
	SpellCheck     *spellCheck                    `json:"spellcheck"`
}

// convert maps a select response onto db.Response. Facets follow the order
// of the query's facet directive.
func convert(raw *selectResponse, q *db.Query) (*db.Response, error) {
	docs, err := decodeDocs(raw.Response.Docs)
	if err != nil {
		return nil, err
	}
	resp := &db.Response{
		QTime:        time.Duration(raw.ResponseHeader.QTime) * time.Millisecond,
		NumFound:     raw.Response.NumFound,
		Start:        raw.Response.Start,
		Docs:         docs,
		Highlighting: raw.Highlighting,
	}

	if fc := raw.FacetCounts; fc != nil && q.Facet != nil {
		for _, f := range q.Facet.Fields {
			if counts, ok := fc.FacetFields[f.Field]; ok {
				resp.FieldFacets = append(resp.FieldFacets, db.FacetCounts{Field: f.Field, Counts: pairs(counts)})
			}
		}
		for _, r := range q.Facet.Ranges {
			if rng, ok := fc.FacetRanges[r.Field]; ok {
				resp.RangeFacets = append(resp.RangeFacets, db.FacetCounts{Field: r.Field, Counts: pairs(rng.Counts)})
			}
		}
	}

	if len(raw.MoreLikeThis) > 0 {
		resp.MoreLikeThis = make(map[string][]db.Document, len(raw.MoreLikeThis))
		for id, list := range raw.MoreLikeThis {
			sims, err := decodeDocs(list.Docs)
			if err != nil {
				return nil, err
			}
			resp.MoreLikeThis[id] = sims
		}
	}

	if q.Group != nil {
		if cmd, ok := raw.Grouped[q.Group.Field]; ok {
			gc := db.GroupCommand{Field: q.Group.Field, Matches: cmd.Matches}
			for _, g := range cmd.Groups {
				gdocs, err := decodeDocs(g.DocList.Docs)
				if err != nil {
					return nil, err
				}
				gc.Groups = append(gc.Groups, db.Group{
					Value:    scalar(g.GroupValue),
					NumFound: g.DocList.NumFound,
					Start:    g.DocList.Start,
					Docs:     gdocs,
				})
			}
			resp.Groups = []db.GroupCommand{gc}
		}
	}

	if sc := raw.SpellCheck; sc != nil {
		resp.SpellCheck = suggestion(sc)
	}
	return resp, nil
}

// pairs reads a flat [value, count, value, count, ...] list.
func pairs(flat []any) []db.FacetCount {
	out := make([]db.FacetCount, 0, len(flat)/2)
	for i := 0; i+1 < len(flat); i += 2 {
		out = append(out, db.FacetCount{Value: scalar(flat[i]), Count: count(flat[i+1])})
	}
	return out
}

func count(v any) int64 {
	switch n := v.(type) {
	case json.Number:
		i, _ := n.Int64()
		return i
	case float64:
		return int64(n)
	}
	return 0
}

func scalar(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case json.Number:
		return s.String()
	}
	return fmt.Sprint(v)
}

func suggestion(sc *spellCheck) *db.Suggestion {
	s := &db.Suggestion{}
	if sc.CorrectlySpelled != nil {
		s.CorrectlySpelt = *sc.CorrectlySpelled
	}
	for i := 0; i+1 < len(sc.Collations); i += 2 {
		var key string
		if json.Unmarshal(sc.Collations[i], &key) != nil || key != "collation" {
			continue
		}
		val := sc.Collations[i+1]
		var text string
		if json.Unmarshal(val, &text) == nil {
			s.Corrected = text
			break
		}
		var ext struct {
			CollationQuery string `json:"collationQuery"`
		}
		if json.Unmarshal(val, &ext) == nil && ext.CollationQuery != "" {
			s.Corrected = ext.CollationQuery
			break
		}
	}
	if s.Corrected == "" && !s.CorrectlySpelt {
		return nil
	}
	return s
}

func decodeDocs(raws []json.RawMessage) ([]db.Document, error) {
	if len(raws) == 0 {
		return nil, nil
	}
	out := make([]db.Document, 0, len(raws))
	for _, raw := range raws {
		d, err := decodeDoc(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// decodeDoc keeps the stored field order, which a map would lose.
func decodeDoc(raw json.RawMessage) (db.Document, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return db.Document{}, fmt.Errorf("decode document: expected object")
	}
	var d db.Document
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return db.Document{}, fmt.Errorf("decode document: %w", err)
		}
		name, _ := tok.(string)
		var v any
		if err := dec.Decode(&v); err != nil {
			return db.Document{}, fmt.Errorf("decode field %s: %w", name, err)
		}
		if name == "id" {
			d.ID = scalar(v)
		}
		d.Fields = append(d.Fields, db.DocField{Name: name, Value: v})
	}
	return d, nil
}
