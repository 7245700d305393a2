package chi

import (
	"bytes"
	"encoding/json"

	"github.com/openviglet/sitesearch/internal/domain/search/result"
	healthuc "github.com/openviglet/sitesearch/internal/usecase/health"
)

// SearchResponse is the JSON form of a search result.
type SearchResponse struct {
	NumFound   int64               `json:"num_found"`
	Start      int64               `json:"start"`
	Rows       int                 `json:"rows"`
	Page       int                 `json:"page"`
	PageCount  int                 `json:"page_count"`
	Sort       string              `json:"sort,omitempty"`
	Query      string              `json:"query"`
	Locale     string              `json:"locale,omitempty"`
	QTimeMs    int64               `json:"qtime_ms"`
	ElapsedMs  int64               `json:"elapsed_ms"`
	Wildcard   bool                `json:"wildcard,omitempty"`
	Filters    []string            `json:"filters"`
	Documents  []DocumentResponse  `json:"documents"`
	Facets     []FacetResponse     `json:"facets"`
	Groups     []GroupResponse     `json:"groups,omitempty"`
	Similar    []SimilarResponse   `json:"similar,omitempty"`
	SpellCheck *SpellCheckResponse `json:"spell_check,omitempty"`
}

// FacetResponse is one facet with its items.
type FacetResponse struct {
	Name  string              `json:"name"`
	Label string              `json:"label"`
	Range bool                `json:"range,omitempty"`
	Items []FacetItemResponse `json:"items"`
}

// FacetItemResponse is one facet value.
type FacetItemResponse struct {
	Label    string `json:"label"`
	Count    int64  `json:"count"`
	Selected bool   `json:"selected"`
	Filter   string `json:"filter"`
}

// GroupResponse is one group of a grouped search.
type GroupResponse struct {
	Name      string             `json:"name"`
	NumFound  int64              `json:"num_found"`
	Start     int64              `json:"start"`
	PageCount int                `json:"page_count"`
	Documents []DocumentResponse `json:"documents"`
}

// SimilarResponse is a more-like-this record.
type SimilarResponse struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
	Type  string `json:"type,omitempty"`
	URL   string `json:"url,omitempty"`
}

// SpellCheckResponse is a proposed query correction.
type SpellCheckResponse struct {
	Original  string `json:"original"`
	Corrected string `json:"corrected"`
	Source    string `json:"source"`
}

// LocaleResponse is one configured site locale.
type LocaleResponse struct {
	Locale string `json:"locale"`
	Core   string `json:"core"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string                          `json:"status"`
	Checks map[string]healthuc.CheckResult `json:"checks"`
}

// DocumentResponse encodes a document as a JSON object whose keys keep the
// document's field order.
type DocumentResponse struct {
	doc result.Document
}

// MarshalJSON writes the fields in document order.
func (d DocumentResponse) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range d.doc.Fields() {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		v, _ := d.doc.Get(name)
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// NewSearchResponse converts a search result to its JSON form.
func NewSearchResponse(r *result.Result) SearchResponse {
	resp := SearchResponse{
		NumFound:  r.NumFound,
		Start:     r.Start,
		Rows:      r.Rows,
		Page:      r.Page,
		PageCount: r.PageCount,
		Sort:      r.Sort,
		Query:     r.Query,
		Locale:    r.Locale,
		QTimeMs:   r.QTime.Milliseconds(),
		ElapsedMs: r.Elapsed.Milliseconds(),
		Wildcard:  r.Wildcard,
		Filters:   r.Filters,
		Documents: documentsToResponse(r.Documents),
		Facets:    make([]FacetResponse, 0, len(r.Facets)),
	}
	if resp.Filters == nil {
		resp.Filters = []string{}
	}
	for _, f := range r.Facets {
		resp.Facets = append(resp.Facets, facetToResponse(f))
	}
	for _, g := range r.Groups {
		resp.Groups = append(resp.Groups, GroupResponse{
			Name:      g.Name,
			NumFound:  g.NumFound,
			Start:     g.Start,
			PageCount: g.PageCount,
			Documents: documentsToResponse(g.Documents),
		})
	}
	for _, s := range r.Similar {
		resp.Similar = append(resp.Similar, SimilarResponse(s))
	}
	if r.SpellCheck != nil {
		sc := SpellCheckResponse(*r.SpellCheck)
		resp.SpellCheck = &sc
	}
	return resp
}

func documentsToResponse(docs []result.Document) []DocumentResponse {
	out := make([]DocumentResponse, len(docs))
	for i, d := range docs {
		out[i] = DocumentResponse{doc: d}
	}
	return out
}

func facetToResponse(f result.Facet) FacetResponse {
	items := make([]FacetItemResponse, len(f.Items))
	for i, it := range f.Items {
		items[i] = FacetItemResponse(it)
	}
	return FacetResponse{Name: f.Name, Label: f.Label, Range: f.Range, Items: items}
}
