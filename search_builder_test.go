package sitesearch

import (
	"context"
	"errors"
	"testing"

	"github.com/openviglet/sitesearch/internal/domain"
	"github.com/openviglet/sitesearch/internal/domain/search/request"
	"github.com/openviglet/sitesearch/internal/domain/search/result"
	"github.com/openviglet/sitesearch/internal/domain/search/value"
	"github.com/openviglet/sitesearch/internal/domain/site/field"
)

type fakeSearcher struct {
	fn func(ctx context.Context, site string, req request.Request) (*result.Result, error)
}

func (f *fakeSearcher) Search(ctx context.Context, site string, req request.Request) (*result.Result, error) {
	return f.fn(ctx, site, req)
}

func TestSearchBuilder_Request(t *testing.T) {
	var (
		gotSite string
		gotReq  request.Request
	)
	fake := &fakeSearcher{fn: func(_ context.Context, site string, req request.Request) (*result.Result, error) {
		gotSite, gotReq = site, req
		return &result.Result{}, nil
	}}

	b := &SearchBuilder{search: fake, site: "docs"}
	_, err := b.Query("cache").
		Filter("type:guide").
		FilterAnd("lang:en").
		FilterOr("tag:a", "tag:b").
		FacetOperators("or", "and").
		Page(3).
		Rows(5).
		Sort("newest").
		GroupBy("type").
		Locale("pt_BR").
		Target("segment:premium").
		Do(context.Background())
	if err != nil {
		t.Fatalf("Do: %v", err)
	}

	if gotSite != "docs" {
		t.Errorf("site = %q", gotSite)
	}
	if gotReq.Query() != "cache" || gotReq.Page() != 3 || gotReq.Rows() != 5 {
		t.Errorf("query=%q page=%d rows=%d", gotReq.Query(), gotReq.Page(), gotReq.Rows())
	}
	if gotReq.Group() != "type" || gotReq.Locale() != "pt_BR" {
		t.Errorf("group=%q locale=%q", gotReq.Group(), gotReq.Locale())
	}
	f := gotReq.Filters()
	if len(f.Default) != 1 || len(f.And) != 1 || len(f.Or) != 2 {
		t.Errorf("filters = %+v", f)
	}
	if gotReq.Targeting().Empty() {
		t.Error("targeting rules were not passed")
	}
	o := gotReq.Overrides()
	if o.FacetType != field.Or || o.FacetItemType != field.And {
		t.Errorf("overrides = %+v", o)
	}
}

func TestSearchBuilder_InvalidOperator(t *testing.T) {
	fake := &fakeSearcher{fn: func(context.Context, string, request.Request) (*result.Result, error) {
		t.Fatal("search must not run")
		return nil, nil
	}}
	b := &SearchBuilder{search: fake, site: "docs"}
	if _, err := b.FacetOperators("xor", "").Do(context.Background()); err == nil {
		t.Fatal("expected error for invalid operator")
	}
}

func TestSearchBuilder_PropagatesError(t *testing.T) {
	fake := &fakeSearcher{fn: func(context.Context, string, request.Request) (*result.Result, error) {
		return nil, domain.ErrSiteNotFound
	}}
	b := &SearchBuilder{search: fake, site: "missing"}
	_, err := b.Do(context.Background())
	if !errors.Is(err, domain.ErrSiteNotFound) {
		t.Fatalf("err = %v, want ErrSiteNotFound", err)
	}
}

func TestSearchBuilder_ConvertsResult(t *testing.T) {
	doc := result.NewDocument()
	doc.Set("id", value.String("1"))
	doc.Set("title", value.String("Go"))
	doc.Set("tag", value.List(value.String("a"), value.String("b")))

	fake := &fakeSearcher{fn: func(context.Context, string, request.Request) (*result.Result, error) {
		return &result.Result{
			NumFound:  1,
			Page:      1,
			PageCount: 1,
			Documents: []result.Document{doc},
			Facets: []result.Facet{{
				Name:  "type",
				Label: "Type",
				Items: []result.FacetItem{{Label: "guide", Count: 1, Filter: "type:guide"}},
			}},
			SpellCheck: &result.SpellCheck{Original: "og", Corrected: "go", Source: "speller"},
		}, nil
	}}

	res, err := (&SearchBuilder{search: fake, site: "docs"}).Query("og").Do(context.Background())
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if len(res.Documents) != 1 {
		t.Fatalf("documents = %d", len(res.Documents))
	}

	d := res.Documents[0]
	names := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		names[i] = f.Name
	}
	if len(names) != 3 || names[0] != "id" || names[1] != "title" || names[2] != "tag" {
		t.Errorf("field order = %v", names)
	}
	if v, _ := d.Get("title"); v != "Go" {
		t.Errorf("title = %v", v)
	}
	if v, _ := d.Get("tag"); len(v.([]any)) != 2 {
		t.Errorf("tag = %v", v)
	}
	if len(res.Facets) != 1 || res.Facets[0].Items[0].Filter != "type:guide" {
		t.Errorf("facets = %+v", res.Facets)
	}
	if res.SpellCheck == nil || res.SpellCheck.Corrected != "go" {
		t.Errorf("spell check = %+v", res.SpellCheck)
	}
}
