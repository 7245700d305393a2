package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openviglet/sitesearch/internal/domain/search/filter"
	"github.com/openviglet/sitesearch/internal/domain/search/request"
	"github.com/openviglet/sitesearch/internal/domain/search/result"
	"github.com/openviglet/sitesearch/internal/domain/search/targeting"
	"github.com/openviglet/sitesearch/internal/domain/site/field"
	chiTransport "github.com/openviglet/sitesearch/internal/transport/chi"
)

type searchOptions struct {
	site          string
	locale        string
	filters       []string
	filtersAnd    []string
	filtersOr     []string
	targeting     []string
	facetType     string
	facetItemType string
	rows          int
	page          int
	sort          string
	group         string
	exact         bool
	jsonOutput    bool
}

func newSearchCmd(opts *globalOptions) *cobra.Command {
	so := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "Run a search against a configured site",
		Long: `Run one search through the same pipeline the HTTP API uses: site lookup,
locale resolution, wildcard retry, facets, grouping and spell check.

An empty query matches every document.`,
		Example: `  sitesearch search --site docs kubernetes operator
  sitesearch search --site docs --fq type:guide --sort newest --json cache`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, opts, so, strings.Join(args, " "))
		},
	}

	f := cmd.Flags()
	f.StringVarP(&so.site, "site", "s", "", "Site name (required)")
	f.StringVarP(&so.locale, "locale", "l", "", "Locale tag, e.g. en_US")
	f.StringArrayVar(&so.filters, "fq", nil, "Filter query field:value (repeatable)")
	f.StringArrayVar(&so.filtersAnd, "fq-and", nil, "Filter query joined with AND (repeatable)")
	f.StringArrayVar(&so.filtersOr, "fq-or", nil, "Filter query joined with OR (repeatable)")
	f.StringArrayVar(&so.targeting, "tr", nil, "Targeting rule: term or condition|term (repeatable)")
	f.StringVar(&so.facetType, "ft", "", "Operator between facets (AND, OR)")
	f.StringVar(&so.facetItemType, "fit", "", "Operator between items of one facet (AND, OR)")
	f.IntVar(&so.rows, "rows", 0, "Rows per page (0 uses the site default)")
	f.IntVarP(&so.page, "page", "p", 1, "Page number")
	f.StringVar(&so.sort, "sort", "", "Sort: relevance, newest, oldest or field:asc|desc")
	f.StringVar(&so.group, "group", "", "Group results by this field")
	f.BoolVar(&so.exact, "exact", false, "Match the query exactly")
	f.BoolVar(&so.jsonOutput, "json", false, "Print the API response body as JSON")
	_ = cmd.MarkFlagRequired("site")

	return cmd
}

func (so *searchOptions) request(query string) (request.Request, error) {
	ft, err := field.ParseOperator(so.facetType)
	if err != nil {
		return request.Request{}, fmt.Errorf("--ft: %w", err)
	}
	fit, err := field.ParseOperator(so.facetItemType)
	if err != nil {
		return request.Request{}, fmt.Errorf("--fit: %w", err)
	}
	return request.New(request.Params{
		Query: query,
		Rows:  so.rows,
		Page:  so.page,
		Sort:  so.sort,
		Group: so.group,
		Filters: filter.Lists{
			Default: so.filters,
			And:     so.filtersAnd,
			Or:      so.filtersOr,
		},
		FacetType:     ft,
		FacetItemType: fit,
		Locale:        so.locale,
		Targeting:     targeting.Parse(so.targeting),
		Exact:         so.exact,
	})
}

func runSearch(cmd *cobra.Command, opts *globalOptions, so *searchOptions, query string) error {
	req, err := so.request(query)
	if err != nil {
		return err
	}

	cfg, logger, err := opts.load()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.search.Search(ctx, so.site, req)
	if err != nil {
		return fmt.Errorf("search %s: %w", so.site, err)
	}

	if so.jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(chiTransport.NewSearchResponse(res))
	}
	return printResult(cmd.OutOrStdout(), res)
}

// printResult writes a human-readable summary of a search result.
func printResult(w io.Writer, res *result.Result) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%d results for %q (page %d of %d, %dms)",
		res.NumFound, res.Query, res.Page, res.PageCount, res.Elapsed.Milliseconds())
	if res.Wildcard {
		b.WriteString(" [wildcard]")
	}
	b.WriteByte('\n')

	if sc := res.SpellCheck; sc != nil && sc.Corrected != sc.Original {
		fmt.Fprintf(&b, "Did you mean: %s (%s)\n", sc.Corrected, sc.Source)
	}

	if len(res.Groups) > 0 {
		for _, g := range res.Groups {
			fmt.Fprintf(&b, "\n== %s (%d)\n", g.Name, g.NumFound)
			writeDocuments(&b, g.Documents, res.Start)
		}
	} else {
		b.WriteByte('\n')
		writeDocuments(&b, res.Documents, res.Start)
	}

	for _, f := range res.Facets {
		fmt.Fprintf(&b, "\n%s:\n", f.Label)
		for _, it := range f.Items {
			mark := " "
			if it.Selected {
				mark = "*"
			}
			fmt.Fprintf(&b, "  %s %s (%d)\n", mark, it.Label, it.Count)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeDocuments(b *strings.Builder, docs []result.Document, start int64) {
	for i, d := range docs {
		title := d.Text("title")
		if title == "" {
			title = d.Text("id")
		}
		fmt.Fprintf(b, "%3d. %s\n", start+int64(i)+1, title)
		if u := d.Text("url"); u != "" {
			fmt.Fprintf(b, "     %s\n", u)
		}
	}
}
