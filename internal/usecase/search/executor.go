package search

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/openviglet/sitesearch/internal/db"
	"github.com/openviglet/sitesearch/internal/domain/site"
	logpkg "github.com/openviglet/sitesearch/internal/logger"
	"github.com/openviglet/sitesearch/internal/metrics"
)

// Executor runs compiled queries under a wildcard policy.
type Executor struct {
	client Client
}

// NewExecutor creates an executor over a backend client.
func NewExecutor(c Client) *Executor {
	return &Executor{client: c}
}

// Execution is what the executor delivers. Response is nil when the backend
// failed; Wildcard reports that Response came from a wildcard pass.
type Execution struct {
	Response *db.Response
	Query    *db.Query
	Wildcard bool
}

// Execute runs q at most twice. Backend errors and cancellation yield an
// absent response and are never retried.
func (e *Executor) Execute(
	ctx context.Context, siteName string, policy site.WildcardPolicy, q *db.Query,
) Execution {
	if strings.TrimSpace(q.Text) == "" {
		q = e.client.Copy(q)
		q.Text = db.MatchAll
	}

	switch policy {
	case site.WildcardAlways:
		if isExpression(q.Text) {
			return Execution{Response: e.run(ctx, siteName, q), Query: q}
		}
		wq := withWildcard(e.client.Copy(q))
		return Execution{Response: e.run(ctx, siteName, wq), Query: wq, Wildcard: true}

	case site.WildcardOnEmpty:
		resp := e.run(ctx, siteName, q)
		if resp == nil || !resp.Empty() || isExpression(q.Text) {
			return Execution{Response: resp, Query: q}
		}
		metrics.SearchWildcardRetriesTotal.WithLabelValues(siteName).Inc()
		wq := withWildcard(e.client.Copy(q))
		retry := e.run(ctx, siteName, wq)
		if retry == nil {
			return Execution{Response: resp, Query: q}
		}
		if resp.Grouped() || retry.Grouped() {
			return Execution{Response: mergeGroups(resp, retry), Query: wq, Wildcard: true}
		}
		return Execution{Response: retry, Query: wq, Wildcard: true}
	}

	return Execution{Response: e.run(ctx, siteName, q), Query: q}
}

func (e *Executor) run(ctx context.Context, siteName string, q *db.Query) *db.Response {
	if err := ctx.Err(); err != nil {
		e.fail(ctx, siteName, q, err)
		return nil
	}
	resp, err := e.client.Execute(ctx, q)
	if err != nil {
		e.fail(ctx, siteName, q, err)
		return nil
	}
	outcome := metrics.OutcomeHit
	if resp.Empty() {
		outcome = metrics.OutcomeEmpty
	}
	metrics.SearchExecutionsTotal.WithLabelValues(siteName, outcome).Inc()
	return resp
}

func (e *Executor) fail(ctx context.Context, siteName string, q *db.Query, err error) {
	metrics.SearchExecutionsTotal.WithLabelValues(siteName, metrics.OutcomeError).Inc()
	logpkg.FromContext(ctx).Error("search execution failed",
		zap.String("site", siteName),
		zap.String("core", q.Core),
		zap.String("q", q.Text),
		zap.Strings("fq", q.Filters),
		zap.Int("start", q.Start),
		zap.Int("rows", q.Rows),
		zap.Error(err),
	)
}

// isExpression reports whether the text already ends like a wildcard,
// phrase, range or group.
func isExpression(text string) bool {
	return strings.HasSuffix(text, "*") || strings.HasSuffix(text, `"`) ||
		strings.HasSuffix(text, "]") || strings.HasSuffix(text, ")")
}

func withWildcard(q *db.Query) *db.Query {
	q.Text += "*"
	return q
}

// mergeGroups folds the wildcard pass into the original grouped response.
// Groups that already had documents are kept as they were; new groups and
// empty originals are taken from the wildcard pass. Facets and spell-check
// come from the wider wildcard pass.
func mergeGroups(orig, wild *db.Response) *db.Response {
	merged := *wild
	merged.Groups = make([]db.GroupCommand, 0, len(orig.Groups)+len(wild.Groups))

	byField := make(map[string]int, len(orig.Groups))
	for _, cmd := range orig.Groups {
		byField[cmd.Field] = len(merged.Groups)
		cmd.Groups = append([]db.Group(nil), cmd.Groups...)
		merged.Groups = append(merged.Groups, cmd)
	}
	for _, wcmd := range wild.Groups {
		i, ok := byField[wcmd.Field]
		if !ok {
			merged.Groups = append(merged.Groups, wcmd)
			continue
		}
		cmd := &merged.Groups[i]
		byValue := make(map[string]int, len(cmd.Groups))
		for j, g := range cmd.Groups {
			byValue[g.Value] = j
		}
		for _, wg := range wcmd.Groups {
			j, ok := byValue[wg.Value]
			switch {
			case !ok:
				cmd.Groups = append(cmd.Groups, wg)
			case len(cmd.Groups[j].Docs) == 0:
				cmd.Groups[j] = wg
			}
		}
		if wcmd.Matches > cmd.Matches {
			cmd.Matches = wcmd.Matches
		}
	}

	merged.Highlighting = unionHighlights(orig.Highlighting, wild.Highlighting)
	merged.MoreLikeThis = unionMLT(orig.MoreLikeThis, wild.MoreLikeThis)
	return &merged
}

func unionHighlights(orig, wild map[string]map[string][]string) map[string]map[string][]string {
	if len(orig) == 0 {
		return wild
	}
	out := make(map[string]map[string][]string, len(orig)+len(wild))
	for k, v := range wild {
		out[k] = v
	}
	for k, v := range orig {
		out[k] = v
	}
	return out
}

func unionMLT(orig, wild map[string][]db.Document) map[string][]db.Document {
	if len(orig) == 0 {
		return wild
	}
	out := make(map[string][]db.Document, len(orig)+len(wild))
	for k, v := range wild {
		out[k] = v
	}
	for k, v := range orig {
		out[k] = v
	}
	return out
}
