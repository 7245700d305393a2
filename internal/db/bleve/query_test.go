package bleve

import (
	"testing"
	"time"

	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allTextual(string) bool { return true }

func TestLex_StripsLocalParams(t *testing.T) {
	toks, err := lex(`{!tag=_all_}(type:"pdf" OR type:"doc")`)
	require.NoError(t, err)

	kinds := make([]tokenKind, len(toks))
	for i, tk := range toks {
		kinds[i] = tk.kind
	}
	assert.Equal(t, []tokenKind{
		tokLParen, tokWord, tokColon, tokPhrase, tokOr,
		tokWord, tokColon, tokPhrase, tokRParen, tokEOF,
	}, kinds)
	assert.Equal(t, "pdf", toks[3].text)
}

func TestLex_Errors(t *testing.T) {
	for _, in := range []string{`title:"open`, `published:[2024 TO`} {
		_, err := lex(in)
		assert.Error(t, err, in)
	}
}

func TestParseQueryFields(t *testing.T) {
	got := parseQueryFields([]string{"title^2 text", "tags^x"})
	assert.Equal(t, []weightedField{
		{name: "title", boost: 2},
		{name: "text", boost: 1},
		{name: "tags", boost: 1},
	}, got)
}

func TestParseQuery_Shapes(t *testing.T) {
	qf := parseQueryFields([]string{"title^2 text"})

	t.Run("match all", func(t *testing.T) {
		q, err := parseQuery("*:*", nil, allTextual)
		require.NoError(t, err)
		assert.IsType(t, &query.MatchAllQuery{}, q)
	})

	t.Run("fielded term", func(t *testing.T) {
		q, err := parseQuery("title:go", qf, allTextual)
		require.NoError(t, err)
		mq, ok := q.(*query.MatchQuery)
		require.True(t, ok)
		assert.Equal(t, "title", mq.Field())
		assert.Equal(t, "go", mq.Match)
	})

	t.Run("bare term fans out", func(t *testing.T) {
		q, err := parseQuery("go", qf, allTextual)
		require.NoError(t, err)
		dq, ok := q.(*query.DisjunctionQuery)
		require.True(t, ok)
		require.Len(t, dq.Disjuncts, 2)
		title := dq.Disjuncts[0].(*query.MatchQuery)
		assert.Equal(t, "title", title.Field())
		assert.Equal(t, 2.0, title.Boost())
	})

	t.Run("bare term without query fields", func(t *testing.T) {
		q, err := parseQuery("go", nil, allTextual)
		require.NoError(t, err)
		mq, ok := q.(*query.MatchQuery)
		require.True(t, ok)
		assert.Equal(t, "", mq.Field())
	})

	t.Run("phrase", func(t *testing.T) {
		q, err := parseQuery(`title_exact:"foo bar"`, qf, allTextual)
		require.NoError(t, err)
		pq, ok := q.(*query.MatchPhraseQuery)
		require.True(t, ok)
		assert.Equal(t, "foo bar", pq.MatchPhrase)
	})

	t.Run("wildcard lowercased on text", func(t *testing.T) {
		q, err := parseQuery("title:Gol*", nil, allTextual)
		require.NoError(t, err)
		wq, ok := q.(*query.WildcardQuery)
		require.True(t, ok)
		assert.Equal(t, "gol*", wq.Wildcard)
	})

	t.Run("wildcard kept on keyword", func(t *testing.T) {
		q, err := parseQuery("type:PD*", nil, func(string) bool { return false })
		require.NoError(t, err)
		assert.Equal(t, "PD*", q.(*query.WildcardQuery).Wildcard)
	})

	t.Run("date range", func(t *testing.T) {
		q, err := parseQuery("(published:[ 2024-03-15T00:00:00Z TO 2024-03-31T23:59:59Z ])", nil, allTextual)
		require.NoError(t, err)
		assert.IsType(t, &query.DateRangeQuery{}, q)
	})

	t.Run("open-ended date range", func(t *testing.T) {
		q, err := parseQuery("published:[2024-01-01T00:00:00Z TO *]", nil, allTextual)
		require.NoError(t, err)
		dq, ok := q.(*query.DateRangeQuery)
		require.True(t, ok)
		assert.Equal(t, "published", dq.Field())
		assert.True(t, dq.Start.Equal(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)))
		assert.True(t, dq.End.IsZero(), "* must leave the upper bound open")
	})

	t.Run("open numeric range", func(t *testing.T) {
		q, err := parseQuery("views:[10 TO *]", nil, allTextual)
		require.NoError(t, err)
		nq, ok := q.(*query.NumericRangeQuery)
		require.True(t, ok)
		assert.Equal(t, 10.0, *nq.Min)
		assert.Nil(t, nq.Max)
	})

	t.Run("negation", func(t *testing.T) {
		q, err := parseQuery("go AND -rust", nil, allTextual)
		require.NoError(t, err)
		assert.IsType(t, &query.BooleanQuery{}, q)
	})

	t.Run("juxtaposition is or", func(t *testing.T) {
		q, err := parseQuery("go rust", nil, allTextual)
		require.NoError(t, err)
		dq, ok := q.(*query.DisjunctionQuery)
		require.True(t, ok)
		assert.Len(t, dq.Disjuncts, 2)
	})

	t.Run("and", func(t *testing.T) {
		q, err := parseQuery("go && rust", nil, allTextual)
		require.NoError(t, err)
		cq, ok := q.(*query.ConjunctionQuery)
		require.True(t, ok)
		assert.Len(t, cq.Conjuncts, 2)
	})

	t.Run("function query dropped", func(t *testing.T) {
		q, err := parseQuery(`_query_:"{!func}recip(ms(NOW,published),3.16e-11,1,1)"^2`, nil, allTextual)
		require.NoError(t, err)
		assert.Nil(t, q)
	})

	t.Run("boost", func(t *testing.T) {
		q, err := parseQuery(`(region:"US")^2.5`, nil, allTextual)
		require.NoError(t, err)
		assert.Equal(t, 2.5, q.(*query.MatchPhraseQuery).Boost())
	})
}

func TestParseQuery_Errors(t *testing.T) {
	for _, in := range []string{"(go", "go)", "title:", "[1 TO 2]", "go^x.y"} {
		_, err := parseQuery(in, nil, allTextual)
		assert.Error(t, err, in)
	}
}

func TestResolveDateMath(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	got, err := resolveDateMath("NOW", now)
	require.NoError(t, err)
	assert.Equal(t, now, got)

	got, err = resolveDateMath("NOW-100YEARS", now)
	require.NoError(t, err)
	assert.Equal(t, 1926, got.Year())

	got, err = resolveDateMath("NOW+2DAYS", now)
	require.NoError(t, err)
	assert.Equal(t, 21, got.Day())

	for _, bad := range []string{"", "TODAY", "NOW-1WEEK", "NOW-XDAYS"} {
		_, err := resolveDateMath(bad, now)
		assert.Error(t, err, bad)
	}
}

func TestParseGap(t *testing.T) {
	next, err := parseGap("+1MONTH")
	require.NoError(t, err)
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), next(jan))

	_, err = parseGap("-1MONTH")
	assert.Error(t, err)
	_, err = parseGap("1MONTH")
	assert.Error(t, err)
}

func TestFloorTo(t *testing.T) {
	ts := time.Date(2024, 3, 17, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), floorTo(ts, "+1MONTH"))
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), floorTo(ts, "+1YEAR"))
	assert.Equal(t, time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC), floorTo(ts, "+1DAY"))
}
