package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search outcomes.
const (
	OutcomeHit   = "hit"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

// Search engine Prometheus metrics.
var (
	SearchExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "search_executions_total",
			Help:      "Backend executions by outcome",
		},
		[]string{"site", "outcome"},
	)

	SearchWildcardRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "search_wildcard_retries_total",
			Help:      "Queries re-executed with a trailing wildcard after an empty answer",
		},
		[]string{"site"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "search_duration_seconds",
			Help:      "End-to-end search duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"site"},
	)

	SiteCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "site_cache_total",
			Help:      "Site configuration cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	ResponseCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "response_cache_total",
			Help:      "Backend response cache hits and misses",
		},
		[]string{"result"},
	)

	SpellerRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "speller_requests_total",
			Help:      "Spell-correction requests by status",
		},
		[]string{"model", "status"},
	)

	SpellerRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "speller_request_duration_seconds",
			Help:      "Spell-correction request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"model"},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers the search engine metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchExecutionsTotal)
	prometheus.MustRegister(SearchWildcardRetriesTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SiteCacheTotal)
	prometheus.MustRegister(ResponseCacheTotal)
	prometheus.MustRegister(SpellerRequestsTotal)
	prometheus.MustRegister(SpellerRequestDuration)
	searchMetricsRegistered = true
}
