package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchd",
			Name:      "search_requests_total",
			Help:      "Total number of search requests by ranking path",
		},
		[]string{"path", "status"}, // path: "fused" / "lexical_only", status: "ok" / "error"
	)

	SearchDegradedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "searchd",
			Name:      "search_degraded_total",
			Help:      "Searches that fell back to lexical-only ranking",
		},
	)

	SearchAnaphoraTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchd",
			Name:      "search_anaphora_total",
			Help:      "Follow-up queries resolved against conversation context",
		},
		[]string{"result"}, // "resolved" / "empty_context"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDegradedTotal)
	prometheus.MustRegister(SearchAnaphoraTotal)
	searchMetricsRegistered = true
}
