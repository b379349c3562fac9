package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Query evaluation outcomes.
const (
	OutcomeMatched  = "matched"
	OutcomeEmpty    = "empty"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Query and recipe Prometheus metrics.
var (
	QueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Query evaluations by scope and outcome",
		},
		[]string{"scope", "outcome"},
	)

	QueryErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_errors_total",
			Help:      "Rejected queries by error kind",
		},
		[]string{"kind"},
	)

	QueryDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Parse and dispatch time of a query",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	RecipeWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recipe_writes_total",
			Help:      "Recipe create/update/delete calls by scope, operation and status",
		},
		[]string{"scope", "op", "status"},
	)
)

var registerQueryOnce sync.Once

// RegisterQueryMetrics registers the query and recipe metrics. Safe to call more than once.
func RegisterQueryMetrics() {
	registerQueryOnce.Do(func() {
		prometheus.MustRegister(QueriesTotal, QueryErrorsTotal, QueryDuration, RecipeWritesTotal)
	})
}
