// Package metrics exposes Prometheus counters and gauges for the engine.
//
// The engine does not define transport beyond the /metrics handler; the
// observability layer scrapes:
//   - reentry_decisions_total{verdict}       – decisions by verdict
//   - reentry_rejections_total{reason}       – validation rejections
//   - reentry_generation_overflow_total      – generation overflow attempts
//   - reentry_lookup_latency_seconds         – end-to-end resolution latency
//   - reentry_latency_budget_breaches_total  – resolutions over budget
//   - reentry_active_chains                  – chains currently ACTIVE
//   - reentry_matrix_cells                   – cells in the published snapshot
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	decisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reentry_decisions_total",
			Help: "Decisions emitted, by verdict",
		},
		[]string{"verdict"},
	)

	rejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reentry_rejections_total",
			Help: "Validation rejections, by reason",
		},
		[]string{"reason"},
	)

	overflows = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reentry_generation_overflow_total",
			Help: "Attempts to resolve beyond the generation hard cap",
		},
	)

	lookupLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reentry_lookup_latency_seconds",
			Help:    "End-to-end resolution latency including validation",
			Buckets: []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		},
	)

	budgetBreaches = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reentry_latency_budget_breaches_total",
			Help: "Resolutions that exceeded the configured latency budget",
		},
	)

	activeChains = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "reentry_active_chains",
			Help: "Reentry chains currently in ACTIVE status",
		},
	)

	matrixCells = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "reentry_matrix_cells",
			Help: "Cells in the currently published matrix snapshot",
		},
	)
)

func init() {
	prometheus.MustRegister(decisions, rejections, overflows)
	prometheus.MustRegister(lookupLatency, budgetBreaches)
	prometheus.MustRegister(activeChains, matrixCells)
}

// IncDecision counts one emitted decision.
func IncDecision(verdict string) { decisions.WithLabelValues(verdict).Inc() }

// IncRejection counts one validation rejection.
func IncRejection(reason string) { rejections.WithLabelValues(reason).Inc() }

// IncOverflow counts one generation overflow attempt.
func IncOverflow() { overflows.Inc() }

// ObserveLatency records one resolution latency.
func ObserveLatency(seconds float64) { lookupLatency.Observe(seconds) }

// IncBudgetBreach counts one latency budget breach.
func IncBudgetBreach() { budgetBreaches.Inc() }

// SetActiveChains updates the active chain gauge.
func SetActiveChains(n int) { activeChains.Set(float64(n)) }

// SetMatrixCells updates the published cell count gauge.
func SetMatrixCells(n int) { matrixCells.Set(float64(n)) }

// Handler returns the Prometheus text exposition handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
