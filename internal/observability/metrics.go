package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// completed prediction aggregation runs
	AggregationRuns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "adinventory_aggregation_runs_total",
			Help: "Total completed prediction aggregation runs",
		},
	)

	// failed aggregation runs (query or cache-write errors)
	AggregationErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "adinventory_aggregation_errors_total",
			Help: "Total failed prediction aggregation runs",
		},
	)

	// wall time of an aggregation run in seconds
	AggregationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "adinventory_aggregation_duration_seconds",
			Help:    "Histogram of prediction aggregation run durations",
			Buckets: prometheus.DefBuckets,
		},
	)

	// sites with a cached minimum after the latest run
	AggregatedSites = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "adinventory_aggregated_sites",
			Help: "Sites with a cached minimum daily pageview count",
		},
	)
)

// RegisterMetrics registers all inventory metrics with the given registry.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(
		AggregationRuns,
		AggregationErrors,
		AggregationDuration,
		AggregatedSites,
	)
}
