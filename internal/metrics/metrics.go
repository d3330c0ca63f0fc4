// Package metrics provides Prometheus metrics for the performance service.
// They are scraped at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "perf_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "perf_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Calculation Metrics
	CalculationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "perf_calculations_total",
			Help: "Total number of performance calculations",
		},
		[]string{"kind", "result"}, // kind: "portfolio", "holding", "factor"; result: "success" or "failed"
	)

	CalculationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "perf_calculation_duration_seconds",
			Help:    "Time taken to calculate a performance",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"kind"},
	)

	CalculationDays = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "perf_calculation_days",
			Help:    "Number of business days per calculated period",
			Buckets: []float64{1, 5, 20, 60, 125, 250, 500, 1250},
		},
	)

	// Report Job Metrics
	ReportRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "perf_report_runs_total",
			Help: "Total number of report job runs",
		},
	)

	ReportFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "perf_report_portfolio_failures_total",
			Help: "Portfolios whose report calculation failed",
		},
	)

	ReportLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "perf_report_last_run_timestamp_seconds",
			Help: "Unix time the report job last finished",
		},
	)
)

// Result returns the result label for err.
func Result(err error) string {
	if err != nil {
		return "failed"
	}
	return "success"
}
