package sched

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch outcome labels.
const (
	outcomeOK        = "ok"
	outcomeTransient = "transient"
	outcomePermanent = "permanent"
	outcomeTimeout   = "timeout"
)

// metrics holds the scheduler's Prometheus instruments. Each scheduler owns
// a private registry so repeated construction (tests, profile switches)
// never trips duplicate registration.
type metrics struct {
	registry *prometheus.Registry

	Fetches       *prometheus.CounterVec
	FetchDuration prometheus.Histogram
	TicksSkipped  prometheus.Counter
	ActiveTasks   prometheus.Gauge
}

// newMetrics creates the instrument set on a fresh registry.
func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &metrics{
		registry: reg,

		Fetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gridsens_fetches_total",
				Help: "Total number of completed source fetches by outcome",
			},
			[]string{"outcome"},
		),
		FetchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gridsens_fetch_duration_seconds",
				Help:    "Source fetch duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
		),
		TicksSkipped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "gridsens_ticks_skipped_total",
				Help: "Poll ticks skipped because the previous fetch was still in flight",
			},
		),
		ActiveTasks: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "gridsens_active_tasks",
				Help: "Number of registered poll tasks",
			},
		),
	}
}
