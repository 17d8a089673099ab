package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SimulationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "underwriter_simulations_total",
			Help: "Evaluated simulations by authority level and verdict outcome",
		},
		[]string{"authority", "outcome"},
	)

	ValidationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "underwriter_validation_failures_total",
			Help: "Rejected simulation inputs by error kind",
		},
		[]string{"kind"},
	)

	SimulationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "underwriter_simulation_duration_seconds",
			Help:    "Time spent serving a simulation, cache lookups included",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
	)

	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "underwriter_report_cache_lookups_total",
			Help: "Report cache lookups by result",
		},
		[]string{"result"},
	)
)
