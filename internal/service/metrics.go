package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ingestionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "homedger_ingestions_total",
			Help: "Total ingested uploads by classified kind and pipeline outcome",
		},
		[]string{"kind", "outcome"},
	)

	optimizationSavedBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "homedger_optimization_saved_bytes",
			Help:    "Bytes saved per upload by optimization (original minus stored)",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
		},
	)

	optimizationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "homedger_optimization_duration_seconds",
			Help:    "Time spent in the optimization step per upload",
			Buckets: []float64{.01, .05, .1, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"kind"},
	)
)
