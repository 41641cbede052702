// Package metrics declares the process's Prometheus instrumentation: scan
// volume, match and ingestion latency, and index size.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var ScansTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "inkwell_scans_total",
		Help: "Identification requests by outcome",
	},
	[]string{"outcome"}, // "match" or "no_match"
)

var MatchDurationSeconds = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "inkwell_match_duration_seconds",
		Help:    "Time to decode, extract, and match a submitted image",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	},
)

var IngestionDurationSeconds = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "inkwell_ingestion_duration_seconds",
		Help:    "Wall-clock duration of a full ingestion run",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 14),
	},
)

var IndexSize = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "inkwell_index_size",
		Help: "Number of reference records in the currently published index",
	},
)
