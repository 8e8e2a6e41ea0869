// Package metrics defines the prometheus instrumentation for ingestion.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RowsIngested counts rows delivered to the store coordinator, per dataset
	RowsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chunksink_rows_ingested_total",
		Help: "Number of rows delivered to the store coordinator",
	}, []string{"dataset"})

	// IngestDuration observes end-to-end ingestion latency, per dataset
	IngestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chunksink_ingest_duration_seconds",
		Help:    "End-to-end duration of partitioned ingestion requests",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	}, []string{"dataset"})

	// Flushes counts flush requests by outcome
	Flushes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chunksink_flush_total",
		Help: "Number of flush requests issued, by outcome",
	}, []string{"status"})

	// Truncations counts truncate requests by outcome
	Truncations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chunksink_truncate_total",
		Help: "Number of truncate requests issued, by outcome",
	}, []string{"status"})
)
