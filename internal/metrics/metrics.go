// Package metrics provides Prometheus metrics for the blockfile core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "blockfile"

// Index metrics track index_root runs.
var (
	IndexFilesScannedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "index_files_scanned_total",
		Help:      "Total number of files scanned by index_root",
	})

	IndexFilesUpdatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "index_files_updated_total",
		Help:      "Total number of files parsed and upserted by index_root",
	})

	IndexFilesRemovedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "index_files_removed_total",
		Help:      "Total number of files removed from the index for having disappeared from disk",
	})

	IndexHeadingsExtractedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "index_headings_extracted_total",
		Help:      "Total number of headings extracted across all index_root runs",
	})

	IndexDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "index_duration_seconds",
		Help:      "Duration of index_root invocations in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~102s
	})
)

// Search metrics track search_index calls.
var (
	SearchRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "search_requests_total",
		Help:      "Total number of search_index calls by outcome",
	}, []string{"outcome"})

	SearchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "search_duration_seconds",
		Help:      "Duration of search_index calls in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
	})

	SearchHitsReturned = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "search_hits_returned",
		Help:      "Number of hits returned by search_index calls",
		Buckets:   prometheus.LinearBuckets(0, 10, 10),
	})
)

// Capture metrics track insert_capture and destination mutations.
var (
	CaptureWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "capture_writes_total",
		Help:      "Total number of capture writer operations by kind and outcome",
	}, []string{"op", "outcome"})

	CaptureWriteDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "capture_write_duration_seconds",
		Help:      "Duration of capture writer operations in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~2.5s
	}, []string{"op"})
)

// Root metrics track the set of remembered roots.
var (
	RootsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "roots_total",
		Help:      "Total number of remembered roots",
	})
)
