package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns the Prometheus HTTP handler for the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordIndexRun records one index_root invocation.
func RecordIndexRun(scanned, updated, removed, headingsExtracted int, duration time.Duration) {
	IndexFilesScannedTotal.Add(float64(scanned))
	IndexFilesUpdatedTotal.Add(float64(updated))
	IndexFilesRemovedTotal.Add(float64(removed))
	IndexHeadingsExtractedTotal.Add(float64(headingsExtracted))
	IndexDuration.Observe(duration.Seconds())
}

// RecordSearch records one search_index call.
func RecordSearch(hits int, duration time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	SearchRequestsTotal.WithLabelValues(outcome).Inc()
	SearchDuration.Observe(duration.Seconds())
	if err == nil {
		SearchHitsReturned.Observe(float64(hits))
	}
}

// RecordCaptureWrite records one capture writer operation (insert,
// delete, or move).
func RecordCaptureWrite(op string, duration time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	CaptureWritesTotal.WithLabelValues(op, outcome).Inc()
	CaptureWriteDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// UpdateRootsTotal updates the remembered-roots gauge.
func UpdateRootsTotal(count int) {
	RootsTotal.Set(float64(count))
}
