// Package metrics exposes Prometheus instrumentation for the artwork
// download pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch outcomes used as the "outcome" label.
const (
	OutcomeDownloaded = "downloaded"
	OutcomeCached     = "cached"
	OutcomeShared     = "shared"
	OutcomeMissing    = "missing"
	OutcomeFailed     = "failed"
)

// Job statuses used as the "status" label.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

var (
	FetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "artcache_fetches_total",
		Help: "Image fetch requests by role and outcome.",
	}, []string{"role", "outcome"})

	BytesDownloaded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "artcache_bytes_downloaded_total",
		Help: "Bytes written to the image cache from the network.",
	})

	InFlightTransfers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "artcache_inflight_transfers",
		Help: "Network transfers currently in progress.",
	})

	FetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "artcache_fetch_duration_seconds",
		Help:    "Duration of network transfers in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"role"})

	JobsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "artcache_jobs_processed_total",
		Help: "Pipeline jobs that reached a terminal state.",
	}, []string{"status"}) // status: succeeded, failed, skipped
)

// RecordFetch counts one fetch request.
func RecordFetch(role, outcome string) {
	FetchesTotal.WithLabelValues(role, outcome).Inc()
}

// RecordTransfer records a completed network transfer of n bytes.
func RecordTransfer(role string, n int, start time.Time) {
	BytesDownloaded.Add(float64(n))
	FetchDuration.WithLabelValues(role).Observe(time.Since(start).Seconds())
}

// RecordJob counts a job reaching a terminal state.
func RecordJob(status string) {
	JobsProcessed.WithLabelValues(status).Inc()
}

// WriteTextfile dumps the default registry in the text exposition format,
// for the node exporter textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
