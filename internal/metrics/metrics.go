// Package metrics defines the pipeline's Prometheus counters, exposed by
// the admin server at /metrics. Counter names are part of the deployed
// dashboards and must not change.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FilesProcessed counts files that reached the processed area.
	FilesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "files_processed_total",
		Help: "Number of files successfully ingested and moved to processed.",
	})

	// FilesQuarantined counts files moved to quarantine, split by kind
	// (invalid rows vs. fatal processing failure).
	FilesQuarantined = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "files_quarantined_total",
		Help: "Number of files moved to quarantine.",
	}, []string{"kind"})

	// RawRowsInserted counts raw reading rows newly inserted into the store.
	// Rows skipped by the dedupe constraint do not count.
	RawRowsInserted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "raw_rows_inserted_total",
		Help: "Number of raw reading rows inserted.",
	})

	// AggRowsInserted counts aggregate rows written (inserted or updated).
	AggRowsInserted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agg_rows_inserted_total",
		Help: "Number of file aggregate rows written.",
	})

	// ProcessErrors counts unexpected per-file failures (load errors,
	// exhausted store retries, filesystem problems).
	ProcessErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "process_errors_total",
		Help: "Number of unhandled errors while processing files.",
	})
)
