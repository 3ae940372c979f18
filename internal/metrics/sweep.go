package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Sweep subsystem metrics
var (
	// SweepDuration tracks how long sweep cycles take
	SweepDuration prometheus.Histogram

	// FilesMovedTotal tracks total files moved
	FilesMovedTotal prometheus.Counter

	// FilesCopiedTotal tracks total files copied
	FilesCopiedTotal prometheus.Counter

	// FilesDeletedTotal tracks total files deleted by purge rules
	FilesDeletedTotal prometheus.Counter

	// FilesSkippedTotal tracks files skipped due to collisions or guards
	FilesSkippedTotal prometheus.Counter

	// BytesMovedTotal tracks total bytes relocated
	BytesMovedTotal prometheus.Counter

	// BytesCopiedTotal tracks total bytes duplicated
	BytesCopiedTotal prometheus.Counter

	// BytesFreedTotal tracks total bytes freed by purge rules
	BytesFreedTotal prometheus.Counter

	// SweepLastRunTimestamp records Unix timestamp of last sweep
	SweepLastRunTimestamp prometheus.Gauge

	// RuleOpsTotal tracks operations per rule source and outcome
	RuleOpsTotal *prometheus.CounterVec
)

// initSweepMetrics initializes all sweep subsystem metrics
func initSweepMetrics() {
	SweepDuration = NewDurationHistogram(
		"filedrover_sweep_duration_seconds",
		"Duration of sweep cycles in seconds.",
	)

	FilesMovedTotal = NewCounter(
		"filedrover_files_moved_total",
		"Total number of files moved by filedrover.",
	)

	FilesCopiedTotal = NewCounter(
		"filedrover_files_copied_total",
		"Total number of files copied by filedrover.",
	)

	FilesDeletedTotal = NewCounter(
		"filedrover_files_deleted_total",
		"Total number of files deleted by purge rules.",
	)

	FilesSkippedTotal = NewCounter(
		"filedrover_files_skipped_total",
		"Total number of files skipped (collisions, guards).",
	)

	BytesMovedTotal = NewBytesCounter(
		"filedrover_bytes_moved_total",
		"Total bytes relocated by filedrover.",
	)

	BytesCopiedTotal = NewBytesCounter(
		"filedrover_bytes_copied_total",
		"Total bytes duplicated by copy rules.",
	)

	BytesFreedTotal = NewBytesCounter(
		"filedrover_bytes_freed_total",
		"Total bytes freed by purge rules.",
	)

	SweepLastRunTimestamp = NewGauge(
		"filedrover_sweep_last_run_timestamp",
		"Timestamp of the last sweep run (Unix epoch seconds).",
	)

	RuleOpsTotal = NewCounterVec(
		"filedrover_rule_ops_total",
		"Total operations per rule source and outcome.",
		[]string{"rule", "outcome"},
	)
}

// registerSweepMetrics registers all sweep metrics with Prometheus
func registerSweepMetrics() {
	prometheus.MustRegister(SweepDuration)
	prometheus.MustRegister(FilesMovedTotal)
	prometheus.MustRegister(FilesCopiedTotal)
	prometheus.MustRegister(FilesDeletedTotal)
	prometheus.MustRegister(FilesSkippedTotal)
	prometheus.MustRegister(BytesMovedTotal)
	prometheus.MustRegister(BytesCopiedTotal)
	prometheus.MustRegister(BytesFreedTotal)
	prometheus.MustRegister(SweepLastRunTimestamp)
	prometheus.MustRegister(RuleOpsTotal)
}

// RecordSweepRun updates the last run timestamp to current time
func RecordSweepRun() {
	SweepLastRunTimestamp.Set(float64(time.Now().Unix()))
}

// RecordRuleOp increments the per-rule outcome counter
func RecordRuleOp(rule, outcome string) {
	RuleOpsTotal.WithLabelValues(rule, outcome).Inc()
}
