package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

// TestMetricsInit verifies that Init() is idempotent and registers metrics
func TestMetricsInit(t *testing.T) {
	// Call Init multiple times - should be idempotent via sync.Once
	Init()
	Init()
	Init()

	if SweepDuration == nil {
		t.Error("SweepDuration should be initialized")
	}
	if FilesMovedTotal == nil {
		t.Error("FilesMovedTotal should be initialized")
	}
	if FilesCopiedTotal == nil {
		t.Error("FilesCopiedTotal should be initialized")
	}
	if FilesDeletedTotal == nil {
		t.Error("FilesDeletedTotal should be initialized")
	}
	if BytesMovedTotal == nil {
		t.Error("BytesMovedTotal should be initialized")
	}
	if SweepLastRunTimestamp == nil {
		t.Error("SweepLastRunTimestamp should be initialized")
	}
	if RuleOpsTotal == nil {
		t.Error("RuleOpsTotal should be initialized")
	}
	if ErrorsTotal == nil {
		t.Error("ErrorsTotal should be initialized")
	}
	if FreeSpacePercent == nil {
		t.Error("FreeSpacePercent should be initialized")
	}

	// Metrics must be reachable through the default registry
	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}

	expectedMetrics := []string{
		"filedrover_sweep_duration_seconds",
		"filedrover_files_moved_total",
		"filedrover_files_copied_total",
		"filedrover_files_deleted_total",
		"filedrover_bytes_moved_total",
		"filedrover_sweep_last_run_timestamp",
		"filedrover_daemon_errors_total",
	}

	foundMetrics := make(map[string]bool)
	for _, mf := range mfs {
		foundMetrics[*mf.Name] = true
	}
	for _, expected := range expectedMetrics {
		if !foundMetrics[expected] {
			t.Errorf("expected metric %s not registered", expected)
		}
	}
}

func TestRecordRuleOp(t *testing.T) {
	Init()

	// Must not panic and must accept arbitrary rule/outcome labels
	RecordRuleOp("/data/inbox", "moved")
	RecordRuleOp("/data/inbox", "skipped")
	RecordRuleOp("/data/tmp", "deleted")
}

func TestRecordSweepRun(t *testing.T) {
	Init()
	RecordSweepRun()
}
