package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestSyncMetricsExport(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSyncMetrics(reg)

	m.IncSynced()
	m.IncSynced()
	m.IncFailed()
	m.ObserveRun("connectivity", 100*time.Millisecond)
	m.SetQueueDepth(4)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got := findMetricFamily(mfs, "gaspos_sales_synced_total").GetMetric()[0].GetCounter().GetValue(); got != 2 {
		t.Fatalf("expected synced=2, got %f", got)
	}
	if got := findMetricFamily(mfs, "gaspos_sales_sync_failures_total").GetMetric()[0].GetCounter().GetValue(); got != 1 {
		t.Fatalf("expected failed=1, got %f", got)
	}
	if got := findMetricFamily(mfs, "gaspos_sales_unsynced").GetMetric()[0].GetGauge().GetValue(); got != 4 {
		t.Fatalf("expected depth=4, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "gaspos_sync_runs_total", "trigger", "connectivity"); err != nil || got != 1 {
		t.Fatalf("expected one connectivity run, got %f (%v)", got, err)
	}
	if findMetricFamily(mfs, "gaspos_sync_run_duration_seconds") == nil {
		t.Fatal("expected duration histogram")
	}
}
