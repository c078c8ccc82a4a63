package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetrics tracks uploads of queued sales to the backend.
type SyncMetrics struct {
	synced   prometheus.Counter
	failed   prometheus.Counter
	runs     *prometheus.CounterVec
	duration prometheus.Histogram
	depth    prometheus.Gauge
}

// NewSyncMetrics registers the sync metrics. A nil registerer yields a no-op recorder.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		return &SyncMetrics{}
	}
	m := &SyncMetrics{
		synced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_synced_total",
			Help:      "Sales accepted by the backend.",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sales_sync_failures_total",
			Help:      "Sale submissions that failed and stopped a sync run.",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_runs_total",
			Help:      "Sync runs by trigger.",
		}, []string{"trigger"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_run_duration_seconds",
			Help:      "Duration of sync runs in seconds.",
			Buckets:   prometheus.DefBuckets,
		}),
		depth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sales_unsynced",
			Help:      "Sales waiting in the local queue.",
		}),
	}
	reg.MustRegister(m.synced, m.failed, m.runs, m.duration, m.depth)
	return m
}

func (m *SyncMetrics) IncSynced() {
	if m == nil || m.synced == nil {
		return
	}
	m.synced.Inc()
}

func (m *SyncMetrics) IncFailed() {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.Inc()
}

// ObserveRun records one completed drain attempt.
func (m *SyncMetrics) ObserveRun(trigger string, duration time.Duration) {
	if m == nil || m.runs == nil {
		return
	}
	m.runs.WithLabelValues(normalizeLabel(trigger)).Inc()
	m.duration.Observe(duration.Seconds())
}

// SetQueueDepth publishes the number of unsynced sales.
func (m *SyncMetrics) SetQueueDepth(n int64) {
	if m == nil || m.depth == nil {
		return
	}
	m.depth.Set(float64(n))
}
