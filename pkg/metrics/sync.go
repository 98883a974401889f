package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetrics records the outcome of durability-queue drain cycles.
type SyncMetrics struct {
	drainDuration *prometheus.HistogramVec
	recordSuccess *prometheus.CounterVec
	recordFailure *prometheus.CounterVec
	queueDepth    prometheus.Gauge
}

// NewSyncMetrics registers the sync daemon metrics on the provided registerer.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		return &SyncMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sync_drain_duration_seconds",
		Help:    "Duration of durability queue drain cycles in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"trigger"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_record_success",
		Help: "Pending transactions confirmed by the remote store.",
	}, []string{"trigger"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_record_failure",
		Help: "Pending transactions that failed a sync attempt.",
	}, []string{"trigger"})
	depth := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sync_queue_depth",
		Help: "Unsynced transactions remaining after the last drain.",
	})
	reg.MustRegister(duration, success, failure, depth)
	return &SyncMetrics{
		drainDuration: duration,
		recordSuccess: success,
		recordFailure: failure,
		queueDepth:    depth,
	}
}

// ObserveDrain records the duration of a drain cycle.
func (m *SyncMetrics) ObserveDrain(trigger string, duration time.Duration) {
	if m == nil || m.drainDuration == nil {
		return
	}
	m.drainDuration.WithLabelValues(normalizeLabel(trigger)).Observe(duration.Seconds())
}

// AddSuccess counts records confirmed during a drain.
func (m *SyncMetrics) AddSuccess(trigger string, n int) {
	if m == nil || m.recordSuccess == nil || n <= 0 {
		return
	}
	m.recordSuccess.WithLabelValues(normalizeLabel(trigger)).Add(float64(n))
}

// AddFailure counts records that failed during a drain.
func (m *SyncMetrics) AddFailure(trigger string, n int) {
	if m == nil || m.recordFailure == nil || n <= 0 {
		return
	}
	m.recordFailure.WithLabelValues(normalizeLabel(trigger)).Add(float64(n))
}

// SetQueueDepth reports how many records remain unsynced.
func (m *SyncMetrics) SetQueueDepth(n int) {
	if m == nil || m.queueDepth == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}

func normalizeLabel(trigger string) string {
	if trigger == "" {
		return "unknown"
	}
	return trigger
}
