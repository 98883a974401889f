package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSyncMetricsCounts(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewSyncMetrics(reg)

	m.AddSuccess("timer", 3)
	m.AddFailure("timer", 1)
	m.AddFailure("timer", 0)
	m.SetQueueDepth(4)
	m.ObserveDrain("timer", 120*time.Millisecond)

	if got := testutil.ToFloat64(m.recordSuccess.WithLabelValues("timer")); got != 3 {
		t.Fatalf("expected 3 successes, got %v", got)
	}
	if got := testutil.ToFloat64(m.recordFailure.WithLabelValues("timer")); got != 1 {
		t.Fatalf("expected 1 failure, got %v", got)
	}
	if got := testutil.ToFloat64(m.queueDepth); got != 4 {
		t.Fatalf("expected depth 4, got %v", got)
	}
}

func TestSyncMetricsNilRegisterer(t *testing.T) {
	t.Parallel()

	m := NewSyncMetrics(nil)
	m.AddSuccess("reachability", 1)
	m.ObserveDrain("", time.Second)
	m.SetQueueDepth(1)
}
