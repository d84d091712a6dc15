package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveBackend(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveBackend("/api/stats/summary", "ok", 20*time.Millisecond)
	m.ObserveBackend("/api/stats/summary", "ok", 30*time.Millisecond)
	m.ObserveBackend("/api/stats/summary", "http_error", time.Millisecond)

	if got := testutil.ToFloat64(m.BackendRequests.WithLabelValues("/api/stats/summary", "ok")); got != 2 {
		t.Fatalf("expected 2 ok requests, got %v", got)
	}
	if got := testutil.CollectAndCount(m.BackendLatency); got != 1 {
		t.Fatalf("expected one latency series, got %d", got)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveBackend("/x", "ok", time.Second)
	m.ObserveRender("live", "rows")
	m.Tick()
	m.Dropped()
}

func TestRenderAndTickCounters(t *testing.T) {
	m := New(nil)
	m.ObserveRender("live", "empty")
	m.Tick()
	m.Tick()
	if got := testutil.ToFloat64(m.SectionRenders.WithLabelValues("live", "empty")); got != 1 {
		t.Fatalf("expected 1 render, got %v", got)
	}
	if got := testutil.ToFloat64(m.RefreshTicks); got != 2 {
		t.Fatalf("expected 2 ticks, got %v", got)
	}
}
