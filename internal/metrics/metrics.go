// Package metrics registers the dashboard's Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors the dashboard updates.
type Metrics struct {
	BackendRequests *prometheus.CounterVec
	BackendLatency  *prometheus.HistogramVec
	SectionRenders  *prometheus.CounterVec
	RefreshTicks    prometheus.Counter
	QueueDropped    prometheus.Counter
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered, which tests use to avoid global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BackendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dashboard",
			Name:      "backend_requests_total",
			Help:      "Backend API requests by path and outcome.",
		}, []string{"path", "outcome"}),
		BackendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dashboard",
			Name:      "backend_request_duration_seconds",
			Help:      "Backend API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path"}),
		SectionRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dashboard",
			Name:      "section_renders_total",
			Help:      "Section refreshes by section and result (rows, empty, error).",
		}, []string{"section", "result"}),
		RefreshTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dashboard",
			Name:      "auto_refresh_ticks_total",
			Help:      "Auto-refresh reloads fired.",
		}),
		QueueDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dashboard",
			Name:      "render_jobs_dropped_total",
			Help:      "Render jobs that could not be queued.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.BackendRequests, m.BackendLatency, m.SectionRenders, m.RefreshTicks, m.QueueDropped)
	}
	return m
}

// ObserveBackend records one backend call.
func (m *Metrics) ObserveBackend(path, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.BackendRequests.WithLabelValues(path, outcome).Inc()
	m.BackendLatency.WithLabelValues(path).Observe(took.Seconds())
}

// ObserveRender records one section refresh result.
func (m *Metrics) ObserveRender(section, result string) {
	if m == nil {
		return
	}
	m.SectionRenders.WithLabelValues(section, result).Inc()
}

// Tick records one auto-refresh reload.
func (m *Metrics) Tick() {
	if m == nil {
		return
	}
	m.RefreshTicks.Inc()
}

// Dropped records a render job rejected by the queue.
func (m *Metrics) Dropped() {
	if m == nil {
		return
	}
	m.QueueDropped.Inc()
}
