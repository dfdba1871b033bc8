// Package metrics exposes Prometheus instrumentation for the dashboard.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dueline/internal/tracking"
)

// Metrics holds every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Movements appended by resulting instrument status
	MovementsAppended *prometheus.CounterVec

	// Engine mutations by operation and outcome
	Mutations *prometheus.CounterVec

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	Instruments  *prometheus.GaugeVec
	Completion   prometheus.Gauge
	UnreadNotifs prometheus.Gauge
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		MovementsAppended: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dueline_movements_appended_total",
			Help: "Movements appended to instrument histories by status",
		}, []string{"status"}),
		Mutations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dueline_mutations_total",
			Help: "Engine mutations by operation and outcome",
		}, []string{"operation", "outcome"}), // outcome: "ok", "invalid", "not_found", "error"
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dueline_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		}, []string{"method", "route", "code"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dueline_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route"}),
		Instruments: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dueline_instruments",
			Help: "Instruments in the last computed dashboard by category",
		}, []string{"category"}), // total, signed, pending, in_progress, expired, expiring_soon
		Completion: f.NewGauge(prometheus.GaugeOpts{
			Name: "dueline_completion_percent",
			Help: "Share of signed instruments in the last computed dashboard",
		}),
		UnreadNotifs: f.NewGauge(prometheus.GaugeOpts{
			Name: "dueline_notifications_unread",
			Help: "Unread notifications",
		}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) IncMovement(status string) {
	if m != nil {
		m.MovementsAppended.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) IncMutation(operation, outcome string) {
	if m != nil {
		m.Mutations.WithLabelValues(operation, outcome).Inc()
	}
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route, code string, d time.Duration) {
	if m != nil {
		m.HTTPRequests.WithLabelValues(method, route, code).Inc()
		m.HTTPDuration.WithLabelValues(route).Observe(d.Seconds())
	}
}

// ObserveDashboard publishes the counts of a computed dashboard.
func (m *Metrics) ObserveDashboard(d tracking.Metrics) {
	if m == nil {
		return
	}
	m.Instruments.WithLabelValues("total").Set(float64(d.Total))
	m.Instruments.WithLabelValues("signed").Set(float64(d.Signed))
	m.Instruments.WithLabelValues("pending").Set(float64(d.Pending))
	m.Instruments.WithLabelValues("in_progress").Set(float64(d.InProgress))
	m.Instruments.WithLabelValues("expired").Set(float64(d.Expired))
	m.Instruments.WithLabelValues("expiring_soon").Set(float64(d.ExpiringSoon))
	m.Completion.Set(float64(d.Completion))
}

func (m *Metrics) SetUnread(n int) {
	if m != nil {
		m.UnreadNotifs.Set(float64(n))
	}
}
