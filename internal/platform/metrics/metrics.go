// Package metrics owns the Prometheus registry and every collector the service exports.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeAllowed = "allowed"
	OutcomeDenied  = "denied"
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Metrics groups the collectors shared by services and HTTP middleware.
type Metrics struct {
	registry *prometheus.Registry

	AuthzDecisions  *prometheus.CounterVec
	Closures        *prometheus.CounterVec
	PointsAffected  *prometheus.CounterVec
	ActorCache      *prometheus.CounterVec
	HTTPInFlight    prometheus.Gauge
	HTTPRequests    *prometheus.CounterVec
	HTTPRequestTime *prometheus.HistogramVec
}

// New creates collectors registered on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		AuthzDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bimcall_authz_decisions_total",
			Help: "Permission decisions by outcome.",
		}, []string{"outcome"}),
		Closures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bimcall_closures_total",
			Help: "Closure attempts by entity type, mode and outcome.",
		}, []string{"entity_type", "mode", "outcome"}),
		PointsAffected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bimcall_points_affected_total",
			Help: "Points closed or moved by committed closures.",
		}, []string{"mode"}),
		ActorCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bimcall_actor_cache_lookups_total",
			Help: "Actor cache lookups by result.",
		}, []string{"result"}),
		HTTPInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_in_flight_requests",
			Help: "In-flight HTTP requests.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		HTTPRequestTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.AuthzDecisions,
		m.Closures,
		m.PointsAffected,
		m.ActorCache,
		m.HTTPInFlight,
		m.HTTPRequests,
		m.HTTPRequestTime,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Decision records one authorization outcome.
func (m *Metrics) Decision(allowed bool) {
	if m == nil {
		return
	}
	if allowed {
		m.AuthzDecisions.WithLabelValues(OutcomeAllowed).Inc()
		return
	}
	m.AuthzDecisions.WithLabelValues(OutcomeDenied).Inc()
}

// Closure records one closure attempt and, on success, the points it touched.
func (m *Metrics) Closure(entityType, mode, outcome string, points int) {
	if m == nil {
		return
	}
	m.Closures.WithLabelValues(entityType, mode, outcome).Inc()
	if outcome == OutcomeSuccess && points > 0 {
		m.PointsAffected.WithLabelValues(mode).Add(float64(points))
	}
}

// CacheLookup records an actor cache hit or miss.
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.ActorCache.WithLabelValues("hit").Inc()
		return
	}
	m.ActorCache.WithLabelValues("miss").Inc()
}
