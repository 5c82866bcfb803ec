package metrics

import (
	"load-planner-service/internal/domain"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	PlansTotal       *prometheus.CounterVec
	PlanTrucks       prometheus.Histogram
	UnplaceableUnits prometheus.Counter
	SelectionsTotal  prometheus.Counter
	PlanCacheLookups *prometheus.CounterVec
	PermitsRequired  *prometheus.CounterVec
}

// New creates and registers every collector under namespace.
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: registry}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	m.PlansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plans_total",
			Help:      "Load plans computed, by outcome",
		},
		[]string{"outcome"},
	)

	m.PlanTrucks = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "plan_trucks",
			Help:      "Trucks used per load plan",
			Buckets:   []float64{1, 2, 3, 4, 6, 8, 12, 16, 24},
		},
	)

	m.UnplaceableUnits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unplaceable_units_total",
			Help:      "Cargo units no candidate truck could carry",
		},
	)

	m.SelectionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selections_total",
			Help:      "Truck selection requests served",
		},
	)

	m.PlanCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plan_cache_lookups_total",
			Help:      "Response cache lookups, by result",
		},
		[]string{"result"},
	)

	m.PermitsRequired = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "permits_required_total",
			Help:      "Permits required, by state and permit type",
		},
		[]string{"state", "permit"},
	)

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.PlansTotal,
		m.PlanTrucks,
		m.UnplaceableUnits,
		m.SelectionsTotal,
		m.PlanCacheLookups,
		m.PermitsRequired,
	)

	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordCacheLookup counts a response cache hit or miss.
func (m *Metrics) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.PlanCacheLookups.WithLabelValues(result).Inc()
}

// RecordPlan counts a planning outcome. Failed plans only bump the outcome.
func (m *Metrics) RecordPlan(plan *domain.LoadPlan, err error) {
	switch {
	case err != nil:
		m.PlansTotal.WithLabelValues("error").Inc()
		return
	case plan.Complete():
		m.PlansTotal.WithLabelValues("complete").Inc()
	default:
		m.PlansTotal.WithLabelValues("partial").Inc()
	}

	m.PlanTrucks.Observe(float64(plan.TruckCount))
	m.UnplaceableUnits.Add(float64(len(plan.Unplaceable)))
	for _, req := range plan.Permits {
		m.RecordPermits(req)
	}
}

// RecordPermits counts each permit type a state requires.
func (m *Metrics) RecordPermits(req domain.PermitRequirement) {
	for _, p := range req.Permits {
		m.PermitsRequired.WithLabelValues(req.StateCode, string(p)).Inc()
	}
}
