// Package metrics holds the prometheus collectors of the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "familygifts"

// Outcomes of a policy decision.
const (
	OutcomeAllowed = "allowed"
	OutcomeDenied  = "denied"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	decisions       *prometheus.CounterVec
	mixedExceptions prometheus.Counter
	redactions      *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry together with the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "policy_decisions_total",
			Help:      "Visibility decisions by resource and outcome.",
		}, []string{"resource", "outcome"}),
		mixedExceptions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "policy_mixed_exceptions_total",
			Help:      "Lists resolved from a mixed allow/deny exception set.",
		}),
		redactions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redactions_total",
			Help:      "Disclosure rows or fields hidden from a viewer, by kind.",
		}, []string{"kind"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// Decision counts one visibility decision.
func (m *Metrics) Decision(resource string, allowed bool) {
	if m == nil {
		return
	}
	outcome := OutcomeDenied
	if allowed {
		outcome = OutcomeAllowed
	}
	m.decisions.WithLabelValues(resource, outcome).Inc()
}

// MixedExceptions counts a list whose exceptions mixed allow and deny rows.
func (m *Metrics) MixedExceptions() {
	if m == nil {
		return
	}
	m.mixedExceptions.Inc()
}

// Redacted counts n hidden rows of kind.
func (m *Metrics) Redacted(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.redactions.WithLabelValues(kind).Add(float64(n))
}

// ObserveRequest records the latency of one HTTP request.
func (m *Metrics) ObserveRequest(route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
