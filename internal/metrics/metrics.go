package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "monglemongle"

// Metrics holds the process collectors. A nil *Metrics is valid and records
// nothing, so components can be built without instrumentation in tests.
type Metrics struct {
	registry *prometheus.Registry

	submissions   *prometheus.CounterVec
	moderation    *prometheus.CounterVec
	aiMessages    *prometheus.CounterVec
	exports       *prometheus.CounterVec
	wsClients     prometheus.Gauge
	httpRequests  *prometheus.CounterVec
	httpDurations *prometheus.HistogramVec
}

// New registers every collector on a fresh registry together with the Go
// runtime and process collectors.
func New(env string) *Metrics {
	labels := prometheus.Labels{"env": env}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "submissions",
			Name:        "created_total",
			Help:        "Submissions persisted, by type.",
			ConstLabels: labels,
		}, []string{"type"}),
		moderation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "submissions",
			Name:        "moderation_total",
			Help:        "Admin moderation actions, by action and whether a row changed.",
			ConstLabels: labels,
		}, []string{"action", "outcome"}),
		aiMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "notify",
			Name:        "messages_total",
			Help:        "Thank-you messages, by provider and outcome.",
			ConstLabels: labels,
		}, []string{"provider", "outcome"}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "export",
			Name:        "runs_total",
			Help:        "Spreadsheet exports, by result.",
			ConstLabels: labels,
		}, []string{"result"}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "realtime",
			Name:        "clients",
			Help:        "Connected websocket clients.",
			ConstLabels: labels,
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   "http",
			Name:        "requests_total",
			Help:        "HTTP requests, by method, route and status.",
			ConstLabels: labels,
		}, []string{"method", "route", "status"}),
		httpDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   "http",
			Name:        "request_duration_seconds",
			Help:        "HTTP request latency.",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.submissions,
		m.moderation,
		m.aiMessages,
		m.exports,
		m.wsClients,
		m.httpRequests,
		m.httpDurations,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) SubmissionCreated(typ string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(typ).Inc()
}

func (m *Metrics) Moderated(action string, changed bool) {
	if m == nil {
		return
	}
	outcome := "changed"
	if !changed {
		outcome = "noop"
	}
	m.moderation.WithLabelValues(action, outcome).Inc()
}

func (m *Metrics) AIMessage(provider string, fallback bool) {
	if m == nil {
		return
	}
	outcome := "generated"
	if fallback {
		outcome = "fallback"
	}
	m.aiMessages.WithLabelValues(provider, outcome).Inc()
}

func (m *Metrics) Export(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.exports.WithLabelValues(result).Inc()
}

func (m *Metrics) ClientConnected() {
	if m == nil {
		return
	}
	m.wsClients.Inc()
}

func (m *Metrics) ClientDisconnected() {
	if m == nil {
		return
	}
	m.wsClients.Dec()
}

// ObserveHTTP records one finished request. route should be the matched
// pattern, not the raw path.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDurations.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
