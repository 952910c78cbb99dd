package observability

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the console's Prometheus collectors on a private registry.
// It implements listing.Recorder and apiclient.Recorder.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	fetchTotal      *prometheus.CounterVec
	fetchDuration   *prometheus.HistogramVec
	mutationTotal   *prometheus.CounterVec
	backendTotal    *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	workspaces      prometheus.Gauge
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "console_http_requests_total",
			Help: "HTTP requests served, by route and status code.",
		}, []string{"route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "console_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "console_list_fetches_total",
			Help: "List fetches by screen and outcome (ok, error, stale).",
		}, []string{"screen", "outcome"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "console_list_fetch_duration_seconds",
			Help:    "List fetch latency by screen.",
			Buckets: prometheus.DefBuckets,
		}, []string{"screen"}),
		mutationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "console_mutations_total",
			Help: "Single-entity mutations by screen, action and outcome (ok, error, invalid).",
		}, []string{"screen", "action", "outcome"}),
		backendTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "console_backend_requests_total",
			Help: "Requests sent to the platform backend by method and status code (0 on transport failure).",
		}, []string{"method", "code"}),
		backendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "console_backend_request_duration_seconds",
			Help:    "Platform backend latency by method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		workspaces: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "console_workspaces_open",
			Help: "Admin workspaces currently held in memory.",
		}),
	}
	registry.MustRegister(
		m.requestsTotal, m.requestDuration,
		m.fetchTotal, m.fetchDuration, m.mutationTotal,
		m.backendTotal, m.backendDuration,
		m.workspaces,
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler serves /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records every HTTP request by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) FetchDone(screen, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.fetchTotal.WithLabelValues(screen, outcome).Inc()
	m.fetchDuration.WithLabelValues(screen).Observe(d.Seconds())
}

func (m *Metrics) MutationDone(screen, action, outcome string) {
	if m == nil {
		return
	}
	m.mutationTotal.WithLabelValues(screen, action, outcome).Inc()
}

func (m *Metrics) ObserveBackend(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.backendTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.backendDuration.WithLabelValues(method).Observe(d.Seconds())
}

// WorkspaceOpened and WorkspaceClosed track the open workspace gauge.
func (m *Metrics) WorkspaceOpened() {
	if m != nil {
		m.workspaces.Inc()
	}
}

func (m *Metrics) WorkspaceClosed() {
	if m != nil {
		m.workspaces.Dec()
	}
}

// Registerer exposes the registry for custom collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

// Hijack passes WebSocket upgrades through to the underlying connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("observability: response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
