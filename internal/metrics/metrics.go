package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zbiljic/blueprint/pkg/artifact"
	"github.com/zbiljic/blueprint/pkg/llm"
)

const namespace = "blueprint"

// ResultOK is the result label of a generated artifact. Failed artifacts are
// labeled with their llm.ErrorKind.
const ResultOK = "ok"

// Metrics holds the collectors of one process. Every instance has its own
// registry.
type Metrics struct {
	registry *prometheus.Registry

	// LLM / artifacts
	LLMRequests       *prometheus.CounterVec
	ArtifactResults   *prometheus.CounterVec
	ArtifactDurations *prometheus.HistogramVec

	// HTTP
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPErrors   *prometheus.CounterVec

	// Websockets / realtime
	WebsocketConnections prometheus.Gauge

	// Errors
	Errors *prometheus.CounterVec
}

// New creates and registers all collectors, including the Go and process
// collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		LLMRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "llm_requests_total",
				Help:      "Number of LLM requests by artifact and provider",
			},
			[]string{"artifact", "provider"},
		),
		ArtifactResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "artifact_results_total",
				Help:      "Generated artifacts by result",
			},
			[]string{"artifact", "result"}, // result: ok|validation|remote_unavailable|empty_reply|unknown
		),
		ArtifactDurations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "artifact_duration_seconds",
				Help:      "Duration of artifact generation",
				Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10), // 0.25s..128s
			},
			[]string{"artifact"},
		),

		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed.",
			},
			[]string{"method", "route"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		HTTPErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_errors_total",
				Help:      "Total number of HTTP request errors.",
			},
			[]string{"method", "route", "status"},
		),

		WebsocketConnections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "ws_connections",
				Help:      "Current number of open websocket connections",
			},
		),

		Errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Errors encountered in components",
			},
			[]string{"component", "type"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),

		m.LLMRequests,
		m.ArtifactResults,
		m.ArtifactDurations,

		m.HTTPRequests,
		m.HTTPDuration,
		m.HTTPErrors,

		m.WebsocketConnections,

		m.Errors,
	)

	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveArtifact implements artifact.Observer.
func (m *Metrics) ObserveArtifact(kind artifact.Kind, provider string, d time.Duration, err error) {
	name := kind.String()

	if provider != "" {
		m.IncLLMRequest(name, provider)
	}

	result := ResultOK
	if err != nil {
		result = string(llm.Classify(err))
		m.IncError("artifact", result)
	}

	m.ArtifactResults.WithLabelValues(name, result).Inc()
	m.ArtifactDurations.WithLabelValues(name).Observe(d.Seconds())
}

// LLM
func (m *Metrics) IncLLMRequest(artifact, provider string) {
	m.LLMRequests.WithLabelValues(artifact, provider).Inc()
}

// Websocket
func (m *Metrics) IncWSConnections() {
	m.WebsocketConnections.Inc()
}

func (m *Metrics) DecWSConnections() {
	m.WebsocketConnections.Dec()
}

// Errors
func (m *Metrics) IncError(component, typ string) {
	m.Errors.WithLabelValues(component, typ).Inc()
}

// Wrap records request count, duration and errors of next under route.
func (m *Metrics) Wrap(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		method := r.Method

		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		statusStr := strconv.Itoa(rw.status)

		m.HTTPRequests.WithLabelValues(method, route).Inc()
		m.HTTPDuration.WithLabelValues(method, route, statusStr).Observe(duration)

		if rw.status >= 400 {
			m.HTTPErrors.WithLabelValues(method, route, statusStr).Inc()
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	return r.ResponseWriter.Write(b)
}

// Hijack lets websocket upgrades pass through the recorder.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
