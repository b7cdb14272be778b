package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the adapter. A nil *Metrics is
// valid and records nothing, so components can be built without metrics.
type Metrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	pipelineTotal    *prometheus.CounterVec
	pipelineDuration *prometheus.HistogramVec
	pagesRendered    prometheus.Counter
	conversions      *prometheus.CounterVec
	modelCalls       *prometheus.CounterVec
	malformedReplies *prometheus.CounterVec
}

// NewMetrics registers all collectors on a private registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "incluia",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total HTTP requests processed.",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "incluia",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		requestInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "incluia",
				Subsystem: "http",
				Name:      "in_flight_requests",
				Help:      "Number of in-flight HTTP requests.",
			},
		),
		pipelineTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "incluia",
				Subsystem: "pipeline",
				Name:      "runs_total",
				Help:      "Completed pipeline runs by flow and outcome.",
			},
			[]string{"flow", "outcome"},
		),
		pipelineDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "incluia",
				Subsystem: "pipeline",
				Name:      "duration_seconds",
				Help:      "Pipeline run duration in seconds.",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80, 160},
			},
			[]string{"flow"},
		),
		pagesRendered: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "incluia",
				Subsystem: "render",
				Name:      "pages_total",
				Help:      "Document pages rasterized.",
			},
		),
		conversions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "incluia",
				Subsystem: "office",
				Name:      "conversions_total",
				Help:      "Office document conversions by outcome.",
			},
			[]string{"outcome"},
		),
		modelCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "incluia",
				Subsystem: "model",
				Name:      "calls_total",
				Help:      "Generative model calls by kind and outcome.",
			},
			[]string{"kind", "outcome"},
		),
		malformedReplies: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "incluia",
				Subsystem: "model",
				Name:      "malformed_replies_total",
				Help:      "Replies that did not follow the section marker protocol.",
			},
			[]string{"flow"},
		),
	}

	registry.MustRegister(
		m.requestTotal,
		m.requestDuration,
		m.requestInFlight,
		m.pipelineTotal,
		m.pipelineDuration,
		m.pagesRendered,
		m.conversions,
		m.modelCalls,
		m.malformedReplies,
	)
	return m
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latencies. routePattern maps a
// request to a low-cardinality path label.
func (m *Metrics) Middleware(routePattern func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			m.requestInFlight.Inc()
			defer m.requestInFlight.Dec()

			next.ServeHTTP(recorder, r)

			path := r.URL.Path
			if routePattern != nil {
				if p := routePattern(r); p != "" {
					path = p
				}
			}
			m.requestTotal.WithLabelValues(r.Method, path, strconv.Itoa(recorder.statusCode)).Inc()
			m.requestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

func (m *Metrics) RecordPipeline(flow, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.pipelineTotal.WithLabelValues(flow, outcome).Inc()
	m.pipelineDuration.WithLabelValues(flow).Observe(d.Seconds())
}

func (m *Metrics) RecordPages(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.pagesRendered.Add(float64(n))
}

func (m *Metrics) RecordConversion(outcome string) {
	if m == nil {
		return
	}
	m.conversions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordModelCall(kind, outcome string) {
	if m == nil {
		return
	}
	m.modelCalls.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) RecordMalformedReply(flow string) {
	if m == nil {
		return
	}
	m.malformedReplies.WithLabelValues(flow).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
