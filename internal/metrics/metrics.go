// Package metrics exposes Prometheus instrumentation for evaluations.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Error kinds
const (
	ErrorKindInvalidInput = "invalid_input"
	ErrorKindInference    = "inference"
)

// Metrics holds the collectors of one process on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	evaluationsTotal   *prometheus.CounterVec
	overrideRulesTotal *prometheus.CounterVec
	errorsTotal        *prometheus.CounterVec
	evaluationDuration prometheus.Histogram
	artifactsLoaded    prometheus.Gauge
	requestTotal       *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	evaluationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mismatch",
			Name:      "evaluations_total",
			Help:      "Total completed evaluations by outcome and deciding stage.",
		},
		[]string{"outcome", "source"},
	)
	overrideRulesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mismatch",
			Name:      "override_rules_total",
			Help:      "Total safety override rule hits.",
		},
		[]string{"rule"},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mismatch",
			Name:      "evaluation_errors_total",
			Help:      "Total failed evaluations by error kind.",
		},
		[]string{"kind"},
	)
	evaluationDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "mismatch",
			Name:      "evaluation_duration_seconds",
			Help:      "Duration of a single evaluation in seconds.",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
		},
	)
	artifactsLoaded := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "mismatch",
			Name:      "artifacts_loaded",
			Help:      "1 when the classifier and scaler are loaded.",
		},
	)
	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mismatch",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"method", "path", "status"},
	)

	registry.MustRegister(
		evaluationsTotal,
		overrideRulesTotal,
		errorsTotal,
		evaluationDuration,
		artifactsLoaded,
		requestTotal,
	)

	return &Metrics{
		registry:           registry,
		evaluationsTotal:   evaluationsTotal,
		overrideRulesTotal: overrideRulesTotal,
		errorsTotal:        errorsTotal,
		evaluationDuration: evaluationDuration,
		artifactsLoaded:    artifactsLoaded,
		requestTotal:       requestTotal,
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordEvaluation counts a completed evaluation.
func (m *Metrics) RecordEvaluation(outcome, source string, rules []string, duration time.Duration) {
	m.evaluationsTotal.WithLabelValues(outcome, source).Inc()
	for _, rule := range rules {
		m.overrideRulesTotal.WithLabelValues(rule).Inc()
	}
	m.evaluationDuration.Observe(duration.Seconds())
}

// RecordError counts a failed evaluation.
func (m *Metrics) RecordError(kind string) {
	if kind == "" {
		kind = "unknown"
	}
	m.errorsTotal.WithLabelValues(kind).Inc()
}

// SetArtifactsLoaded flips the artifacts gauge.
func (m *Metrics) SetArtifactsLoaded(loaded bool) {
	if loaded {
		m.artifactsLoaded.Set(1)
		return
	}
	m.artifactsLoaded.Set(0)
}

// Middleware counts requests by method, path and status.
// Paths outside the served routes share the "other" label.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(recorder, r)
		m.requestTotal.WithLabelValues(
			normalizeMethod(r.Method),
			normalizePath(r.URL.Path),
			strconv.Itoa(recorder.statusCode),
		).Inc()
	})
}

func normalizePath(path string) string {
	switch strings.TrimSuffix(path, "/") {
	case "":
		return "/"
	case "/health":
		return "/health"
	case "/metrics":
		return "/metrics"
	default:
		return "other"
	}
}

func normalizeMethod(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodOptions:
		return method
	default:
		return "other"
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
