// Package metrics provides Prometheus metrics collection for HTTP requests
// and the planning pipeline.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/luthortech/aiops-assistant/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	subsystem = "assistant"
)

// Metrics provides Prometheus metrics collection for HTTP requests and the
// planning pipeline stages.
type Metrics struct {
	reg *prometheus.Registry

	TotalHTTPRequestsCounter prometheus.Counter
	HTTPRequestsCounters     map[int]prometheus.Counter
	HTTPDurationHistogram    prometheus.Histogram

	PlansByIntentCounter     *prometheus.CounterVec
	RedactionsCounter        *prometheus.CounterVec
	AuditEventsCounter       prometheus.Counter
	AuditFailuresCounter     prometheus.Counter
	UnsupportedActionCounter prometheus.Counter

	customMetrics []prometheus.Collector

	stopChan chan os.Signal
	errChan  chan error
	log      logger.Logger
}

// NewMetrics creates a new Metrics instance with the specified collectors enabled.
func NewMetrics(httpCounters, pipelineCounters bool, l logger.Logger) Metrics {
	m := Metrics{
		reg: prometheus.NewRegistry(),
		log: l,
	}
	if httpCounters {
		m.TotalHTTPRequestsCounter = prometheus.NewCounter(prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      "total_http_requests",
			Help:      "Total HTTP requests",
		})
		m.reg.MustRegister(m.TotalHTTPRequestsCounter)
		m.HTTPRequestsCounters = make(map[int]prometheus.Counter)

		m.HTTPDurationHistogram = prometheus.NewHistogram(prometheus.HistogramOpts{
			Subsystem: subsystem,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.3, 0.5, 1.0, 3.0, 5.0},
		})
		m.reg.MustRegister(m.HTTPDurationHistogram)
	}
	if pipelineCounters {
		m.PlansByIntentCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      "plans_generated_total",
			Help:      "Total plans generated, labelled by routed intent",
		}, []string{"intent"})
		m.reg.MustRegister(m.PlansByIntentCounter)

		m.RedactionsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      "redactions_total",
			Help:      "Total redacted PII matches, labelled by pattern kind",
		}, []string{"kind"})
		m.reg.MustRegister(m.RedactionsCounter)

		m.AuditEventsCounter = prometheus.NewCounter(prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      "audit_events_total",
			Help:      "Total audit events appended",
		})
		m.reg.MustRegister(m.AuditEventsCounter)

		m.AuditFailuresCounter = prometheus.NewCounter(prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      "audit_failures_total",
			Help:      "Total audit append failures",
		})
		m.reg.MustRegister(m.AuditFailuresCounter)

		m.UnsupportedActionCounter = prometheus.NewCounter(prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      "unsupported_actions_total",
			Help:      "Total executions that hit an intent without a whitelisted action",
		})
		m.reg.MustRegister(m.UnsupportedActionCounter)
	}
	return m
}

// ObservePlan increments the plans counter for the given intent.
func (m *Metrics) ObservePlan(intent string) {
	if m.PlansByIntentCounter != nil {
		m.PlansByIntentCounter.WithLabelValues(intent).Inc()
	}
}

// ObserveRedactions adds redaction pattern counts by kind.
func (m *Metrics) ObserveRedactions(counts map[string]int) {
	if m.RedactionsCounter == nil {
		return
	}
	for kind, n := range counts {
		if n > 0 {
			m.RedactionsCounter.WithLabelValues(kind).Add(float64(n))
		}
	}
}

// ObserveAudit records an audit append attempt and whether it failed.
func (m *Metrics) ObserveAudit(failed bool) {
	if m.AuditEventsCounter == nil {
		return
	}
	m.AuditEventsCounter.Inc()
	if failed {
		m.AuditFailuresCounter.Inc()
	}
}

// ObserveUnsupportedAction records an execution that found no whitelisted action.
func (m *Metrics) ObserveUnsupportedAction() {
	if m.UnsupportedActionCounter != nil {
		m.UnsupportedActionCounter.Inc()
	}
}

// Listen starts the metrics HTTP server on the specified port.
func (m *Metrics) Listen(port int) {
	m.log.Info("Starting metrics listener", logger.IntField("port", port))
	mux := http.NewServeMux()
	mux.Handle("/", http.NotFoundHandler())
	mux.Handle("/metrics", promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{}))
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	errChan := make(chan error, 1)
	go func() {
		errChan <- server.ListenAndServe()
	}()
	go func() {
		<-sigChan
		m.log.Info("Stopping metrics listener")
		_ = server.Shutdown(context.Background())
	}()
	m.errChan = errChan
	m.stopChan = sigChan
}

// Stop shuts down the listener started by Listen. Safe to call when
// Listen was never started.
func (m *Metrics) Stop() {
	if m.stopChan == nil {
		return
	}
	select {
	case m.stopChan <- os.Interrupt:
	default:
	}
}

// ErrChan returns the listener error channel. It is nil until Listen is called.
func (m *Metrics) ErrChan() chan error {
	return m.errChan
}

// AddCustomMetric registers a custom Prometheus collector.
func (m *Metrics) AddCustomMetric(c prometheus.Collector) {
	m.customMetrics = append(m.customMetrics, c)
	m.reg.MustRegister(m.customMetrics[len(m.customMetrics)-1])
}

// IncrementHTTPResponseCounter increments the counter for the given HTTP status code.
func (m *Metrics) IncrementHTTPResponseCounter(code int) {
	_, ok := m.HTTPRequestsCounters[code]
	if !ok {
		m.HTTPRequestsCounters[code] = newTotalHTTPReqMetric(code)
		m.reg.MustRegister(m.HTTPRequestsCounters[code])
	}
	m.HTTPRequestsCounters[code].Inc()
}

func newTotalHTTPReqMetric(code int) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      fmt.Sprintf("total_%d_http_responses", code),
		Help:      fmt.Sprintf("Total %s HTTP responses returned", http.StatusText(code)),
	})
}

// HTTPMiddleware returns a chi-compatible middleware that tracks HTTP metrics
func (m *Metrics) HTTPMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			m.TotalHTTPRequestsCounter.Inc()

			rw := &responseWriter{ResponseWriter: w, statusCode: 200}

			next.ServeHTTP(rw, r)

			duration := time.Since(start)
			m.HTTPDurationHistogram.Observe(duration.Seconds())
			m.IncrementHTTPResponseCounter(rw.statusCode)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
