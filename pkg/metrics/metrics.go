// Package metrics provides Prometheus metrics collection for the HTTP
// surface and the tool-calling chat path.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lewisedginton/local_places/pkg/logger"
)

const subsystem = "localplaces"

// Tool execution outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics collects Prometheus metrics for HTTP requests, chat turns and
// tool executions.
type Metrics struct {
	reg *prometheus.Registry

	TotalHTTPRequestsCounter prometheus.Counter
	HTTPRequestsCounters     map[int]prometheus.Counter
	HTTPDurationHistogram    prometheus.Histogram

	ChatTurnsCounter      prometheus.Counter
	OracleRoundsHistogram prometheus.Histogram
	ToolExecutionsCounter *prometheus.CounterVec
	ActiveSessionsGauge   prometheus.Gauge

	server *http.Server
	log    logger.Logger
}

// NewMetrics creates a new Metrics instance with all collectors registered.
func NewMetrics(l logger.Logger) *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		log: l,
	}

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
		Buckets:   []float64{0.1, 0.3, 0.5, 0.7, 1.0, 3.0, 5.0, 7.0, 10.0},
	})
	m.reg.MustRegister(m.HTTPDurationHistogram)

	m.ChatTurnsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      "total_chat_turns",
		Help:      "Total completed chat turns",
	})
	m.reg.MustRegister(m.ChatTurnsCounter)

	m.OracleRoundsHistogram = prometheus.NewHistogram(prometheus.HistogramOpts{
		Subsystem: subsystem,
		Name:      "oracle_rounds_per_turn",
		Help:      "Model round-trips needed to finish a chat turn",
		Buckets:   []float64{1, 2, 3, 4, 5, 7, 10},
	})
	m.reg.MustRegister(m.OracleRoundsHistogram)

	m.ToolExecutionsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      "tool_executions_total",
		Help:      "Tool executions by tool name and outcome",
	}, []string{"tool", "outcome"})
	m.reg.MustRegister(m.ToolExecutionsCounter)

	m.ActiveSessionsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Subsystem: subsystem,
		Name:      "active_chat_sessions",
		Help:      "Chat sessions currently held in memory",
	})
	m.reg.MustRegister(m.ActiveSessionsGauge)

	return m
}

// Listen starts the metrics HTTP server on the specified port.
func (m *Metrics) Listen(port int) chan error {
	m.log.Info("Starting metrics listener", logger.IntField("port", port))

	mux := http.NewServeMux()
	mux.Handle("/", http.NotFoundHandler())
	mux.Handle("/metrics", promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{}))

	m.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := m.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()
	return errChan
}

// Shutdown stops the metrics listener.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m.server == nil {
		return nil
	}
	return m.server.Shutdown(ctx)
}

// RecordChatTurn records a completed chat turn and the model round-trips
// it took.
func (m *Metrics) RecordChatTurn(rounds int) {
	m.ChatTurnsCounter.Inc()
	m.OracleRoundsHistogram.Observe(float64(rounds))
}

// RecordToolExecution records one tool execution by name and outcome.
func (m *Metrics) RecordToolExecution(tool string, success bool) {
	outcome := OutcomeSuccess
	if !success {
		outcome = OutcomeFailure
	}
	m.ToolExecutionsCounter.WithLabelValues(tool, outcome).Inc()
}

// SetActiveSessions records the current in-memory session count.
func (m *Metrics) SetActiveSessions(n int) {
	m.ActiveSessionsGauge.Set(float64(n))
}

// IncrementHTTPResponseCounter increments the counter for the given HTTP status code.
func (m *Metrics) IncrementHTTPResponseCounter(code int) {
	_, ok := m.HTTPRequestsCounters[code]
	if !ok {
		m.HTTPRequestsCounters[code] = prometheus.NewCounter(prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      fmt.Sprintf("total_%d_http_responses", code),
			Help:      fmt.Sprintf("Total %s HTTP responses returned", http.StatusText(code)),
		})
		m.reg.MustRegister(m.HTTPRequestsCounters[code])
	}
	m.HTTPRequestsCounters[code].Inc()
}

// HTTPMiddleware returns a chi-compatible middleware that tracks HTTP metrics
func (m *Metrics) HTTPMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			m.TotalHTTPRequestsCounter.Inc()

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			m.HTTPDurationHistogram.Observe(time.Since(start).Seconds())
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
