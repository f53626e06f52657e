// Package server — metrics.go registers all Prometheus metrics for the HTTP
// server and exposes helpers used by handlers and middleware.
package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values shared by the ask and ingest counters.
const (
	outcomeOK         = "ok"
	outcomeBadRequest = "bad_request"
	outcomeNotFound   = "not_found"
	outcomeError      = "error"
)

// labelHandler is the "handler" label used to partition HTTP metrics by the
// matched route pattern rather than the raw URL path.
const labelHandler = "handler"

// registerGatherer combines registration and gathering so a single registry
// can back both metric creation and the /metrics endpoint.
type registerGatherer interface {
	prometheus.Registerer
	prometheus.Gatherer
}

// serverMetrics holds all Prometheus metrics owned by the HTTP server.
// A single instance is created per server and registered against an injected
// registry so that tests stay hermetic.
type serverMetrics struct {
	// askRequestsTotal counts completed /api/ask requests, partitioned by
	// outcome: "ok", "bad_request", "not_found", or "error".
	askRequestsTotal *prometheus.CounterVec

	// askDurationSeconds records the wall-clock duration of successful
	// /api/ask requests, including all model retries and fallback calls.
	askDurationSeconds prometheus.Histogram

	// ingestRequestsTotal counts completed /api/documents ingest requests,
	// partitioned by outcome.
	ingestRequestsTotal *prometheus.CounterVec

	// ingestDurationSeconds records the duration of successful ingests.
	ingestDurationSeconds prometheus.Histogram

	// ingestChunks records the chunk count per successfully ingested document.
	ingestChunks prometheus.Histogram

	// httpRequestsTotal counts all HTTP requests handled by the mux,
	// partitioned by method, route pattern, and status code.
	httpRequestsTotal *prometheus.CounterVec

	// httpDurationSeconds records the latency of all HTTP requests.
	httpDurationSeconds *prometheus.HistogramVec
}

// newServerMetrics registers all server metrics against reg and returns the
// populated serverMetrics. promauto.With(reg) is used so that each call
// registers into the provided registry rather than the global default.
func newServerMetrics(reg prometheus.Registerer) *serverMetrics {
	factory := promauto.With(reg)

	return &serverMetrics{
		askRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "planextract",
			Subsystem: "ask",
			Name:      "requests_total",
			Help:      "Total number of /api/ask requests completed, partitioned by outcome.",
		}, []string{"outcome"}),

		askDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "planextract",
			Subsystem: "ask",
			Name:      "duration_seconds",
			Help:      "Duration of successful /api/ask requests including model retries.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		}),

		ingestRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "planextract",
			Subsystem: "ingest",
			Name:      "requests_total",
			Help:      "Total number of document ingest requests completed, partitioned by outcome.",
		}, []string{"outcome"}),

		ingestDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "planextract",
			Subsystem: "ingest",
			Name:      "duration_seconds",
			Help:      "Duration of successful document ingests including embedding calls.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 300},
		}),

		ingestChunks: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "planextract",
			Subsystem: "ingest",
			Name:      "chunks",
			Help:      "Number of chunks produced per successfully ingested document.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),

		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "planextract",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled by the server, partitioned by method, handler, and status code.",
		}, []string{"method", labelHandler, "code"}),

		httpDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "planextract",
			Subsystem: "http",
			Name:      "duration_seconds",
			Help:      "Latency of HTTP requests handled by the server.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", labelHandler}),
	}
}

// instrument wraps next to record per-request HTTP metrics. The handler label
// is the mux route pattern (populated by ServeMux during dispatch), which
// keeps metric cardinality bounded regardless of request paths.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		start := time.Now()
		next.ServeHTTP(rw, r)
		elapsed := time.Since(start)

		pattern := r.Pattern
		if pattern == "" {
			pattern = "unmatched"
		}
		s.metrics.httpRequestsTotal.
			WithLabelValues(r.Method, pattern, strconv.Itoa(rw.status)).Inc()
		s.metrics.httpDurationSeconds.
			WithLabelValues(r.Method, pattern).Observe(elapsed.Seconds())
	})
}
