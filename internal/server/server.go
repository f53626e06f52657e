// Package server implements the HTTP API for document ingestion and
// section extraction. The server is started by the `planextract serve`
// CLI command.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/basinworks/planextract/internal/answer"
	"github.com/basinworks/planextract/internal/ingestion"
	"github.com/basinworks/planextract/internal/logging"
	"github.com/basinworks/planextract/internal/store"
)

// New constructs a Server from the pipeline, answer service, document store,
// and config.
func New(pipeline *ingestion.Pipeline, svc *answer.Service, docs store.DocumentStore, cfg *Config) (*Server, error) {
	if pipeline == nil {
		return nil, fmt.Errorf("server: ingestion pipeline must not be nil")
	}
	if svc == nil {
		return nil, fmt.Errorf("server: answer service must not be nil")
	}
	if docs == nil {
		return nil, fmt.Errorf("server: document store must not be nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	return newServer(pipeline, svc, docs, cfg)
}

// newServer is the injectable constructor used by New and by tests, which
// pass fake ingestor/answerer implementations.
func newServer(ing ingestor, ans answerer, docs store.DocumentStore, cfg *Config) (*Server, error) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		// WriteTimeout must cover a full synthesis round trip, which can
		// include primary retries plus a fallback model call.
		cfg.WriteTimeout = 5 * time.Minute
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = defaultRateLimit
	}
	if cfg.RateBurst == 0 {
		cfg.RateBurst = defaultRateBurst
	}
	log := cfg.Logger
	if log == nil {
		log = logging.New()
	}
	var reg registerGatherer = cfg.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	s := &Server{
		ingestor: ing,
		answerer: ans,
		docs:     docs,
		cfg:      cfg,
		log:      log,
		pingers:  cfg.Pingers,
		metrics:  newServerMetrics(reg),
	}

	rl, stopRL := newRateLimiter(cfg.RateLimit, cfg.RateBurst, log)
	s.stopRL = stopRL

	if cfg.APIKey == "" {
		log.Warn("server: PLANEXTRACT_API_KEY not set, API authentication disabled")
	}

	// Protected API routes: auth, then rate limiting.
	api := http.NewServeMux()
	api.HandleFunc("POST /api/documents", s.handleIngest)
	api.HandleFunc("GET /api/documents", s.handleListDocuments)
	api.HandleFunc("DELETE /api/documents/{guid}", s.handleDeleteDocument)
	api.HandleFunc("POST /api/ask", s.handleAsk)
	protected := authMiddleware(cfg.APIKey, rl.middleware(api))

	mux := http.NewServeMux()
	mux.Handle("/api/", protected)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/ready", s.handleReady)
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      requestLogger(log, s.instrument(mux)),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s, nil
}

// Handler returns the server's root HTTP handler. Used by tests with
// httptest.NewServer.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening and serving HTTP requests. It blocks until the
// context is cancelled, then performs a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.log.Info("server: listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.stopRL()
		return fmt.Errorf("server: listen error: %w", err)
	case <-ctx.Done():
		defer s.stopRL()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: graceful shutdown failed: %w", err)
		}
		return nil
	}
}
