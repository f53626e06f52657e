package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloudwego/eino/callbacks"
	"github.com/spf13/cobra"

	"github.com/basinworks/planextract/internal/embedder"
	"github.com/basinworks/planextract/internal/logging"
	"github.com/basinworks/planextract/internal/server"
	"github.com/basinworks/planextract/internal/tracing"
)

// NewServeCmd constructs the `planextract serve` command, which starts the
// HTTP API for document ingestion and section extraction.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the planextract HTTP API",
		Long: `Start the planextract HTTP server on localhost.

The server exposes:
  POST   /api/documents        ingest a plan document
  GET    /api/documents        list ingested documents
  DELETE /api/documents/{guid} delete a document
  POST   /api/ask              extract a section from a document
  GET    /api/health           liveness probe
  GET    /api/ready            readiness probe (store + embedder)
  GET    /metrics              Prometheus metrics

Set PLANEXTRACT_API_KEY to require Bearer authentication on /api routes.

Examples:
  planextract serve
  planextract serve --port 9090
  MODEL_PROVIDER=azure planextract serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			log.Info("serve starting", slog.String("provider", os.Getenv("MODEL_PROVIDER")))

			// Setup Langfuse tracing — opt-in, no-op if keys are absent.
			handler, flush, ok := tracing.Setup()
			if ok {
				callbacks.AppendGlobalHandlers(handler)
				defer flush()
				log.Info("langfuse tracing enabled")
			} else {
				log.Info("langfuse tracing disabled", slog.String("reason", "LANGFUSE_PUBLIC_KEY not set"))
			}

			s, err := buildStack(ctx, log, true)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer s.Close()

			backend, _ := embedder.ModelFromEnv()
			pingers := []server.Pinger{
				server.NewStorePinger(s.Store),
				server.NewEmbedderPinger(s.Embedder, backend),
			}

			srv, err := server.New(s.Pipeline, s.Service, s.Store, &server.Config{
				Host:      host,
				Port:      port,
				Logger:    log,
				Pingers:   pingers,
				APIKey:    os.Getenv("PLANEXTRACT_API_KEY"),
				RateLimit: getEnvFloat("SERVER_RATE_LIMIT", 0),
				RateBurst: getEnvInt("SERVER_RATE_BURST", 0),
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", getEnvOrDefault("SERVER_HOST", "127.0.0.1"), "Host address to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", getEnvInt("SERVER_PORT", 8080), "TCP port to listen on")

	return cmd
}
