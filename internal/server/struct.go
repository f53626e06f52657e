package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/basinworks/planextract/internal/answer"
	"github.com/basinworks/planextract/internal/ingestion"
	"github.com/basinworks/planextract/internal/store"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1).
	Host string
	// Port is the TCP port to listen on (default: 8080).
	Port int
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration for writing the response.
	WriteTimeout time.Duration
	// ShutdownTimeout is the maximum duration for a graceful shutdown.
	ShutdownTimeout time.Duration
	// Logger is the structured logger used by the server and its handlers.
	// If nil, [logging.New] is used.
	Logger *slog.Logger
	// Pingers is the ordered list of dependency probes run by GET /api/ready.
	// If empty, /api/ready returns 200 with no checks (liveness-only mode).
	Pingers []Pinger
	// RateLimit is the sustained request rate allowed per IP on rate-limited
	// endpoints (requests/second). Defaults to 10 if zero.
	RateLimit float64
	// RateBurst is the maximum instantaneous burst per IP. Defaults to 20 if zero.
	RateBurst int
	// APIKey is the Bearer token required on all protected /api/* routes.
	// If empty, authentication is disabled (development mode).
	APIKey string
	// Registry is the Prometheus registry metrics are registered into.
	// If nil, a new private registry is created. Tests inject a fresh one.
	Registry registerGatherer
}

// ingestor is the interface handleIngest calls to process a document.
// *ingestion.Pipeline satisfies it; tests inject a fake.
type ingestor interface {
	// Ingest sanitizes, chunks, embeds, and stores the document text.
	Ingest(ctx context.Context, guid, text string) (*ingestion.Result, error)
	// IngestParagraphs does the same for a pre-segmented paragraph list.
	IngestParagraphs(ctx context.Context, guid string, paragraphs []string) (*ingestion.Result, error)
}

// answerer is the interface handleAsk calls to extract a section.
// *answer.Service satisfies it; tests inject a fake.
type answerer interface {
	// Ask extracts the section identified by key from the document.
	Ask(ctx context.Context, guid, key string) (*answer.Answer, error)
}

// Server is the HTTP server exposing the ingestion and extraction API.
type Server struct {
	// ingestor processes POST /api/documents bodies.
	ingestor ingestor
	// answerer resolves POST /api/ask requests.
	answerer answerer
	// docs serves the list and delete document routes.
	docs store.DocumentStore
	// cfg holds the resolved server configuration.
	cfg *Config
	// httpServer is the underlying net/http server.
	httpServer *http.Server
	// log is the structured logger for this server instance.
	log *slog.Logger
	// pingers is the ordered list of dependency probes for GET /api/ready.
	pingers []Pinger
	// metrics holds the Prometheus instruments owned by this server.
	metrics *serverMetrics
	// stopRL stops the rate limiter's background eviction goroutine on shutdown.
	stopRL func()
}

// ingestRequest is the JSON body for POST /api/documents.
type ingestRequest struct {
	// GUID is the caller-chosen document identifier.
	GUID string `json:"guid"`
	// Text is the full plain text of the watershed plan. Ignored when
	// Paragraphs is set.
	Text string `json:"text,omitempty"`
	// Paragraphs is a pre-segmented paragraph list, for callers whose
	// extraction step already knows the document structure.
	Paragraphs []string `json:"paragraphs,omitempty"`
}

// ingestResponse is the JSON response for POST /api/documents.
type ingestResponse struct {
	// GUID echoes the document identifier.
	GUID string `json:"guid"`
	// Paragraphs is the number of paragraphs derived from the text.
	Paragraphs int `json:"paragraphs"`
	// Chunks is the number of chunks embedded and stored.
	Chunks int `json:"chunks"`
	// Replaced is true when a previous version of the document was overwritten.
	Replaced bool `json:"replaced"`
}

// askRequest is the JSON body for POST /api/ask.
type askRequest struct {
	// GUID identifies the previously ingested document.
	GUID string `json:"guid"`
	// Key is the canonical section key (e.g. "goals", "bmps").
	Key string `json:"key"`
}

// askResponse is the JSON response for POST /api/ask.
type askResponse struct {
	// GUID echoes the document identifier.
	GUID string `json:"guid"`
	// Key is the canonical section key the answer is for.
	Key string `json:"key"`
	// Answer is the extracted value in the key's declared shape.
	Answer any `json:"answer"`
	// Sources are the retrieved chunks the answer drew from.
	Sources []answer.Source `json:"sources"`
	// Confidence is the retrieval-quality score in [0, 1].
	Confidence float64 `json:"confidence"`
	// Model names the model whose output was used, empty on degraded answers.
	Model string `json:"model,omitempty"`
}

// documentInfo is one entry in the GET /api/documents response.
type documentInfo struct {
	// GUID is the document identifier.
	GUID string `json:"guid"`
	// Chunks is the stored chunk count.
	Chunks int `json:"chunks"`
	// Model is the embedding model the document was indexed with.
	Model string `json:"model"`
	// UpdatedAt is when the document was last (re)ingested.
	UpdatedAt time.Time `json:"updatedAt"`
}

// errorResponse is the JSON body for all non-2xx API responses.
type errorResponse struct {
	// Error is the human-readable failure reason.
	Error string `json:"error"`
}
