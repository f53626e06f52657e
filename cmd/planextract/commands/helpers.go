package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/basinworks/planextract/internal/answer"
	"github.com/basinworks/planextract/internal/embedder"
	"github.com/basinworks/planextract/internal/ingestion"
	"github.com/basinworks/planextract/internal/provider"
	"github.com/basinworks/planextract/internal/rag"
	"github.com/basinworks/planextract/internal/store"
)

// stack holds the fully wired extraction stack shared by the ask, ingest,
// and serve commands.
type stack struct {
	// Store is the open SQLite document store.
	Store *store.SQLiteStore
	// Embedder is the batched embedding backend.
	Embedder rag.Embedder
	// EmbedModel is the resolved embedding model name.
	EmbedModel string
	// Pipeline is the ingestion pipeline.
	Pipeline *ingestion.Pipeline
	// Service is the section extraction service, nil when withModels is false.
	Service *answer.Service
}

// Close releases the store.
func (s *stack) Close() {
	_ = s.Store.Close()
}

// openStore resolves the database path (PLANEXTRACT_DB or the default under
// ~/.planextract) and opens the SQLite store.
func openStore(log *slog.Logger) (*store.SQLiteStore, error) {
	dbPath := os.Getenv("PLANEXTRACT_DB")
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store at %s: %w", dbPath, err)
	}
	log.Info("store opened", slog.String("path", dbPath))
	return st, nil
}

// buildStack wires the embedder, store, and ingestion pipeline, and — when
// withModels is true — the provider pair and extraction service.
func buildStack(ctx context.Context, log *slog.Logger, withModels bool) (*stack, error) {
	if err := embedder.Validate(log); err != nil {
		return nil, err
	}
	emb, err := embedder.NewFromEnv(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialise embedder: %w", err)
	}
	backend, embedModel := embedder.ModelFromEnv()
	log.Info("embedder initialised",
		slog.String("provider", backend),
		slog.String("model", embedModel),
	)

	st, err := openStore(log)
	if err != nil {
		return nil, err
	}

	pipeline, err := ingestion.NewPipeline(emb, st, &ingestion.Config{
		MaxTokens:     getEnvInt("CHUNK_MAX_TOKENS", 0),
		OverlapTokens: getEnvInt("CHUNK_OVERLAP_TOKENS", 0),
		MinTextChars:  getEnvInt("INGEST_MIN_TEXT_CHARS", 0),
		Model:         embedModel,
	})
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	s := &stack{
		Store:      st,
		Embedder:   emb,
		EmbedModel: embedModel,
		Pipeline:   pipeline,
	}

	if !withModels {
		return s, nil
	}

	pair, err := provider.NewPairFromEnv(ctx)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("initialise model provider: %w", err)
	}
	log.Info("provider initialised",
		slog.String("primary", pair.PrimaryName),
		slog.String("fallback", pair.FallbackName),
	)

	synthOpts := []answer.SynthesizerOption{}
	if pair.Fallback != nil {
		synthOpts = append(synthOpts, answer.WithFallback(pair.Fallback, pair.FallbackName))
	}
	if attempts := getEnvInt("MODEL_PRIMARY_ATTEMPTS", 0); attempts > 0 {
		synthOpts = append(synthOpts, answer.WithPrimaryAttempts(attempts))
	}
	synth := answer.NewSynthesizer(pair.Primary, pair.PrimaryName, synthOpts...)

	retrieverOpts := []rag.RetrieverOption{
		rag.WithTopK(getEnvInt("RETRIEVAL_TOP_K", rag.DefaultScoredTopK)),
	}
	if lambda := getEnvFloat("MMR_LAMBDA", 0); lambda > 0 {
		retrieverOpts = append(retrieverOpts, rag.WithLambda(lambda))
	}
	retriever := rag.NewRetriever(emb, retrieverOpts...)

	questions := store.NewQuestionCache(st, emb, embedModel)
	s.Service = answer.NewService(st, questions, retriever, synth,
		answer.WithContextTopK(getEnvInt("RETRIEVAL_CONTEXT_TOP_K", answer.DefaultContextTopK)),
	)

	return s, nil
}

// getEnvOrDefault returns the value of the named environment variable, or
// fallback if the variable is unset or empty.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the integer value of the named environment variable, or
// fallback if the variable is unset, empty, or not parseable.
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// getEnvFloat returns the float value of the named environment variable, or
// fallback if the variable is unset, empty, or not parseable.
func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
