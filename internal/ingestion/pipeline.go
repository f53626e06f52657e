// Package ingestion implements the document ingestion pipeline: raw plan text
// is sanitized, split into paragraphs, chunked under a token budget, embedded,
// and stored whole under its GUID. Re-ingesting a GUID replaces the previous
// version atomically — either every chunk and embedding lands or none do.
package ingestion

import (
	"context"
	"errors"
	"fmt"

	"github.com/basinworks/planextract/internal/chunker"
	"github.com/basinworks/planextract/internal/rag"
	"github.com/basinworks/planextract/internal/store"
)

// ErrMalformedInput is returned when a document cannot be ingested: empty
// GUID, empty text, or text below the minimum length threshold (typically a
// failed OCR pass producing near-empty output).
var ErrMalformedInput = errors.New("ingestion: malformed input")

// Config holds the configuration for the ingestion pipeline.
type Config struct {
	// MaxTokens is the per-chunk token budget. Defaults to the chunker default.
	MaxTokens int

	// OverlapTokens is the cross-chunk overlap budget. Defaults to the
	// chunker default.
	OverlapTokens int

	// MinTextChars rejects documents whose sanitized text is shorter than
	// this, catching empty OCR output before it wastes embedding calls.
	// Defaults to 200 if zero.
	MinTextChars int

	// Model is the embedding model name recorded with the stored document.
	Model string
}

// Result summarizes a successful ingestion.
type Result struct {
	// GUID is the document identifier.
	GUID string
	// Paragraphs is the number of paragraphs derived from the text.
	Paragraphs int
	// Chunks is the number of chunks embedded and stored.
	Chunks int
	// Replaced is true when a previous version of the document existed.
	Replaced bool
}

// Pipeline orchestrates the sanitize → chunk → embed → store flow.
type Pipeline struct {
	// embedder converts chunk texts into dense vector embeddings.
	embedder rag.Embedder

	// store persists the chunked, embedded document.
	store store.DocumentStore

	// cfg holds the resolved pipeline configuration.
	cfg *Config
}

// NewPipeline constructs a Pipeline from the provided dependencies and config.
func NewPipeline(embedder rag.Embedder, docs store.DocumentStore, cfg *Config) (*Pipeline, error) {
	if embedder == nil {
		return nil, fmt.Errorf("ingestion: embedder must not be nil")
	}
	if docs == nil {
		return nil, fmt.Errorf("ingestion: store must not be nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = chunker.DefaultMaxTokens
	}
	if cfg.OverlapTokens < 0 {
		cfg.OverlapTokens = 0
	}
	if cfg.OverlapTokens == 0 {
		cfg.OverlapTokens = chunker.DefaultOverlapTokens
	}
	if cfg.OverlapTokens >= cfg.MaxTokens {
		cfg.OverlapTokens = cfg.MaxTokens / 5
	}
	if cfg.MinTextChars <= 0 {
		cfg.MinTextChars = 200
	}

	return &Pipeline{
		embedder: embedder,
		store:    docs,
		cfg:      cfg,
	}, nil
}

// Ingest processes raw document text under the given GUID. Paragraphs are
// derived from blank-line breaks in the sanitized text.
func (p *Pipeline) Ingest(ctx context.Context, guid, text string) (*Result, error) {
	clean := Sanitize(text)
	paragraphs := chunker.Paragraphs(clean)
	return p.IngestParagraphs(ctx, guid, paragraphs)
}

// IngestParagraphs processes a pre-segmented paragraph sequence under the
// given GUID. Callers with structured extraction output (e.g. per-page PDF
// text) use this to skip blank-line derivation.
func (p *Pipeline) IngestParagraphs(ctx context.Context, guid string, paragraphs []string) (*Result, error) {
	if guid == "" {
		return nil, fmt.Errorf("%w: empty guid", ErrMalformedInput)
	}

	total := 0
	for _, par := range paragraphs {
		total += len(par)
	}
	if total < p.cfg.MinTextChars {
		return nil, fmt.Errorf("%w: document %s has %d characters of text, need at least %d (empty or failed OCR?)",
			ErrMalformedInput, guid, total, p.cfg.MinTextChars)
	}

	chunks := chunker.Chunk(paragraphs, chunker.Options{
		MaxTokens:     p.cfg.MaxTokens,
		OverlapTokens: p.cfg.OverlapTokens,
	})
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: document %s produced no chunks", ErrMalformedInput, guid)
	}

	embeddings, err := p.embedder.Embed(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("ingestion: embed document %s: %w", guid, err)
	}
	if len(embeddings) != len(chunks) {
		return nil, fmt.Errorf("ingestion: document %s: %d chunks but %d embeddings", guid, len(chunks), len(embeddings))
	}

	replaced := true
	if _, err := p.store.GetDocument(ctx, guid); errors.Is(err, store.ErrNotFound) {
		replaced = false
	}

	doc := &store.Document{
		GUID:       guid,
		Chunks:     chunks,
		Embeddings: embeddings,
		Model:      p.cfg.Model,
	}
	if err := p.store.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("ingestion: store document %s: %w", guid, err)
	}

	return &Result{
		GUID:       guid,
		Paragraphs: len(paragraphs),
		Chunks:     len(chunks),
		Replaced:   replaced,
	}, nil
}
