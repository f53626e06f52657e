// Package rag implements retrieval over a single document's chunk embeddings:
// cosine similarity scoring and Maximal Marginal Relevance selection, plus the
// Embedder interface that concrete backends (OpenAI, Ollama) satisfy so the
// answer layer never depends on a specific provider.
package rag

import (
	"context"
)

// Embedder is the interface for converting text into dense vector embeddings.
// Implementations must be safe to call from multiple goroutines.
type Embedder interface {
	// Embed converts a batch of texts into their corresponding embeddings.
	// The returned slice is parallel to the input slice.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// ScoredChunk is a retrieved chunk with its position in the document's chunk
// sequence and its cosine similarity to the query embedding.
type ScoredChunk struct {
	// Index is the chunk's position within the document (0-based).
	Index int

	// Text is the chunk content.
	Text string

	// Score is the raw cosine similarity against the query embedding,
	// in [-1, 1].
	Score float64
}
