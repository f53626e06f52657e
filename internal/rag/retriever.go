package rag

import (
	"context"
	"fmt"
)

// Retriever ranks a document's chunks against a query embedding using MMR.
// It is stateless apart from its configuration and safe for concurrent use.
type Retriever struct {
	embedder Embedder
	topK     int
	lambda   float64
}

// RetrieverOption configures a Retriever.
type RetrieverOption func(*Retriever)

// WithTopK overrides the default number of chunks selected.
func WithTopK(k int) RetrieverOption {
	return func(r *Retriever) {
		if k > 0 {
			r.topK = k
		}
	}
}

// WithLambda overrides the MMR relevance/diversity trade-off. Values are
// clamped to [0, 1].
func WithLambda(l float64) RetrieverOption {
	return func(r *Retriever) {
		if l < 0 {
			l = 0
		}
		if l > 1 {
			l = 1
		}
		r.lambda = l
	}
}

// NewRetriever builds a Retriever around the given embedder with the default
// topK and lambda unless overridden by options.
func NewRetriever(embedder Embedder, opts ...RetrieverOption) *Retriever {
	r := &Retriever{
		embedder: embedder,
		topK:     DefaultTopK,
		lambda:   DefaultLambda,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve embeds the query text and selects up to topK chunks by MMR over the
// pre-computed chunk embeddings. chunks and embeddings must be parallel slices
// as produced at ingestion time. The result is in selection order with raw
// cosine scores attached.
func (r *Retriever) Retrieve(ctx context.Context, query string, chunks []string, embeddings [][]float32) ([]ScoredChunk, error) {
	if len(chunks) != len(embeddings) {
		return nil, fmt.Errorf("rag: chunk/embedding count mismatch: %d chunks, %d embeddings", len(chunks), len(embeddings))
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	vecs, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("rag: embed query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("rag: embed query: expected 1 vector, got %d", len(vecs))
	}

	return r.RetrieveWithEmbedding(vecs[0], chunks, embeddings)
}

// RetrieveWithEmbedding runs the MMR selection against an already-embedded
// query vector, letting callers reuse cached question embeddings.
func (r *Retriever) RetrieveWithEmbedding(query []float32, chunks []string, embeddings [][]float32) ([]ScoredChunk, error) {
	if len(chunks) != len(embeddings) {
		return nil, fmt.Errorf("rag: chunk/embedding count mismatch: %d chunks, %d embeddings", len(chunks), len(embeddings))
	}
	for i, e := range embeddings {
		if len(e) != len(query) {
			return nil, fmt.Errorf("rag: embedding %d has dimension %d, query has %d", i, len(e), len(query))
		}
	}

	picked := MMR(query, embeddings, r.topK, r.lambda)
	out := make([]ScoredChunk, 0, len(picked))
	for _, s := range picked {
		out = append(out, ScoredChunk{
			Index: s.Index,
			Text:  chunks[s.Index],
			Score: s.Relevance,
		})
	}
	return out, nil
}
