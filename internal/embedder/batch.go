package embedder

import (
	"context"
	"fmt"

	"github.com/basinworks/planextract/internal/rag"
)

// DefaultBatchSize bounds the number of texts sent to a backend per request.
// Embedding APIs reject or silently truncate oversized input arrays.
const DefaultBatchSize = 64

// Batched wraps an Embedder and splits large inputs into fixed-size batches,
// preserving input order across batch boundaries. A failure in any batch fails
// the whole call.
type Batched struct {
	inner rag.Embedder
	size  int
}

// NewBatched wraps inner with batching. A non-positive size falls back to
// DefaultBatchSize.
func NewBatched(inner rag.Embedder, size int) *Batched {
	if size <= 0 {
		size = DefaultBatchSize
	}
	return &Batched{inner: inner, size: size}
}

// Embed converts texts into embeddings, issuing one backend call per batch of
// at most the configured size. The returned slice is parallel to the input.
func (b *Batched) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) <= b.size {
		return b.inner.Embed(ctx, texts)
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += b.size {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("embedder: batch aborted: %w", err)
		}
		end := start + b.size
		if end > len(texts) {
			end = len(texts)
		}
		vecs, err := b.inner.Embed(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embedder: batch %d-%d: %w", start, end, err)
		}
		if len(vecs) != end-start {
			return nil, fmt.Errorf("embedder: batch %d-%d: expected %d vectors, got %d", start, end, end-start, len(vecs))
		}
		out = append(out, vecs...)
	}
	return out, nil
}
