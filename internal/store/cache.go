package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/basinworks/planextract/internal/rag"
)

// EmbeddingCache reads and writes the durable question-embedding tier.
// *SQLiteStore satisfies it.
type EmbeddingCache interface {
	GetQuestionEmbedding(ctx context.Context, key, model string) ([]float32, error)
	PutQuestionEmbedding(ctx context.Context, key, model string, vec []float32) error
}

// QuestionCache resolves question embeddings through two tiers: an in-process
// map, then the durable store, computing via the embedder only on a full miss.
// Computed vectors are persisted before being returned; a persistence failure
// is surfaced to the caller so operators notice a broken cache instead of
// silently re-paying the embedding cost on every request.
//
// Safe for concurrent use. Concurrent misses for the same key may compute the
// embedding more than once; last write wins, which is harmless because the
// computation is deterministic per (key, model).
type QuestionCache struct {
	mu       sync.RWMutex
	local    map[string][]float32
	durable  EmbeddingCache
	embedder rag.Embedder
	model    string
}

// NewQuestionCache builds a QuestionCache over the durable tier and embedder.
// model namespaces the cache so switching embedding models never serves stale
// vectors.
func NewQuestionCache(durable EmbeddingCache, embedder rag.Embedder, model string) *QuestionCache {
	return &QuestionCache{
		local:    make(map[string][]float32),
		durable:  durable,
		embedder: embedder,
		model:    model,
	}
}

// Embedding returns the embedding for the question text identified by key,
// consulting the in-process tier, then the durable tier, then the embedder.
func (c *QuestionCache) Embedding(ctx context.Context, key, text string) ([]float32, error) {
	c.mu.RLock()
	vec, ok := c.local[key]
	c.mu.RUnlock()
	if ok {
		return vec, nil
	}

	vec, err := c.durable.GetQuestionEmbedding(ctx, key, c.model)
	if err == nil {
		c.put(key, vec)
		return vec, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	vecs, err := c.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("store: embed question %s: %w", key, err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("store: embed question %s: expected 1 vector, got %d", key, len(vecs))
	}
	vec = vecs[0]

	if err := c.durable.PutQuestionEmbedding(ctx, key, c.model, vec); err != nil {
		return nil, err
	}
	c.put(key, vec)
	return vec, nil
}

func (c *QuestionCache) put(key string, vec []float32) {
	c.mu.Lock()
	c.local[key] = vec
	c.mu.Unlock()
}
