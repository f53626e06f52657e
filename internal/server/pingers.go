package server

import (
	"context"
	"fmt"

	"github.com/basinworks/planextract/internal/rag"
	"github.com/basinworks/planextract/internal/store"
)

// StorePinger probes the document store with a cheap list query.
// It satisfies the Pinger interface and is used by GET /api/ready.
type StorePinger struct {
	// docs is the document store to probe.
	docs store.DocumentStore
}

// NewStorePinger constructs a StorePinger for the given document store.
func NewStorePinger(docs store.DocumentStore) *StorePinger {
	return &StorePinger{docs: docs}
}

// Name returns the dependency label used in readiness responses.
func (p *StorePinger) Name() string { return "store" }

// Ping runs a list query against the store. Returns nil if the database is
// reachable and the schema is intact, or a descriptive error otherwise.
func (p *StorePinger) Ping(ctx context.Context) error {
	if _, err := p.docs.ListDocuments(ctx); err != nil {
		return fmt.Errorf("list query failed: %w", err)
	}
	return nil
}

// EmbedderPinger probes an embedding backend by embedding a single short
// text. It satisfies the Pinger interface and is used by GET /api/ready.
type EmbedderPinger struct {
	// embedder is the embedding backend to probe.
	embedder rag.Embedder
	// name identifies the backend in readiness responses (e.g. "ollama").
	name string
}

// NewEmbedderPinger constructs an EmbedderPinger for the given backend.
func NewEmbedderPinger(e rag.Embedder, name string) *EmbedderPinger {
	return &EmbedderPinger{embedder: e, name: name}
}

// Name returns the backend label used in readiness responses.
func (p *EmbedderPinger) Name() string { return p.name }

// Ping embeds a single-word text against the backend. Returns nil when the
// backend responds with a non-empty vector.
func (p *EmbedderPinger) Ping(ctx context.Context) error {
	vecs, err := p.embedder.Embed(ctx, []string{"ping"})
	if err != nil {
		return fmt.Errorf("embed failed: %w", err)
	}
	if len(vecs) != 1 || len(vecs[0]) == 0 {
		return fmt.Errorf("embed returned no vector")
	}
	return nil
}
