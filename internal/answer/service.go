package answer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/basinworks/planextract/internal/logging"
	"github.com/basinworks/planextract/internal/rag"
	"github.com/basinworks/planextract/internal/section"
	"github.com/basinworks/planextract/internal/store"
)

const (
	// DefaultContextTopK is how many of the retrieved chunks are passed to
	// the model as generation context. The remaining retrieved chunks still
	// contribute to sources and confidence.
	DefaultContextTopK = 5

	// snippetChars caps the length of each source snippet.
	snippetChars = 400
)

// Source points back at the document chunk an answer drew from.
type Source struct {
	// Snippet is the first part of the chunk text.
	Snippet string `json:"snippet"`
	// Index is the chunk's position in the document.
	Index int `json:"index"`
}

// Answer is the full extraction result for one (document, section) pair.
type Answer struct {
	// Key is the canonical section key.
	Key section.Key `json:"-"`
	// Answer is the extracted value in the key's declared shape (array,
	// object, or string), unwrapped from the normalizer's envelope.
	Answer any `json:"answer"`
	// Sources are the retrieved chunks, in selection order.
	Sources []Source `json:"sources"`
	// Confidence is the retrieval-quality score in [0, 1].
	Confidence float64 `json:"confidence"`
	// Model is the model whose output was used, empty when extraction
	// degraded to the empty shape.
	Model string `json:"model,omitempty"`
}

// Service answers section questions against ingested documents: it resolves
// the question embedding through the cache, ranks the document's chunks,
// synthesizes the section value, and scores confidence.
type Service struct {
	docs        store.DocumentStore
	questions   *store.QuestionCache
	retriever   *rag.Retriever
	synth       *Synthesizer
	contextTopK int
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithContextTopK overrides how many retrieved chunks reach the model.
func WithContextTopK(k int) ServiceOption {
	return func(s *Service) {
		if k > 0 {
			s.contextTopK = k
		}
	}
}

// NewService wires the answer service from its collaborators.
func NewService(docs store.DocumentStore, questions *store.QuestionCache, retriever *rag.Retriever, synth *Synthesizer, opts ...ServiceOption) *Service {
	s := &Service{
		docs:        docs,
		questions:   questions,
		retriever:   retriever,
		synth:       synth,
		contextTopK: DefaultContextTopK,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ask extracts the section identified by rawKey from the document identified
// by guid. Unknown keys fail with section.ErrUnknownKey; missing documents
// fail with store.ErrNotFound.
func (s *Service) Ask(ctx context.Context, guid, rawKey string) (*Answer, error) {
	key, err := section.Parse(rawKey)
	if err != nil {
		return nil, err
	}

	doc, err := s.docs.GetDocument(ctx, guid)
	if err != nil {
		return nil, err
	}

	qvec, err := s.questions.Embedding(ctx, string(key), key.EmbeddingText())
	if err != nil {
		return nil, fmt.Errorf("answer: question embedding for %s: %w", key, err)
	}

	scored, err := s.retriever.RetrieveWithEmbedding(qvec, doc.Chunks, doc.Embeddings)
	if err != nil {
		return nil, fmt.Errorf("answer: retrieve for %s/%s: %w", guid, key, err)
	}

	contextChunks := make([]string, 0, s.contextTopK)
	sources := make([]Source, 0, len(scored))
	scores := make([]float64, 0, len(scored))
	for i, sc := range scored {
		if i < s.contextTopK {
			contextChunks = append(contextChunks, sc.Text)
		}
		sources = append(sources, Source{Snippet: snippet(sc.Text), Index: sc.Index})
		scores = append(scores, sc.Score)
	}

	syn, err := s.synth.Synthesize(ctx, key, key.Question(), contextChunks)
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("answer: section extracted",
		slog.String("guid", guid),
		slog.String("key", string(key)),
		slog.String("model", syn.Model),
		slog.Int("model_calls", syn.Calls),
		slog.Int("sources", len(sources)),
	)

	return &Answer{
		Key:        key,
		Answer:     syn.Value,
		Sources:    sources,
		Confidence: Confidence(scores),
		Model:      syn.Model,
	}, nil
}

// snippet returns the first snippetChars characters of text without splitting
// a multi-byte rune.
func snippet(text string) string {
	if len(text) <= snippetChars {
		return text
	}
	runes := []rune(text)
	if len(runes) <= snippetChars {
		return text
	}
	return string(runes[:snippetChars])
}
