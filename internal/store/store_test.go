package store

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// openTestStore opens an in-memory SQLiteStore for use in tests.
func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testDoc(guid string, n int) *Document {
	doc := &Document{GUID: guid, Model: "nomic-embed-text"}
	for i := 0; i < n; i++ {
		doc.Chunks = append(doc.Chunks, "chunk text")
		doc.Embeddings = append(doc.Embeddings, []float32{float32(i), 1})
	}
	return doc
}

func Test_Store_SaveAndGetDocument(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	want := &Document{
		GUID:       "plan-001",
		Chunks:     []string{"first chunk", "second chunk"},
		Embeddings: [][]float32{{0.1, 0.2}, {0.3, 0.4}},
		Model:      "nomic-embed-text",
	}
	if err := s.SaveDocument(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.GetDocument(ctx, "plan-001")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Chunks) != 2 || got.Chunks[1] != "second chunk" {
		t.Errorf("chunks = %v", got.Chunks)
	}
	if len(got.Embeddings) != 2 || got.Embeddings[1][1] != 0.4 {
		t.Errorf("embeddings = %v", got.Embeddings)
	}
	if got.Model != "nomic-embed-text" {
		t.Errorf("model = %q", got.Model)
	}
}

func Test_Store_GetMissingDocument(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	_, err := s.GetDocument(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}

func Test_Store_SaveReplacesWholeDocument(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveDocument(ctx, testDoc("plan-002", 5)); err != nil {
		t.Fatalf("save v1: %v", err)
	}
	if err := s.SaveDocument(ctx, testDoc("plan-002", 2)); err != nil {
		t.Fatalf("save v2: %v", err)
	}

	got, err := s.GetDocument(ctx, "plan-002")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Chunks) != 2 {
		t.Errorf("re-ingest should replace all chunks, got %d", len(got.Chunks))
	}
}

func Test_Store_SaveRejectsMismatchedSlices(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	doc := &Document{
		GUID:       "bad",
		Chunks:     []string{"a", "b"},
		Embeddings: [][]float32{{1}},
		Model:      "m",
	}
	if err := s.SaveDocument(context.Background(), doc); err == nil {
		t.Error("want error for chunk/embedding count mismatch")
	}
}

func Test_Store_DeleteDocument(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveDocument(ctx, testDoc("plan-003", 1)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.DeleteDocument(ctx, "plan-003"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetDocument(ctx, "plan-003"); !errors.Is(err, ErrNotFound) {
		t.Errorf("want ErrNotFound after delete, got %v", err)
	}
	if err := s.DeleteDocument(ctx, "plan-003"); !errors.Is(err, ErrNotFound) {
		t.Errorf("want ErrNotFound deleting twice, got %v", err)
	}
}

func Test_Store_ListDocuments(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveDocument(ctx, testDoc("plan-a", 3)); err != nil {
		t.Fatalf("save a: %v", err)
	}
	if err := s.SaveDocument(ctx, testDoc("plan-b", 1)); err != nil {
		t.Fatalf("save b: %v", err)
	}

	infos, err := s.ListDocuments(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("want 2 documents, got %d", len(infos))
	}
	counts := map[string]int{}
	for _, info := range infos {
		counts[info.GUID] = info.ChunkCount
	}
	if counts["plan-a"] != 3 || counts["plan-b"] != 1 {
		t.Errorf("chunk counts = %v", counts)
	}
}

func Test_Store_ConcurrentReadsDuringReplace(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveDocument(ctx, testDoc("plan-hot", 4)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 64)

	// Readers must always observe a consistent document: chunks and
	// embeddings aligned, from either the old or the new version.
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 20 {
				doc, err := s.GetDocument(ctx, "plan-hot")
				if err != nil {
					errs <- err
					return
				}
				if len(doc.Chunks) != len(doc.Embeddings) {
					errs <- errors.New("torn read: chunk/embedding mismatch")
					return
				}
				if len(doc.Chunks) != 4 && len(doc.Chunks) != 7 {
					errs <- errors.New("torn read: unexpected chunk count")
					return
				}
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for range 10 {
			if err := s.SaveDocument(ctx, testDoc("plan-hot", 7)); err != nil {
				errs <- err
				return
			}
			if err := s.SaveDocument(ctx, testDoc("plan-hot", 4)); err != nil {
				errs <- err
				return
			}
		}
	}()

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func Test_Store_QuestionEmbeddingRoundTrip(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.GetQuestionEmbedding(ctx, "goals", "m1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound for cold cache, got %v", err)
	}

	want := []float32{0.5, -0.25, 1}
	if err := s.PutQuestionEmbedding(ctx, "goals", "m1", want); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.GetQuestionEmbedding(ctx, "goals", "m1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 3 || got[1] != -0.25 {
		t.Errorf("embedding = %v", got)
	}

	// Same key under a different model is a separate entry.
	if _, err := s.GetQuestionEmbedding(ctx, "goals", "m2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("want ErrNotFound for other model, got %v", err)
	}
}

// countingEmbedder counts Embed calls so cache hit behavior is observable.
type countingEmbedder struct {
	mu    sync.Mutex
	calls int
	vec   []float32
	err   error
}

func (c *countingEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	c.calls++
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = c.vec
	}
	return out, nil
}

func (c *countingEmbedder) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func Test_QuestionCache_ComputesOnceThenHits(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	emb := &countingEmbedder{vec: []float32{1, 2}}
	cache := NewQuestionCache(s, emb, "m1")
	ctx := context.Background()

	for range 3 {
		vec, err := cache.Embedding(ctx, "goals", "What are the goals?")
		if err != nil {
			t.Fatalf("embedding: %v", err)
		}
		if len(vec) != 2 {
			t.Fatalf("vec = %v", vec)
		}
	}
	if emb.count() != 1 {
		t.Errorf("want 1 embed call, got %d", emb.count())
	}
}

func Test_QuestionCache_ReadsDurableTier(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.PutQuestionEmbedding(ctx, "summary", "m1", []float32{9}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// A fresh cache with a failing embedder must still serve the durable hit.
	emb := &countingEmbedder{err: errors.New("should not be called")}
	cache := NewQuestionCache(s, emb, "m1")

	vec, err := cache.Embedding(ctx, "summary", "Summarize the plan.")
	if err != nil {
		t.Fatalf("embedding: %v", err)
	}
	if len(vec) != 1 || vec[0] != 9 {
		t.Errorf("vec = %v", vec)
	}
}

// failingCache fails writes to verify persistence errors surface.
type failingCache struct {
	inner EmbeddingCache
}

func (f *failingCache) GetQuestionEmbedding(ctx context.Context, key, model string) ([]float32, error) {
	return f.inner.GetQuestionEmbedding(ctx, key, model)
}

func (f *failingCache) PutQuestionEmbedding(context.Context, string, string, []float32) error {
	return errors.New("disk full")
}

func Test_QuestionCache_SurfacesWriteFailure(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	emb := &countingEmbedder{vec: []float32{1}}
	cache := NewQuestionCache(&failingCache{inner: s}, emb, "m1")

	_, err := cache.Embedding(context.Background(), "goals", "What are the goals?")
	if err == nil {
		t.Error("want cache write failure surfaced")
	}
}
