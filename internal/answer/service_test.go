package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/basinworks/planextract/internal/rag"
	"github.com/basinworks/planextract/internal/section"
	"github.com/basinworks/planextract/internal/store"
)

// fixedEmbedder returns the same vector for any text.
type fixedEmbedder struct {
	vec []float32
}

func (f *fixedEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vec
	}
	return out, nil
}

func newTestService(t *testing.T, synthContent string) (*Service, *store.SQLiteStore) {
	t.Helper()
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	emb := &fixedEmbedder{vec: []float32{1, 0}}
	questions := store.NewQuestionCache(s, emb, "test-model")
	retriever := rag.NewRetriever(emb, rag.WithTopK(rag.DefaultScoredTopK))
	synth := NewSynthesizer(&scriptedModel{script: []scriptStep{{content: synthContent}}}, "primary")

	return NewService(s, questions, retriever, synth, WithContextTopK(2)), s
}

func seedDocument(t *testing.T, s *store.SQLiteStore, guid string, n int) {
	t.Helper()
	doc := &store.Document{GUID: guid, Model: "test-model"}
	for i := 0; i < n; i++ {
		doc.Chunks = append(doc.Chunks, strings.Repeat("watershed plan text ", 30))
		doc.Embeddings = append(doc.Embeddings, []float32{1, float32(i) * 0.01})
	}
	if err := s.SaveDocument(context.Background(), doc); err != nil {
		t.Fatalf("seed document: %v", err)
	}
}

func Test_Service_Ask(t *testing.T) {
	t.Parallel()
	svc, s := newTestService(t, goodGoals)
	seedDocument(t, s, "plan-001", 10)

	ans, err := svc.Ask(context.Background(), "plan-001", "goals")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if ans.Key != section.Goals {
		t.Errorf("key = %s", ans.Key)
	}
	arr, ok := ans.Answer.([]any)
	if !ok || len(arr) != 1 {
		t.Fatalf("answer should be the unwrapped goals array, got %#v", ans.Answer)
	}
	if len(ans.Sources) != rag.DefaultScoredTopK {
		t.Errorf("want %d sources, got %d", rag.DefaultScoredTopK, len(ans.Sources))
	}
	for _, src := range ans.Sources {
		if len([]rune(src.Snippet)) > 400 {
			t.Errorf("snippet too long: %d", len(src.Snippet))
		}
		if src.Index < 0 || src.Index >= 10 {
			t.Errorf("source index out of range: %d", src.Index)
		}
	}
	if ans.Confidence <= 0 || ans.Confidence > 1 {
		t.Errorf("confidence = %v", ans.Confidence)
	}
}

func Test_Service_UnknownKey(t *testing.T) {
	t.Parallel()
	svc, s := newTestService(t, goodGoals)
	seedDocument(t, s, "plan-002", 2)

	_, err := svc.Ask(context.Background(), "plan-002", "budget")
	if !errors.Is(err, section.ErrUnknownKey) {
		t.Errorf("want ErrUnknownKey, got %v", err)
	}
}

func Test_Service_MissingDocument(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t, goodGoals)

	_, err := svc.Ask(context.Background(), "missing", "goals")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("want store.ErrNotFound, got %v", err)
	}
}

func Test_Service_SmallDocumentFewerSources(t *testing.T) {
	t.Parallel()
	svc, s := newTestService(t, goodGoals)
	seedDocument(t, s, "plan-003", 3)

	ans, err := svc.Ask(context.Background(), "plan-003", "goals")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if len(ans.Sources) != 3 {
		t.Errorf("want 3 sources for a 3-chunk document, got %d", len(ans.Sources))
	}
}

func Test_Service_EmptyExtractionKeepsShape(t *testing.T) {
	t.Parallel()
	svc, s := newTestService(t, "nothing useful here")
	seedDocument(t, s, "plan-004", 4)

	ans, err := svc.Ask(context.Background(), "plan-004", "pollutants")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	arr, ok := ans.Answer.([]any)
	if !ok {
		t.Fatalf("answer should keep the array shape, got %#v", ans.Answer)
	}
	if len(arr) != 0 {
		t.Errorf("want empty array, got %#v", arr)
	}
}
