package embedder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func Test_OpenAIEmbedder_ReordersByIndex(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		var req openaiEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		// Answer out of order to exercise index-based reassembly.
		fmt.Fprintf(w, `{"data":[{"index":1,"embedding":[0.2]},{"index":0,"embedding":[0.1]}]}`)
	}))
	defer srv.Close()

	emb := NewOpenAIEmbedder(&OpenAIConfig{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Model:   "text-embedding-3-small",
	})

	got, err := emb.Embed(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if got[0][0] != 0.1 || got[1][0] != 0.2 {
		t.Errorf("embeddings not reassembled in input order: %v", got)
	}
}

func Test_OpenAIEmbedder_APIError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"bad key"}}`)
	}))
	defer srv.Close()

	emb := NewOpenAIEmbedder(&OpenAIConfig{BaseURL: srv.URL, APIKey: "x", Model: "m"})
	_, err := emb.Embed(context.Background(), []string{"text"})
	if err == nil || err.Error() != "embedder: openai: bad key" {
		t.Errorf("want API error message surfaced, got %v", err)
	}
}

func Test_OpenAIEmbedder_CountMismatch(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"index":0,"embedding":[0.5]}]}`)
	}))
	defer srv.Close()

	emb := NewOpenAIEmbedder(&OpenAIConfig{BaseURL: srv.URL, APIKey: "x", Model: "m"})
	if _, err := emb.Embed(context.Background(), []string{"a", "b"}); err == nil {
		t.Error("want error when response has fewer embeddings than inputs")
	}
}

func Test_OllamaEmbedder_Embed(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("path = %q", r.URL.Path)
		}
		fmt.Fprint(w, `{"embeddings":[[0.1,0.2],[0.3,0.4]]}`)
	}))
	defer srv.Close()

	emb := NewOllamaEmbedder(&OllamaConfig{Host: srv.URL, Model: "nomic-embed-text"})
	got, err := emb.Embed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(got) != 2 || got[1][1] != 0.4 {
		t.Errorf("unexpected embeddings: %v", got)
	}
}

// countingEmbedder records batch sizes and returns deterministic vectors so
// order preservation across batch boundaries can be checked.
type countingEmbedder struct {
	batches []int
	next    float32
	err     error
}

func (c *countingEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.batches = append(c.batches, len(texts))
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{c.next}
		c.next++
	}
	return out, nil
}

func Test_Batched_SplitsAndPreservesOrder(t *testing.T) {
	t.Parallel()
	inner := &countingEmbedder{}
	b := NewBatched(inner, 3)

	texts := make([]string, 8)
	got, err := b.Embed(context.Background(), texts)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(got) != 8 {
		t.Fatalf("want 8 vectors, got %d", len(got))
	}
	wantBatches := []int{3, 3, 2}
	if len(inner.batches) != len(wantBatches) {
		t.Fatalf("want %d batches, got %v", len(wantBatches), inner.batches)
	}
	for i, w := range wantBatches {
		if inner.batches[i] != w {
			t.Errorf("batch %d size = %d, want %d", i, inner.batches[i], w)
		}
	}
	for i, v := range got {
		if v[0] != float32(i) {
			t.Errorf("vector %d out of order: %v", i, v)
		}
	}
}

func Test_Batched_SingleCallWhenUnderSize(t *testing.T) {
	t.Parallel()
	inner := &countingEmbedder{}
	b := NewBatched(inner, DefaultBatchSize)

	if _, err := b.Embed(context.Background(), []string{"a", "b"}); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(inner.batches) != 1 || inner.batches[0] != 2 {
		t.Errorf("want one batch of 2, got %v", inner.batches)
	}
}

func Test_Batched_PropagatesError(t *testing.T) {
	t.Parallel()
	wantErr := errors.New("backend down")
	b := NewBatched(&countingEmbedder{err: wantErr}, 2)

	_, err := b.Embed(context.Background(), make([]string, 5))
	if !errors.Is(err, wantErr) {
		t.Errorf("want wrapped backend error, got %v", err)
	}
}

func Test_LooksLikeChatModel(t *testing.T) {
	t.Parallel()
	cases := []struct {
		model string
		want  bool
	}{
		{"gpt-5-mini", true},
		{"llama3.2", true},
		{"nomic-embed-text", false},
		{"text-embedding-3-small", false},
	}
	for _, tc := range cases {
		if got := looksLikeChatModel(tc.model); got != tc.want {
			t.Errorf("looksLikeChatModel(%q) = %v, want %v", tc.model, got, tc.want)
		}
	}
}
