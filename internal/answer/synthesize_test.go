package answer

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/basinworks/planextract/internal/section"
)

// scriptedModel replays a fixed sequence of responses; an entry with err set
// fails that call. Runs past the script repeat the last entry.
type scriptedModel struct {
	script []scriptStep
	calls  int
}

type scriptStep struct {
	content string
	err     error
}

func (m *scriptedModel) Generate(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	step := m.script[len(m.script)-1]
	if m.calls < len(m.script) {
		step = m.script[m.calls]
	}
	m.calls++
	if step.err != nil {
		return nil, step.err
	}
	return schema.AssistantMessage(step.content, nil), nil
}

func (m *scriptedModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not supported in tests")
}

const goodGoals = `{"goals":[{"description":"Reduce phosphorus loading by 40%"}]}`

func Test_Synthesize_FirstAttemptSucceeds(t *testing.T) {
	t.Parallel()
	primary := &scriptedModel{script: []scriptStep{{content: goodGoals}}}
	s := NewSynthesizer(primary, "primary")

	syn, err := s.Synthesize(context.Background(), section.Goals, "What are the goals?", []string{"ctx"})
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if syn.Model != "primary" || syn.Calls != 1 {
		t.Errorf("syn = %+v", syn)
	}
	if arr := syn.Value.([]any); len(arr) != 1 {
		t.Errorf("value = %#v", syn.Value)
	}
}

func Test_Synthesize_RetriesThenSucceeds(t *testing.T) {
	t.Parallel()
	primary := &scriptedModel{script: []scriptStep{
		{content: `{"goals":[]}`}, // well-formed but empty
		{content: goodGoals},
	}}
	s := NewSynthesizer(primary, "primary")

	syn, err := s.Synthesize(context.Background(), section.Goals, "q", nil)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if syn.Calls != 2 || syn.Model != "primary" {
		t.Errorf("syn = %+v", syn)
	}
}

func Test_Synthesize_FallbackUsedAfterPrimaryExhausted(t *testing.T) {
	t.Parallel()
	primary := &scriptedModel{script: []scriptStep{{content: "no json here"}}}
	fallback := &scriptedModel{script: []scriptStep{{content: goodGoals}}}
	s := NewSynthesizer(primary, "small", WithFallback(fallback, "big"))

	syn, err := s.Synthesize(context.Background(), section.Goals, "q", nil)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if syn.Model != "big" || syn.Calls != 3 {
		t.Errorf("syn = %+v", syn)
	}
	if primary.calls != 2 || fallback.calls != 1 {
		t.Errorf("primary=%d fallback=%d calls", primary.calls, fallback.calls)
	}
}

func Test_Synthesize_FallbackEmptyStillReturned(t *testing.T) {
	t.Parallel()
	primary := &scriptedModel{script: []scriptStep{{content: "garbage"}}}
	fallback := &scriptedModel{script: []scriptStep{{content: `{"goals":[]}`}}}
	s := NewSynthesizer(primary, "small", WithFallback(fallback, "big"))

	syn, err := s.Synthesize(context.Background(), section.Goals, "q", nil)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if syn.Model != "big" {
		t.Errorf("syn = %+v", syn)
	}
	if arr := syn.Value.([]any); len(arr) != 0 {
		t.Errorf("value = %#v", syn.Value)
	}
}

func Test_Synthesize_ModelErrorsCountAsAttempts(t *testing.T) {
	t.Parallel()
	primary := &scriptedModel{script: []scriptStep{
		{err: errors.New("rate limited")},
		{content: goodGoals},
	}}
	s := NewSynthesizer(primary, "primary")

	syn, err := s.Synthesize(context.Background(), section.Goals, "q", nil)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if syn.Calls != 2 {
		t.Errorf("calls = %d", syn.Calls)
	}
}

func Test_Synthesize_AllCallsFail(t *testing.T) {
	t.Parallel()
	boom := errors.New("backend down")
	primary := &scriptedModel{script: []scriptStep{{err: boom}}}
	fallback := &scriptedModel{script: []scriptStep{{err: boom}}}
	s := NewSynthesizer(primary, "small", WithFallback(fallback, "big"))

	_, err := s.Synthesize(context.Background(), section.Goals, "q", nil)
	if !errors.Is(err, boom) {
		t.Errorf("want wrapped model error, got %v", err)
	}
}

func Test_Synthesize_NoFallbackDegradesToEmptyShape(t *testing.T) {
	t.Parallel()
	primary := &scriptedModel{script: []scriptStep{{content: "never json"}}}
	s := NewSynthesizer(primary, "primary")

	syn, err := s.Synthesize(context.Background(), section.Summary, "q", nil)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if syn.Model != "" {
		t.Errorf("model should be empty on degradation, got %q", syn.Model)
	}
	if syn.Value != "" {
		t.Errorf("summary empty shape is \"\", got %#v", syn.Value)
	}
}

func Test_Synthesize_SchemaInvalidTriggersRetry(t *testing.T) {
	t.Parallel()
	primary := &scriptedModel{script: []scriptStep{
		{content: `{"goals":[{"notdescription":"x"}]}`}, // fails item schema
		{content: goodGoals},
	}}
	s := NewSynthesizer(primary, "primary")

	syn, err := s.Synthesize(context.Background(), section.Goals, "q", nil)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if syn.Calls != 2 {
		t.Errorf("schema-invalid first answer should retry, calls = %d", syn.Calls)
	}
}
