package answer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/basinworks/planextract/internal/logging"
	"github.com/basinworks/planextract/internal/section"
)

// defaultPrimaryAttempts is how many times the primary model is tried before
// escalating to the fallback.
const defaultPrimaryAttempts = 2

// Synthesizer runs the retry/fallback sequence: the primary model gets a
// fixed number of attempts, and when none yields usable content the fallback
// model gets one. Every response — usable or not — is normalized and
// schema-validated, so the returned value always has the key's exact shape.
type Synthesizer struct {
	primary      model.BaseChatModel
	primaryName  string
	fallback     model.BaseChatModel
	fallbackName string
	attempts     int
}

// SynthesizerOption configures a Synthesizer.
type SynthesizerOption func(*Synthesizer)

// WithFallback sets the fallback model tried after the primary attempts are
// exhausted.
func WithFallback(m model.BaseChatModel, name string) SynthesizerOption {
	return func(s *Synthesizer) {
		s.fallback = m
		s.fallbackName = name
	}
}

// WithPrimaryAttempts overrides the number of primary model attempts.
func WithPrimaryAttempts(n int) SynthesizerOption {
	return func(s *Synthesizer) {
		if n > 0 {
			s.attempts = n
		}
	}
}

// NewSynthesizer builds a Synthesizer around the primary model.
func NewSynthesizer(primary model.BaseChatModel, primaryName string, opts ...SynthesizerOption) *Synthesizer {
	s := &Synthesizer{
		primary:     primary,
		primaryName: primaryName,
		attempts:    defaultPrimaryAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesis is the outcome of one extraction: the normalized, schema-valid
// value plus which model produced it and how many calls were made.
type Synthesis struct {
	// Value has the key's exact expected shape, possibly empty.
	Value any
	// Model is the name of the model whose output was used, or empty when
	// every call failed and the empty shape was returned.
	Model string
	// Calls is the total number of model invocations made.
	Calls int
}

// Synthesize extracts the section value for key from the given context chunks.
// It returns an error only when every model call failed outright; unusable but
// well-formed model output degrades to the key's empty value instead.
func (s *Synthesizer) Synthesize(ctx context.Context, key section.Key, question string, contextChunks []string) (*Synthesis, error) {
	log := logging.FromContext(ctx)
	prompt := BuildPrompt(key, question, contextChunks)
	messages := []*schema.Message{schema.UserMessage(prompt)}

	calls := 0
	var lastErr error
	gotResponse := false

	for attempt := 1; attempt <= s.attempts; attempt++ {
		calls++
		msg, err := s.primary.Generate(ctx, messages)
		if err != nil {
			lastErr = err
			log.Warn("answer: primary model call failed",
				slog.String("key", string(key)),
				slog.String("model", s.primaryName),
				slog.Int("attempt", attempt),
				slog.Any("error", err),
			)
			continue
		}
		gotResponse = true
		value := ValidateSection(key, Normalize(msg.Content, key))
		if isUsable(key, value) {
			return &Synthesis{Value: value, Model: s.primaryName, Calls: calls}, nil
		}
		log.Debug("answer: primary attempt produced no usable content",
			slog.String("key", string(key)),
			slog.Int("attempt", attempt),
		)
	}

	if s.fallback != nil {
		calls++
		msg, err := s.fallback.Generate(ctx, messages)
		if err != nil {
			lastErr = err
			log.Warn("answer: fallback model call failed",
				slog.String("key", string(key)),
				slog.String("model", s.fallbackName),
				slog.Any("error", err),
			)
		} else {
			// The fallback's output is returned even when empty, so the
			// caller always gets the expected shape.
			value := ValidateSection(key, Normalize(msg.Content, key))
			return &Synthesis{Value: value, Model: s.fallbackName, Calls: calls}, nil
		}
	}

	if !gotResponse {
		return nil, fmt.Errorf("answer: synthesize %s: all model calls failed: %w", key, lastErr)
	}

	// Well-formed but unusable output everywhere: degrade to the empty shape.
	return &Synthesis{Value: Normalize("{}", key), Calls: calls}, nil
}
