package provider

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/cloudwego/eino/components/model"
)

// Default models per backend. Extraction defaults to the cheaper OpenAI model
// with the stronger one as fallback.
const (
	defaultOllamaModel    = "llama3"
	defaultOpenAIModel    = "gpt-5-mini"
	defaultOpenAIFallback = "gpt-5"
	defaultGeminiModel    = "gemini-1.5-pro"
)

// Pair bundles the primary model with an optional fallback used when the
// primary's output cannot be normalized. Fallback is nil when no fallback
// model is configured.
type Pair struct {
	Primary      model.ToolCallingChatModel
	PrimaryName  string
	Fallback     model.ToolCallingChatModel
	FallbackName string
}

// New constructs a ChatModel from an explicit Config, delegating to the
// appropriate backend factory function. It validates the config first so
// callers get a clear error at startup rather than on the first request.
func New(ctx context.Context, cfg *Config) (model.ToolCallingChatModel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case BackendOllama:
		return newOllama(ctx, cfg)
	case BackendOpenAI:
		return newOpenAI(ctx, cfg)
	case BackendAzure:
		return newAzure(ctx, cfg)
	case BackendBedrock:
		return newBedrock(ctx, cfg)
	case BackendGemini:
		return newGemini(ctx, cfg)
	default:
		return nil, fmt.Errorf("provider: unknown backend %q — valid values: ollama, openai, azure, bedrock, gemini", cfg.Backend)
	}
}

// NewFromEnv constructs the primary ChatModel by reading provider
// configuration from environment variables. MODEL_PROVIDER selects the
// backend; each provider uses its own native credential env vars.
//
// Environment variables:
//
//	MODEL_PROVIDER    = ollama | openai | azure | bedrock | gemini (default: ollama)
//	MODEL_NAME        = model or Bedrock model ID (default per backend)
//	MODEL_BASE_URL    = endpoint override (required for azure, optional otherwise)
//	MODEL_API_KEY     = credential (not used for ollama/bedrock)
//	AZURE_DEPLOYMENT  = Azure deployment name (azure only)
//	AZURE_OPENAI_API_VERSION (default: 2025-04-01-preview)
//	MODEL_MAX_TOKENS  (default: 4096)
//	MODEL_TEMPERATURE (default: 0)
func NewFromEnv(ctx context.Context) (model.ToolCallingChatModel, error) {
	return New(ctx, configFromEnv(""))
}

// NewPairFromEnv constructs the primary model plus the optional fallback.
// FALLBACK_MODEL_NAME (or FALLBACK_AZURE_DEPLOYMENT for azure) selects the
// fallback model on the same backend and credentials; for the openai backend
// it defaults to gpt-5 when unset. Setting it to "none" disables the fallback.
func NewPairFromEnv(ctx context.Context) (*Pair, error) {
	primaryCfg := configFromEnv("")
	primary, err := New(ctx, primaryCfg)
	if err != nil {
		return nil, err
	}

	pair := &Pair{Primary: primary, PrimaryName: primaryCfg.Model}
	if primaryCfg.Backend == BackendAzure {
		pair.PrimaryName = primaryCfg.AzureDeployment
	}

	fallbackName := os.Getenv("FALLBACK_MODEL_NAME")
	if primaryCfg.Backend == BackendAzure {
		fallbackName = os.Getenv("FALLBACK_AZURE_DEPLOYMENT")
	}
	if fallbackName == "" && primaryCfg.Backend == BackendOpenAI {
		fallbackName = defaultOpenAIFallback
	}
	if fallbackName == "" || fallbackName == "none" || fallbackName == pair.PrimaryName {
		return pair, nil
	}

	fallbackCfg := configFromEnv(fallbackName)
	fallback, err := New(ctx, fallbackCfg)
	if err != nil {
		return nil, fmt.Errorf("provider: fallback model: %w", err)
	}
	pair.Fallback = fallback
	pair.FallbackName = fallbackName
	return pair, nil
}

// configFromEnv resolves a Config from the environment. A non-empty
// modelOverride replaces the model (or Azure deployment) name, which is how
// the fallback config is derived from the primary's credentials.
func configFromEnv(modelOverride string) *Config {
	backend := Backend(getEnvOrDefault("MODEL_PROVIDER", string(BackendOllama)))

	defaultModel := defaultOllamaModel
	switch backend {
	case BackendOpenAI:
		defaultModel = defaultOpenAIModel
	case BackendGemini:
		defaultModel = defaultGeminiModel
	case BackendBedrock, BackendAzure:
		defaultModel = ""
	}

	cfg := &Config{
		Backend:         backend,
		Model:           getEnvOrDefault("MODEL_NAME", defaultModel),
		BaseURL:         os.Getenv("MODEL_BASE_URL"),
		APIKey:          os.Getenv("MODEL_API_KEY"),
		AzureDeployment: os.Getenv("AZURE_DEPLOYMENT"),
		AzureAPIVersion: getEnvOrDefault("AZURE_OPENAI_API_VERSION", "2025-04-01-preview"),
		MaxTokens:       getEnvInt("MODEL_MAX_TOKENS", 4096),
		Temperature:     getEnvFloat32("MODEL_TEMPERATURE", 0),
	}
	if modelOverride != "" {
		if backend == BackendAzure {
			cfg.AzureDeployment = modelOverride
		} else {
			cfg.Model = modelOverride
		}
	}
	return cfg
}

// getEnvOrDefault returns the value of the named environment variable, or
// fallback if the variable is unset or empty.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the integer value of the named environment variable, or
// fallback if the variable is unset, empty, or not parseable.
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// getEnvFloat32 returns the float32 value of the named environment variable,
// or fallback if the variable is unset, empty, or not parseable.
func getEnvFloat32(key string, fallback float32) float32 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			return float32(f)
		}
	}
	return fallback
}
