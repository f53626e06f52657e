// Package config provides YAML-based configuration for planextract.
// Configuration is loaded with a layered precedence: defaults → YAML file → env vars.
// Environment variables always win, so existing workflows are unaffected.
//
// File search order:
//  1. --config CLI flag (explicit path)
//  2. PLANEXTRACT_CONFIG environment variable
//  3. ~/.planextract/config.yaml
//  4. ./planextract.yaml
//
// If no file is found the system runs entirely from env vars.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level YAML configuration structure.
// Field names use yaml tags that mirror the env var naming (lowercase, underscored).
type Config struct {
	// Model configures the LLM generation provider.
	Model ModelConfig `yaml:"model"`

	// Embedding configures the embedding provider.
	Embedding EmbeddingConfig `yaml:"embedding"`

	// Extraction configures chunking, retrieval, and synthesis knobs.
	Extraction ExtractionConfig `yaml:"extraction"`

	// Storage configures the document database.
	Storage StorageConfig `yaml:"storage"`

	// Server configures the HTTP server.
	Server ServerConfig `yaml:"server"`

	// Logging configures structured logging.
	Logging LoggingConfig `yaml:"logging"`

	// Tracing configures Langfuse tracing integration.
	Tracing TracingConfig `yaml:"tracing"`
}

// ModelConfig holds LLM generation settings.
type ModelConfig struct {
	// Provider selects the backend: ollama, openai, azure, bedrock, gemini.
	Provider string `yaml:"provider"`

	// Name is the model name or Bedrock model ID.
	Name string `yaml:"name"`

	// FallbackName is the model tried when the primary keeps returning
	// unusable output. "none" disables the fallback.
	FallbackName string `yaml:"fallback_name"`

	// BaseURL overrides the provider endpoint (required for azure).
	BaseURL string `yaml:"base_url"`

	// APIKey is the provider credential. Prefer env var MODEL_API_KEY.
	APIKey string `yaml:"api_key"`

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int `yaml:"max_tokens"`

	// Temperature controls response randomness. Extraction defaults to 0.
	Temperature float32 `yaml:"temperature"`

	// Azure holds Azure OpenAI-specific settings.
	Azure AzureConfig `yaml:"azure"`
}

// AzureConfig holds Azure OpenAI provider settings.
type AzureConfig struct {
	// Deployment is the Azure OpenAI deployment name.
	Deployment string `yaml:"deployment"`
	// FallbackDeployment is the fallback deployment name.
	FallbackDeployment string `yaml:"fallback_deployment"`
	// APIVersion is the Azure OpenAI API version.
	APIVersion string `yaml:"api_version"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	// Provider selects the embedding backend (ollama, openai, azure, gemini).
	Provider string `yaml:"provider"`
	// Model is the embedding model name.
	Model string `yaml:"model"`
	// Dimensions overrides the embedding vector size.
	Dimensions int `yaml:"dimensions"`
	// BatchSize caps texts per embedding request.
	BatchSize int `yaml:"batch_size"`
	// APIKey is the embedding API key. Prefer env var EMBEDDING_API_KEY.
	APIKey string `yaml:"api_key"`
	// Endpoint is the embedding API endpoint.
	Endpoint string `yaml:"endpoint"`
	// OllamaHost is the Ollama server base URL.
	OllamaHost string `yaml:"ollama_host"`
}

// ExtractionConfig holds the pipeline tuning knobs.
type ExtractionConfig struct {
	// ChunkMaxTokens is the per-chunk token budget.
	ChunkMaxTokens int `yaml:"chunk_max_tokens"`
	// ChunkOverlapTokens is the cross-chunk overlap budget.
	ChunkOverlapTokens int `yaml:"chunk_overlap_tokens"`
	// MinTextChars rejects near-empty documents at ingest.
	MinTextChars int `yaml:"min_text_chars"`
	// TopK is how many chunks retrieval selects per question.
	TopK int `yaml:"top_k"`
	// ContextTopK is how many of those reach the model as context.
	ContextTopK int `yaml:"context_top_k"`
	// MMRLambda is the relevance/diversity trade-off in [0,1].
	MMRLambda float64 `yaml:"mmr_lambda"`
	// PrimaryAttempts is how many times the primary model is tried.
	PrimaryAttempts int `yaml:"primary_attempts"`
}

// StorageConfig holds document database settings.
type StorageConfig struct {
	// DBPath is the SQLite database path.
	DBPath string `yaml:"db_path"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the bind address.
	Host string `yaml:"host"`
	// Port is the TCP port.
	Port int `yaml:"port"`
	// APIKey is the Bearer token for API authentication. Prefer env var PLANEXTRACT_API_KEY.
	APIKey string `yaml:"api_key"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is the log output format: json, text.
	Format string `yaml:"format"`
}

// TracingConfig holds Langfuse tracing settings.
type TracingConfig struct {
	// PublicKey is the Langfuse public key. Prefer env var LANGFUSE_PUBLIC_KEY.
	PublicKey string `yaml:"public_key"`
	// SecretKey is the Langfuse secret key. Prefer env var LANGFUSE_SECRET_KEY.
	SecretKey string `yaml:"secret_key"`
	// Host is the Langfuse API host.
	Host string `yaml:"host"`
}

// envMapping maps YAML config fields to their corresponding env var names.
// Only non-empty YAML values are applied; env vars always take precedence.
var envMapping = []struct {
	envKey string
	value  func(*Config) string
}{
	{"MODEL_PROVIDER", func(c *Config) string { return c.Model.Provider }},
	{"MODEL_NAME", func(c *Config) string { return c.Model.Name }},
	{"FALLBACK_MODEL_NAME", func(c *Config) string { return c.Model.FallbackName }},
	{"MODEL_BASE_URL", func(c *Config) string { return c.Model.BaseURL }},
	{"MODEL_API_KEY", func(c *Config) string { return c.Model.APIKey }},
	{"MODEL_MAX_TOKENS", func(c *Config) string { return intStr(c.Model.MaxTokens) }},
	{"MODEL_TEMPERATURE", func(c *Config) string { return float32Str(c.Model.Temperature) }},
	{"AZURE_DEPLOYMENT", func(c *Config) string { return c.Model.Azure.Deployment }},
	{"FALLBACK_AZURE_DEPLOYMENT", func(c *Config) string { return c.Model.Azure.FallbackDeployment }},
	{"AZURE_OPENAI_API_VERSION", func(c *Config) string { return c.Model.Azure.APIVersion }},
	{"EMBEDDING_PROVIDER", func(c *Config) string { return c.Embedding.Provider }},
	{"EMBEDDING_MODEL", func(c *Config) string { return c.Embedding.Model }},
	{"EMBEDDING_DIMENSIONS", func(c *Config) string { return intStr(c.Embedding.Dimensions) }},
	{"EMBEDDING_BATCH_SIZE", func(c *Config) string { return intStr(c.Embedding.BatchSize) }},
	{"EMBEDDING_API_KEY", func(c *Config) string { return c.Embedding.APIKey }},
	{"EMBEDDING_ENDPOINT", func(c *Config) string { return c.Embedding.Endpoint }},
	{"OLLAMA_HOST", func(c *Config) string { return c.Embedding.OllamaHost }},
	{"CHUNK_MAX_TOKENS", func(c *Config) string { return intStr(c.Extraction.ChunkMaxTokens) }},
	{"CHUNK_OVERLAP_TOKENS", func(c *Config) string { return intStr(c.Extraction.ChunkOverlapTokens) }},
	{"INGEST_MIN_TEXT_CHARS", func(c *Config) string { return intStr(c.Extraction.MinTextChars) }},
	{"RETRIEVAL_TOP_K", func(c *Config) string { return intStr(c.Extraction.TopK) }},
	{"RETRIEVAL_CONTEXT_TOP_K", func(c *Config) string { return intStr(c.Extraction.ContextTopK) }},
	{"MMR_LAMBDA", func(c *Config) string { return float64Str(c.Extraction.MMRLambda) }},
	{"MODEL_PRIMARY_ATTEMPTS", func(c *Config) string { return intStr(c.Extraction.PrimaryAttempts) }},
	{"PLANEXTRACT_DB", func(c *Config) string { return c.Storage.DBPath }},
	{"SERVER_HOST", func(c *Config) string { return c.Server.Host }},
	{"SERVER_PORT", func(c *Config) string { return intStr(c.Server.Port) }},
	{"PLANEXTRACT_API_KEY", func(c *Config) string { return c.Server.APIKey }},
	{"LOG_LEVEL", func(c *Config) string { return c.Logging.Level }},
	{"LOG_FORMAT", func(c *Config) string { return c.Logging.Format }},
	{"LANGFUSE_PUBLIC_KEY", func(c *Config) string { return c.Tracing.PublicKey }},
	{"LANGFUSE_SECRET_KEY", func(c *Config) string { return c.Tracing.SecretKey }},
	{"LANGFUSE_HOST", func(c *Config) string { return c.Tracing.Host }},
}

// Load reads a YAML config file and applies non-empty values as environment
// variables. Existing env vars are never overwritten (env always wins).
// Returns the path that was loaded, or empty string if no file was found.
func Load(explicitPath string, log *slog.Logger) (string, error) {
	path := resolveConfigPath(explicitPath)
	if path == "" {
		log.Debug("config: no YAML config file found, using env vars only")
		return "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return "", fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	applied := 0
	for _, m := range envMapping {
		yamlVal := m.value(&cfg)
		if yamlVal == "" {
			continue
		}
		if os.Getenv(m.envKey) != "" {
			continue // env var already set — do not override
		}
		os.Setenv(m.envKey, yamlVal)
		applied++
	}

	log.Info("config: loaded YAML config",
		slog.String("path", path),
		slog.Int("keys_applied", applied),
	)

	return path, nil
}

// resolveConfigPath returns the first config file path that exists.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}

	if envPath := os.Getenv("PLANEXTRACT_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		p := filepath.Join(home, ".planextract", "config.yaml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	if _, err := os.Stat("planextract.yaml"); err == nil {
		return "planextract.yaml"
	}

	return ""
}

// intStr converts an int to string, returning "" for zero values.
func intStr(v int) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprintf("%d", v)
}

// float32Str converts a float32 to string, returning "" for zero values.
func float32Str(v float32) string {
	if v == 0 {
		return ""
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", v), "0"), ".")
}

// float64Str converts a float64 to string, returning "" for zero values.
func float64Str(v float64) string {
	if v == 0 {
		return ""
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", v), "0"), ".")
}
