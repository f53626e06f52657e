// Package provider constructs the LLM chat-model backends used for answer
// synthesis. Supported backends: Ollama, OpenAI, Azure OpenAI, AWS Bedrock,
// Google Gemini. The factory also builds the primary/fallback model pair the
// synthesizer escalates through when the primary model keeps returning
// unusable output.
package provider

import (
	"fmt"
	"strings"
)

// Backend enumerates the supported LLM inference providers.
type Backend string

const (
	// BackendOllama selects a locally running Ollama instance.
	BackendOllama Backend = "ollama"
	// BackendOpenAI selects the OpenAI API.
	BackendOpenAI Backend = "openai"
	// BackendAzure selects Azure OpenAI Service.
	BackendAzure Backend = "azure"
	// BackendBedrock selects AWS Bedrock.
	BackendBedrock Backend = "bedrock"
	// BackendGemini selects Google Gemini via AI Studio.
	BackendGemini Backend = "gemini"
)

// Config holds all provider-level configuration resolved from environment
// variables or explicit caller-supplied values.
type Config struct {
	// Backend identifies which inference provider to use.
	Backend Backend

	// Model is the model name or deployment ID (e.g. "gpt-5-mini", "llama3").
	Model string

	// BaseURL overrides the default API endpoint (required for Ollama and Azure).
	BaseURL string

	// APIKey is the authentication credential for the selected provider.
	// For Bedrock this field is unused; AWS credentials are resolved via the SDK chain.
	APIKey string

	// AzureDeployment is the Azure OpenAI deployment name (Azure only).
	AzureDeployment string

	// AzureAPIVersion is the Azure OpenAI REST API version (Azure only).
	AzureAPIVersion string

	// MaxTokens caps the number of tokens the model may generate per response.
	MaxTokens int

	// Temperature controls response randomness. Extraction runs at 0 so the
	// same document and question produce the same answer.
	Temperature float32
}

// Validate checks that the required fields for the selected backend are set.
// Error messages name the environment variable the operator needs to fix.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendOllama:
		if c.Model == "" {
			return fmt.Errorf("provider: ollama requires MODEL_NAME")
		}
	case BackendOpenAI:
		if c.APIKey == "" {
			return fmt.Errorf("provider: openai requires MODEL_API_KEY")
		}
		if c.Model == "" {
			return fmt.Errorf("provider: openai requires MODEL_NAME")
		}
	case BackendAzure:
		if c.APIKey == "" {
			return fmt.Errorf("provider: azure requires MODEL_API_KEY")
		}
		if c.BaseURL == "" {
			return fmt.Errorf("provider: azure requires MODEL_BASE_URL (Azure endpoint)")
		}
		if c.AzureDeployment == "" {
			return fmt.Errorf("provider: azure requires AZURE_DEPLOYMENT")
		}
	case BackendBedrock:
		if c.Model == "" {
			return fmt.Errorf("provider: bedrock requires MODEL_NAME (Bedrock model ID)")
		}
	case BackendGemini:
		if c.APIKey == "" {
			return fmt.Errorf("provider: gemini requires MODEL_API_KEY")
		}
		if c.Model == "" {
			return fmt.Errorf("provider: gemini requires MODEL_NAME")
		}
	default:
		return fmt.Errorf("provider: unknown backend %q — valid values: ollama, openai, azure, bedrock, gemini", c.Backend)
	}
	return nil
}

// azureReasoningPrefixes identifies Azure o-series and codex-class deployments,
// which reject an explicit temperature parameter.
var azureReasoningPrefixes = []string{"o1", "o3", "o4", "codex"}

// isAzureReasoningModel reports whether the deployment name refers to a
// reasoning-class model that must be called without a temperature.
func isAzureReasoningModel(deployment string) bool {
	lower := strings.ToLower(deployment)
	for _, p := range azureReasoningPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}
