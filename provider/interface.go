// Package provider adapts the hosted and local text-generation vendors to
// the single model.Provider contract used by the assistant facade.
//
// Cosmic can talk to six backends (OpenAI, Anthropic, Google Gemini, Cohere,
// Hugging Face inference, a local Ollama server). Exactly one of them is
// selected at startup by Select; when none can be built the assistant runs
// in fallback-only mode and answers from the offline generator.
//
// # Adapters
//
// Every adapter:
//   - builds the system instruction from the context tag (see SystemPrompt)
//   - converts the trailing message window to its vendor's wire shape
//     (see conversions.go)
//   - makes a single attempt bounded by a 30 second timeout
//   - returns a *ProviderError for every failure, including an empty reply
//
// # Architecture
//
//   - model.Provider defines the contract (interface)
//   - provider.NewProvider() builds one adapter from a Config
//   - provider.Select() resolves config.AIConfig into the process-wide choice
//
// # Usage
//
//	p, err := provider.NewProvider(provider.Config{
//	    Type:   provider.ProviderTypeOpenAI,
//	    APIKey: os.Getenv("OPENAI_API_KEY"),
//	})
//	if err != nil {
//	    // handle error
//	}
//	res, err := p.Generate(ctx, messages, model.ContextCosmic, model.Overrides{})
package provider

import (
	"net/http"
	"time"
)

// Note: The Provider interface is defined in the model package
// (model/provider.go) to avoid import cycles. This package implements model.Provider.

// ProviderType identifies the provider implementation.
type ProviderType string

const (
	ProviderTypeOpenAI      ProviderType = "openai"
	ProviderTypeAnthropic   ProviderType = "anthropic"
	ProviderTypeGoogle      ProviderType = "google"
	ProviderTypeCohere      ProviderType = "cohere"
	ProviderTypeHuggingFace ProviderType = "huggingface"
	ProviderTypeLocal       ProviderType = "local"
)

// Fixed generation parameters shared by every adapter.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 500
	DefaultTimeout     = 30 * time.Second

	// openaiPenalty is sent as both presence and frequency penalty.
	openaiPenalty = 0.1
)

// Config holds provider-specific configuration.
type Config struct {
	Type    ProviderType
	BaseURL string
	Model   string
	APIKey  string // unused for the local server

	// HTTPClient replaces the default transport. Tests point it at httptest servers.
	HTTPClient *http.Client
	// Timeout bounds a single Generate call. Zero means DefaultTimeout.
	Timeout time.Duration
}

func (c Config) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

func (c Config) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: c.timeout()}
}

// AvailableProviders lists the vendor ids the factory can build.
func AvailableProviders() []string {
	return []string{
		string(ProviderTypeOpenAI),
		string(ProviderTypeAnthropic),
		string(ProviderTypeGoogle),
		string(ProviderTypeCohere),
		string(ProviderTypeHuggingFace),
		string(ProviderTypeLocal),
	}
}

// RequiresAPIKey reports whether t needs a credential to be constructed.
func RequiresAPIKey(t ProviderType) bool {
	return t != ProviderTypeLocal
}
