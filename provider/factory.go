package provider

import (
	"fmt"

	"cosmic/config"
	"cosmic/model"
)

// NewProvider creates a provider based on configuration.
//
// This is the centralized factory function for creating any provider type.
// It dispatches to the vendor constructor based on Config.Type.
//
// Returns an error if:
//   - The provider type is unknown (wraps ErrUnknownProvider)
//   - A hosted vendor has no API key (*ConfigurationError wrapping ErrMissingAPIKey)
//   - The vendor constructor fails (e.g., invalid local server URL)
//
// Example:
//
//	cfg := provider.Config{
//	    Type:   provider.ProviderTypeAnthropic,
//	    APIKey: "sk-ant-...",
//	}
//	p, err := provider.NewProvider(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
func NewProvider(cfg Config) (model.Provider, error) {
	var (
		p   model.Provider
		err error
	)

	// Each case assigns only on success so a failed constructor never
	// yields a non-nil interface holding a nil pointer.
	switch cfg.Type {
	case ProviderTypeOpenAI:
		var op *OpenAIProvider
		if op, err = NewOpenAIProvider(cfg); err == nil {
			p = op
		}
	case ProviderTypeAnthropic:
		var ap *AnthropicProvider
		if ap, err = NewAnthropicProvider(cfg); err == nil {
			p = ap
		}
	case ProviderTypeGoogle:
		var gp *GoogleProvider
		if gp, err = NewGoogleProvider(cfg); err == nil {
			p = gp
		}
	case ProviderTypeCohere:
		var cp *CohereProvider
		if cp, err = NewCohereProvider(cfg); err == nil {
			p = cp
		}
	case ProviderTypeHuggingFace:
		var hp *HuggingFaceProvider
		if hp, err = NewHuggingFaceProvider(cfg); err == nil {
			p = hp
		}
	case ProviderTypeLocal:
		var lp *LocalProvider
		if lp, err = NewLocalProvider(cfg); err == nil {
			p = lp
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Type)
	}

	if err != nil {
		return nil, err
	}
	return p, nil
}

// MapProviderIDToType converts a configured provider name to a ProviderType.
//
// Matching is case-insensitive and accepts the aliases known to
// config.CanonicalProviderID:
//   - "gemini" → ProviderTypeGoogle
//   - "ollama" → ProviderTypeLocal
//   - "hf", "hugging-face" → ProviderTypeHuggingFace
//   - "claude" → ProviderTypeAnthropic
//
// For unknown IDs, returns the ID cast as ProviderType (factory will error).
func MapProviderIDToType(id string) ProviderType {
	return ProviderType(config.CanonicalProviderID(id))
}
