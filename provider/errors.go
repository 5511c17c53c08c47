package provider

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAPIKey is wrapped by ConfigurationError when a hosted vendor has no credential.
	ErrMissingAPIKey = errors.New("api key is required")

	// ErrEmptyResponse means the vendor answered 2xx with no usable text.
	ErrEmptyResponse = errors.New("empty response from provider")

	ErrUnknownProvider = errors.New("unknown provider")
)

// ConfigurationError is returned when an adapter cannot be constructed from
// its configuration. It never reaches request handling; Select logs it and
// drops to fallback-only mode.
type ConfigurationError struct {
	Provider string
	Err      error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("provider %s misconfigured: %v", e.Provider, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ProviderError is the single failure kind surfaced by Generate.
type ProviderError struct {
	Provider   string
	Op         string // "request", "decode", "response"
	StatusCode int    // 0 when no HTTP response was received
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s failed (status %d): %v", e.Provider, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func requestError(provider string, status int, err error) *ProviderError {
	return &ProviderError{Provider: provider, Op: "request", StatusCode: status, Err: err}
}

func decodeError(provider string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Op: "decode", Err: err}
}

func emptyResponse(provider string) *ProviderError {
	return &ProviderError{Provider: provider, Op: "response", Err: ErrEmptyResponse}
}

func missingKey(provider string) *ConfigurationError {
	return &ConfigurationError{Provider: provider, Err: ErrMissingAPIKey}
}
