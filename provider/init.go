package provider

import (
	"errors"
	"log/slog"

	"cosmic/config"
	"cosmic/model"
)

// Selection is the process-wide provider decision. Provider is nil in
// fallback-only mode.
type Selection struct {
	Provider model.Provider
	// Requested is the configured provider name, kept for status reporting.
	Requested string
	// Reason explains why no provider was selected; empty when one was.
	Reason string
}

// FallbackOnly reports whether no vendor adapter is available.
func (s Selection) FallbackOnly() bool {
	return s.Provider == nil
}

// Select resolves cfg into the adapter used for the lifetime of the process.
//
// Selection never fails: an unknown provider name, a missing credential or
// any other construction error is logged as a warning and the result is
// fallback-only. The names "fallback" and "offline" request fallback-only
// mode explicitly and log nothing above debug.
func Select(cfg config.AIConfig, logger *slog.Logger) Selection {
	if logger == nil {
		logger = slog.Default()
	}
	sel := Selection{Requested: cfg.Provider}

	switch cfg.Provider {
	case "fallback", "offline":
		sel.Reason = "fallback mode requested"
		logger.Debug("[Provider] fallback-only mode requested")
		return sel
	case "":
		sel.Reason = "no provider configured"
		logger.Warn("[Provider] no provider configured, using offline responses")
		return sel
	}

	providerType := MapProviderIDToType(cfg.Provider)
	p, err := NewProvider(Config{
		Type:    providerType,
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	})
	if err != nil {
		sel.Reason = err.Error()

		var cfgErr *ConfigurationError
		switch {
		case errors.Is(err, ErrUnknownProvider):
			logger.Warn("[Provider] unknown provider, using offline responses",
				"provider", cfg.Provider, "available", AvailableProviders())
		case errors.As(err, &cfgErr):
			logger.Warn("[Provider] provider not configured, using offline responses",
				"provider", cfgErr.Provider, "error", cfgErr.Err)
		default:
			logger.Warn("[Provider] failed to initialize provider, using offline responses",
				"provider", cfg.Provider, "error", err)
		}
		return sel
	}

	sel.Provider = p
	logger.Info("[Provider] initialized provider",
		"provider", p.Name(), "type", providerType, "model", p.DefaultModel())
	return sel
}
