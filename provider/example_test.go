package provider_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"cosmic/config"
	"cosmic/model"
	"cosmic/provider"
)

// ExampleNewProvider shows building one adapter directly.
func ExampleNewProvider() {
	p, err := provider.NewProvider(provider.Config{
		Type:  provider.ProviderTypeLocal,
		Model: "llama3.1:latest",
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(p.Name(), p.DefaultModel())
	// Output: local llama3.1:latest
}

// ExampleNewProvider_missingKey shows the error a hosted vendor returns
// without a credential.
func ExampleNewProvider_missingKey() {
	_, err := provider.NewProvider(provider.Config{Type: provider.ProviderTypeCohere})
	fmt.Println(err)
	// Output: provider cohere misconfigured: api key is required
}

// ExampleSelect shows the startup decision. A missing key never stops the
// process; the assistant answers offline instead.
func ExampleSelect() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	sel := provider.Select(config.AIConfig{Provider: "openai"}, logger)
	fmt.Println("fallback only:", sel.FallbackOnly())
	// Output: fallback only: true
}

func ExampleMapProviderIDToType() {
	fmt.Println(provider.MapProviderIDToType("gemini"))
	fmt.Println(provider.MapProviderIDToType("ollama"))
	// Output:
	// google
	// local
}

// ExampleProviderError shows inspecting a failed call.
func ExampleProviderError() {
	p, _ := provider.NewProvider(provider.Config{
		Type:    provider.ProviderTypeLocal,
		BaseURL: "http://127.0.0.1:1", // nothing listens here
	})

	_, err := p.Generate(context.Background(),
		[]model.Message{{Role: model.RoleUser, Content: "Hello"}},
		model.ContextCosmic, model.Overrides{})

	var pe *provider.ProviderError
	if errors.As(err, &pe) {
		fmt.Println(pe.Provider, pe.Op)
	}
	// Output: local request
}
