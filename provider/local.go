package provider

import (
	"context"
	"fmt"
	"strings"

	"cosmic/model"
	"cosmic/ollama"
)

// LocalProvider wraps ollama.Client to implement the Provider interface for
// a model server on the local network. No API key is needed.
type LocalProvider struct {
	client *ollama.Client
	cfg    Config
}

// NewLocalProvider creates a local provider.
//
// Defaults: base URL "http://localhost:11434", model "llama3.1:latest".
// Construction does not contact the server.
func NewLocalProvider(cfg Config) (*LocalProvider, error) {
	client, err := ollama.NewClient(cfg.BaseURL, cfg.Model, cfg.httpClient())
	if err != nil {
		return nil, &ConfigurationError{Provider: string(ProviderTypeLocal), Err: err}
	}

	return &LocalProvider{
		client: client,
		cfg:    cfg,
	}, nil
}

func (p *LocalProvider) Generate(ctx context.Context, messages []model.Message, tag model.ContextTag, o model.Overrides) (*model.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.timeout())
	defer cancel()

	reply, err := p.client.Chat(ctx, o.Model, ConvertToOllamaMessages(SystemPrompt(tag), messages), ollama.Options{
		Temperature: o.TemperatureOr(DefaultTemperature),
		MaxTokens:   o.MaxTokensOr(DefaultMaxTokens),
	})
	if err != nil {
		return nil, requestError(p.Name(), ollama.StatusCode(err), fmt.Errorf("local model server: %w", err))
	}

	if strings.TrimSpace(reply.Content) == "" {
		return nil, emptyResponse(p.Name())
	}

	return &model.Result{
		Content:    reply.Content,
		TokensUsed: reply.PromptTokens + reply.OutputTokens,
		Model:      reply.Model,
	}, nil
}

func (p *LocalProvider) Name() string { return string(ProviderTypeLocal) }

func (p *LocalProvider) DefaultModel() string { return p.client.GetModel() }

// Ping checks that the local server answers.
func (p *LocalProvider) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}
