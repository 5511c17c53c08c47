package provider

import (
	"context"
	"errors"
	"strings"

	"cosmic/model"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider implements the Provider interface using Anthropic's official API.
// It uses the official Anthropic Go SDK for direct Claude API access.
type AnthropicProvider struct {
	client  *anthropic.Client
	model   anthropic.Model
	baseURL string
	cfg     Config
}

// NewAnthropicProvider creates a new Anthropic provider instance.
//
// Defaults: base URL "https://api.anthropic.com", model Claude 3 Haiku.
// Returns a *ConfigurationError if the API key is missing.
func NewAnthropicProvider(cfg Config) (*AnthropicProvider, error) {
	if cfg.APIKey == "" {
		return nil, missingKey(string(ProviderTypeAnthropic))
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com"
	}

	var anthropicModel anthropic.Model
	if cfg.Model == "" {
		anthropicModel = anthropic.ModelClaude_3_Haiku_20240307
	} else {
		anthropicModel = anthropic.Model(cfg.Model)
	}

	client := anthropic.NewClient(
		option.WithBaseURL(cfg.BaseURL),
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(cfg.httpClient()),
		option.WithMaxRetries(0),
	)

	return &AnthropicProvider{
		client:  &client,
		model:   anthropicModel,
		baseURL: cfg.BaseURL,
		cfg:     cfg,
	}, nil
}

// Generate implements Provider.Generate with a single Messages API call.
func (p *AnthropicProvider) Generate(ctx context.Context, messages []model.Message, tag model.ContextTag, o model.Overrides) (*model.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.timeout())
	defer cancel()

	anthropicMessages, system := convertToAnthropicMessages(SystemPrompt(tag), messages)
	modelName := anthropic.Model(o.ModelOr(string(p.model)))

	params := anthropic.MessageNewParams{
		Model:       modelName,
		Messages:    anthropicMessages,
		MaxTokens:   int64(o.MaxTokensOr(DefaultMaxTokens)),
		System:      system,
		Temperature: anthropic.Float(o.TemperatureOr(DefaultTemperature)),
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, requestError(p.Name(), anthropicStatus(err), err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return nil, emptyResponse(p.Name())
	}

	if msg.Model != "" {
		modelName = msg.Model
	}
	return &model.Result{
		Content:    text.String(),
		TokensUsed: int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		Model:      string(modelName),
	}, nil
}

func (p *AnthropicProvider) Name() string { return string(ProviderTypeAnthropic) }

func (p *AnthropicProvider) DefaultModel() string { return string(p.model) }

func anthropicStatus(err error) int {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
