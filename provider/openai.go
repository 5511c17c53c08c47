package provider

import (
	"context"
	"errors"
	"strings"

	"cosmic/model"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIProvider implements the Provider interface using OpenAI's official API.
// It uses the official OpenAI Go SDK for direct OpenAI API access.
type OpenAIProvider struct {
	client  openai.Client
	model   string
	baseURL string
	cfg     Config
}

// NewOpenAIProvider creates a new OpenAI provider instance.
//
// Defaults: base URL "https://api.openai.com/v1", model "gpt-3.5-turbo".
// Returns a *ConfigurationError if the API key is missing.
func NewOpenAIProvider(cfg Config) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, missingKey(string(ProviderTypeOpenAI))
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-3.5-turbo"
	}

	// One attempt per request; the assistant falls back instead of retrying
	client := openai.NewClient(
		option.WithBaseURL(cfg.BaseURL),
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(cfg.httpClient()),
		option.WithMaxRetries(0),
	)

	return &OpenAIProvider{
		client:  client,
		model:   cfg.Model,
		baseURL: cfg.BaseURL,
		cfg:     cfg,
	}, nil
}

// Generate implements Provider.Generate with a single non-streaming completion.
func (p *OpenAIProvider) Generate(ctx context.Context, messages []model.Message, tag model.ContextTag, o model.Overrides) (*model.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.timeout())
	defer cancel()

	modelName := o.ModelOr(p.model)
	params := openai.ChatCompletionNewParams{
		Model:            openai.ChatModel(modelName),
		Messages:         ConvertToOpenAIMessages(SystemPrompt(tag), messages),
		MaxTokens:        openai.Int(int64(o.MaxTokensOr(DefaultMaxTokens))),
		Temperature:      openai.Float(o.TemperatureOr(DefaultTemperature)),
		PresencePenalty:  openai.Float(openaiPenalty),
		FrequencyPenalty: openai.Float(openaiPenalty),
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, requestError(p.Name(), openAIStatus(err), err)
	}

	if len(resp.Choices) == 0 {
		return nil, emptyResponse(p.Name())
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return nil, emptyResponse(p.Name())
	}

	if resp.Model != "" {
		modelName = resp.Model
	}
	return &model.Result{
		Content:    content,
		TokensUsed: int(resp.Usage.TotalTokens),
		Model:      modelName,
	}, nil
}

func (p *OpenAIProvider) Name() string { return string(ProviderTypeOpenAI) }

func (p *OpenAIProvider) DefaultModel() string { return p.model }

func openAIStatus(err error) int {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
