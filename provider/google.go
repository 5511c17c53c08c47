package provider

import (
	"context"
	"errors"
	"strings"

	"cosmic/model"

	"google.golang.org/genai"
)

// GoogleProvider implements the Provider interface against the Gemini API
// using the google.golang.org/genai SDK.
type GoogleProvider struct {
	client *genai.Client
	model  string
	cfg    Config
}

// NewGoogleProvider creates a Gemini provider.
//
// Defaults: model "gemini-1.5-flash". BaseURL overrides the Gemini endpoint.
// Returns a *ConfigurationError if the API key is missing.
func NewGoogleProvider(cfg Config) (*GoogleProvider, error) {
	if cfg.APIKey == "" {
		return nil, missingKey(string(ProviderTypeGoogle))
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash"
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.httpClient(),
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	// NewClient does no network I/O for the Gemini backend
	client, err := genai.NewClient(context.Background(), clientCfg)
	if err != nil {
		return nil, &ConfigurationError{Provider: string(ProviderTypeGoogle), Err: err}
	}

	return &GoogleProvider{
		client: client,
		model:  cfg.Model,
		cfg:    cfg,
	}, nil
}

// Generate implements Provider.Generate with one GenerateContent call.
func (p *GoogleProvider) Generate(ctx context.Context, messages []model.Message, tag model.ContextTag, o model.Overrides) (*model.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.timeout())
	defer cancel()

	temp := float32(o.TemperatureOr(DefaultTemperature))
	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemPrompt(tag), genai.RoleUser),
		Temperature:       &temp,
		MaxOutputTokens:   int32(o.MaxTokensOr(DefaultMaxTokens)),
	}

	modelName := o.ModelOr(p.model)
	res, err := p.client.Models.GenerateContent(ctx, modelName, ConvertToGenAIContents(messages), genCfg)
	if err != nil {
		return nil, requestError(p.Name(), googleStatus(err), err)
	}

	if len(res.Candidates) == 0 {
		return nil, emptyResponse(p.Name())
	}
	text := res.Text()
	if strings.TrimSpace(text) == "" {
		return nil, emptyResponse(p.Name())
	}

	tokens := 0
	if res.UsageMetadata != nil {
		tokens = int(res.UsageMetadata.TotalTokenCount)
	}
	return &model.Result{
		Content:    text,
		TokensUsed: tokens,
		Model:      modelName,
	}, nil
}

func (p *GoogleProvider) Name() string { return string(ProviderTypeGoogle) }

func (p *GoogleProvider) DefaultModel() string { return p.model }

// googleStatus extracts the HTTP code from a genai API error.
func googleStatus(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code
	}
	return 0
}
