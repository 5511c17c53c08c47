package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"cosmic/model"

	"github.com/tidwall/gjson"
)

// CohereProvider implements the Provider interface against Cohere's v1 chat
// endpoint. Cohere ships no Go SDK we depend on, so requests are plain JSON.
type CohereProvider struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	cfg        Config
}

type cohereRequest struct {
	Model       string       `json:"model"`
	Message     string       `json:"message"`
	ChatHistory []CohereTurn `json:"chat_history,omitempty"`
	Preamble    string       `json:"preamble,omitempty"`
	Temperature float64      `json:"temperature"`
	MaxTokens   int          `json:"max_tokens"`
}

// NewCohereProvider creates a Cohere provider.
//
// Defaults: base URL "https://api.cohere.ai", model "command".
func NewCohereProvider(cfg Config) (*CohereProvider, error) {
	if cfg.APIKey == "" {
		return nil, missingKey(string(ProviderTypeCohere))
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.cohere.ai"
	}
	if cfg.Model == "" {
		cfg.Model = "command"
	}

	return &CohereProvider{
		httpClient: cfg.httpClient(),
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		cfg:        cfg,
	}, nil
}

func (p *CohereProvider) Generate(ctx context.Context, messages []model.Message, tag model.ContextTag, o model.Overrides) (*model.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.timeout())
	defer cancel()

	history, message := ConvertToCohereChat(messages)
	if message == "" {
		return nil, requestError(p.Name(), 0, fmt.Errorf("no user message to send"))
	}

	modelName := o.ModelOr(p.model)
	req := cohereRequest{
		Model:       modelName,
		Message:     message,
		ChatHistory: history,
		Preamble:    SystemPrompt(tag),
		Temperature: o.TemperatureOr(DefaultTemperature),
		MaxTokens:   o.MaxTokensOr(DefaultMaxTokens),
	}

	body, err := postJSON(ctx, p.httpClient, p.Name(), p.baseURL+"/v1/chat", p.apiKey, req)
	if err != nil {
		return nil, err
	}

	text := gjson.GetBytes(body, "text")
	if !text.Exists() {
		return nil, decodeError(p.Name(), fmt.Errorf("response has no text field"))
	}
	if strings.TrimSpace(text.String()) == "" {
		return nil, emptyResponse(p.Name())
	}

	usage := gjson.GetManyBytes(body, "meta.billed_units.input_tokens", "meta.billed_units.output_tokens")
	return &model.Result{
		Content:    text.String(),
		TokensUsed: int(usage[0].Int() + usage[1].Int()),
		Model:      modelName,
	}, nil
}

func (p *CohereProvider) Name() string { return string(ProviderTypeCohere) }

func (p *CohereProvider) DefaultModel() string { return p.model }
