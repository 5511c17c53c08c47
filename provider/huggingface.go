package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"cosmic/model"

	"github.com/tidwall/gjson"
)

// HuggingFaceProvider implements the Provider interface against the Hugging
// Face inference API text-generation task. The window is flattened into one
// prompt with BuildTextPrompt.
type HuggingFaceProvider struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	cfg        Config
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
	Options    hfOptions    `json:"options"`
}

type hfParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	ReturnFullText bool    `json:"return_full_text"`
}

type hfOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

// NewHuggingFaceProvider creates a Hugging Face inference provider.
//
// Defaults: base URL "https://api-inference.huggingface.co",
// model "microsoft/DialoGPT-large".
func NewHuggingFaceProvider(cfg Config) (*HuggingFaceProvider, error) {
	if cfg.APIKey == "" {
		return nil, missingKey(string(ProviderTypeHuggingFace))
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api-inference.huggingface.co"
	}
	if cfg.Model == "" {
		cfg.Model = "microsoft/DialoGPT-large"
	}

	return &HuggingFaceProvider{
		httpClient: cfg.httpClient(),
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		cfg:        cfg,
	}, nil
}

func (p *HuggingFaceProvider) Generate(ctx context.Context, messages []model.Message, tag model.ContextTag, o model.Overrides) (*model.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.timeout())
	defer cancel()

	modelName := o.ModelOr(p.model)
	req := hfRequest{
		Inputs: BuildTextPrompt(SystemPrompt(tag), messages),
		Parameters: hfParameters{
			MaxNewTokens: o.MaxTokensOr(DefaultMaxTokens),
			Temperature:  o.TemperatureOr(DefaultTemperature),
		},
		Options: hfOptions{WaitForModel: true},
	}

	body, err := postJSON(ctx, p.httpClient, p.Name(), p.baseURL+"/models/"+modelName, p.apiKey, req)
	if err != nil {
		return nil, err
	}

	// The text-generation task answers [{"generated_text": ...}]; some
	// deployments answer a bare object.
	parsed := gjson.ParseBytes(body)
	var generated gjson.Result
	switch {
	case parsed.IsArray():
		if len(parsed.Array()) == 0 {
			return nil, emptyResponse(p.Name())
		}
		generated = parsed.Get("0.generated_text")
	case parsed.IsObject():
		generated = parsed.Get("generated_text")
	}
	if !generated.Exists() {
		return nil, decodeError(p.Name(), fmt.Errorf("response has no generated_text"))
	}

	text := strings.TrimSpace(generated.String())
	if text == "" {
		return nil, emptyResponse(p.Name())
	}

	// The inference API does not report token usage
	return &model.Result{
		Content: text,
		Model:   modelName,
	}, nil
}

func (p *HuggingFaceProvider) Name() string { return string(ProviderTypeHuggingFace) }

func (p *HuggingFaceProvider) DefaultModel() string { return p.model }
