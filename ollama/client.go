// Package ollama is a thin client over a local Ollama model server.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

const (
	DefaultURL   = "http://localhost:11434"
	DefaultModel = "llama3.1:latest"
)

// ErrModelNotInstalled is returned by Ping when the server is up but the
// configured model has not been pulled.
var ErrModelNotInstalled = errors.New("model not installed")

type Client struct {
	client *api.Client
	model  string
}

// Options are the sampling parameters forwarded to the server.
type Options struct {
	Temperature float64
	MaxTokens   int // sent as num_predict
}

// Reply is the complete answer to a non-streaming chat request.
type Reply struct {
	Content      string
	Model        string
	PromptTokens int
	OutputTokens int
}

func NewClient(baseURL, model string, httpClient *http.Client) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if model == "" {
		model = DefaultModel
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("invalid Ollama URL: %q has no scheme or host", baseURL)
	}

	client := api.NewClient(parsedURL, httpClient)

	return &Client{
		client: client,
		model:  model,
	}, nil
}

// Chat sends messages with streaming disabled and returns the full reply.
// model overrides the client's default when non-empty.
func (c *Client) Chat(ctx context.Context, model string, messages []api.Message, opts Options) (*Reply, error) {
	if model == "" {
		model = c.model
	}

	stream := false
	req := &api.ChatRequest{
		Model:    model,
		Messages: messages,
		Stream:   &stream,
		Options: map[string]any{
			"temperature": opts.Temperature,
			"num_predict": opts.MaxTokens,
		},
	}

	reply := &Reply{Model: model}
	var content strings.Builder
	respFunc := func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		if resp.Model != "" {
			reply.Model = resp.Model
		}
		if resp.Done {
			reply.PromptTokens = resp.PromptEvalCount
			reply.OutputTokens = resp.EvalCount
		}
		return nil
	}

	if err := c.client.Chat(ctx, req, respFunc); err != nil {
		return nil, err
	}

	reply.Content = content.String()
	return reply, nil
}

// StatusCode returns the HTTP status carried by an Ollama API error, or 0.
func StatusCode(err error) int {
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

type ModelInfo struct {
	Name string
	Size int64
}

func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	resp, err := c.client.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	models := make([]ModelInfo, len(resp.Models))
	for i, model := range resp.Models {
		models[i] = ModelInfo{
			Name: model.Name,
			Size: model.Size,
		}
	}

	return models, nil
}

func (c *Client) GetModel() string {
	return c.model
}

// Ping checks that the server answers and has the client's model pulled.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	models, err := c.ListModels(ctx)
	if err != nil {
		return err
	}
	for _, m := range models {
		if withTag(m.Name) == withTag(c.model) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrModelNotInstalled, c.model)
}

// withTag appends the implicit ":latest" tag Ollama applies to bare names.
func withTag(name string) string {
	if strings.Contains(name, ":") {
		return name
	}
	return name + ":latest"
}
