package provider

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"cosmic/model"
	"cosmic/provider/testutil"

	"github.com/tidwall/gjson"
)

// fixture is a canned vendor endpoint that records the last request body.
type fixture struct {
	srv      *httptest.Server
	requests atomic.Int32
	lastPath atomic.Value
	lastBody atomic.Value
}

func newFixture(t *testing.T, status int, body string) *fixture {
	t.Helper()
	f := &fixture{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		data, _ := io.ReadAll(r.Body)
		f.lastBody.Store(data)
		f.lastPath.Store(r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

// newSlowFixture never answers before the client gives up.
func newSlowFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fixture) body() []byte {
	b, _ := f.lastBody.Load().([]byte)
	return b
}

func (f *fixture) path() string {
	p, _ := f.lastPath.Load().(string)
	return p
}

func newTestAdapter(t *testing.T, typ ProviderType, baseURL string) model.Provider {
	t.Helper()
	p, err := NewProvider(Config{
		Type:    typ,
		BaseURL: baseURL,
		APIKey:  "test-key",
		Timeout: 200 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewProvider(%s) error = %v", typ, err)
	}
	return p
}

// vendorCase describes one adapter's wire fixtures.
type vendorCase struct {
	typ        ProviderType
	success    string
	wantTokens int
	empty      string // a 2xx body with zero candidates or blank text
	malformed  string // a 2xx body the adapter cannot decode
}

var vendorCases = []vendorCase{
	{
		typ: ProviderTypeOpenAI,
		success: `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-3.5-turbo",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Mars has two moons."}}],
			"usage":{"prompt_tokens":20,"completion_tokens":6,"total_tokens":26}}`,
		wantTokens: 26,
		empty:      `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-3.5-turbo","choices":[]}`,
		malformed:  `{"choices": "nope"`,
	},
	{
		typ: ProviderTypeAnthropic,
		success: `{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-haiku-20240307",
			"content":[{"type":"text","text":"Mars has two moons."}],
			"stop_reason":"end_turn","usage":{"input_tokens":20,"output_tokens":6}}`,
		wantTokens: 26,
		empty: `{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-haiku-20240307",
			"content":[],"stop_reason":"end_turn","usage":{"input_tokens":20,"output_tokens":0}}`,
		malformed: `{"content": [`,
	},
	{
		typ: ProviderTypeGoogle,
		success: `{"candidates":[{"content":{"role":"model","parts":[{"text":"Mars has two moons."}]},"finishReason":"STOP"}],
			"usageMetadata":{"promptTokenCount":20,"candidatesTokenCount":6,"totalTokenCount":26}}`,
		wantTokens: 26,
		empty:      `{"candidates":[]}`,
		malformed:  `{"candidates": [`,
	},
	{
		typ:        ProviderTypeCohere,
		success:    `{"text":"Mars has two moons.","meta":{"billed_units":{"input_tokens":20,"output_tokens":6}}}`,
		wantTokens: 26,
		empty:      `{"text":"   "}`,
		malformed:  `{"text": `,
	},
	{
		typ:        ProviderTypeHuggingFace,
		success:    `[{"generated_text":" Mars has two moons."}]`,
		wantTokens: 0,
		empty:      `[]`,
		malformed:  `[{"generated_text": `,
	},
	{
		typ: ProviderTypeLocal,
		success: `{"model":"llama3.1:latest","message":{"role":"assistant","content":"Mars has two moons."},
			"done":true,"prompt_eval_count":20,"eval_count":6}`,
		wantTokens: 26,
		empty:      `{"model":"llama3.1:latest","message":{"role":"assistant","content":""},"done":true}`,
		malformed:  `{"message": `,
	},
}

func TestAdaptersSuccess(t *testing.T) {
	for _, vc := range vendorCases {
		t.Run(string(vc.typ), func(t *testing.T) {
			f := newFixture(t, http.StatusOK, vc.success)
			p := newTestAdapter(t, vc.typ, f.srv.URL)

			res, err := p.Generate(context.Background(), testutil.TestMessages(), model.ContextCosmic, model.Overrides{})
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if strings.TrimSpace(res.Content) != "Mars has two moons." {
				t.Errorf("Content = %q", res.Content)
			}
			if res.TokensUsed != vc.wantTokens {
				t.Errorf("TokensUsed = %d, want %d", res.TokensUsed, vc.wantTokens)
			}
			if res.Model == "" {
				t.Error("Model is empty")
			}
			if got := f.requests.Load(); got != 1 {
				t.Errorf("server saw %d requests, want 1", got)
			}
			if !strings.Contains(string(f.body()), "AGI Cosmic platform") {
				t.Errorf("request does not carry the cosmic system prompt: %s", f.body())
			}
		})
	}
}

func TestAdaptersNon2xx(t *testing.T) {
	for _, vc := range vendorCases {
		t.Run(string(vc.typ), func(t *testing.T) {
			f := newFixture(t, http.StatusServiceUnavailable, `{"error":{"message":"overloaded","code":503,"status":"UNAVAILABLE"}}`)
			p := newTestAdapter(t, vc.typ, f.srv.URL)

			_, err := p.Generate(context.Background(), testutil.SingleUserMessage("hi"), model.ContextGeneral, model.Overrides{})

			var pe *ProviderError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ProviderError, got %T: %v", err, err)
			}
			if pe.Provider != string(vc.typ) {
				t.Errorf("Provider = %q, want %q", pe.Provider, vc.typ)
			}
			if pe.StatusCode != http.StatusServiceUnavailable {
				t.Errorf("StatusCode = %d, want 503", pe.StatusCode)
			}
			// no retries
			if got := f.requests.Load(); got != 1 {
				t.Errorf("server saw %d requests, want 1", got)
			}
		})
	}
}

func TestAdaptersEmptyResult(t *testing.T) {
	for _, vc := range vendorCases {
		t.Run(string(vc.typ), func(t *testing.T) {
			f := newFixture(t, http.StatusOK, vc.empty)
			p := newTestAdapter(t, vc.typ, f.srv.URL)

			res, err := p.Generate(context.Background(), testutil.SingleUserMessage("hi"), model.ContextCosmic, model.Overrides{})

			if res != nil {
				t.Errorf("expected nil result, got %+v", res)
			}
			var pe *ProviderError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ProviderError, got %T: %v", err, err)
			}
		})
	}
}

func TestAdaptersMalformedBody(t *testing.T) {
	for _, vc := range vendorCases {
		t.Run(string(vc.typ), func(t *testing.T) {
			f := newFixture(t, http.StatusOK, vc.malformed)
			p := newTestAdapter(t, vc.typ, f.srv.URL)

			_, err := p.Generate(context.Background(), testutil.SingleUserMessage("hi"), model.ContextCosmic, model.Overrides{})

			var pe *ProviderError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ProviderError, got %T: %v", err, err)
			}
		})
	}
}

func TestAdaptersTimeout(t *testing.T) {
	for _, vc := range vendorCases {
		t.Run(string(vc.typ), func(t *testing.T) {
			f := newSlowFixture(t)
			p := newTestAdapter(t, vc.typ, f.srv.URL)

			start := time.Now()
			_, err := p.Generate(context.Background(), testutil.SingleUserMessage("hi"), model.ContextCosmic, model.Overrides{})
			elapsed := time.Since(start)

			var pe *ProviderError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ProviderError, got %T: %v", err, err)
			}
			if elapsed > 3*time.Second {
				t.Errorf("Generate() took %v, timeout was not enforced", elapsed)
			}
		})
	}
}

func TestAdaptersCallerCancellation(t *testing.T) {
	for _, vc := range vendorCases {
		t.Run(string(vc.typ), func(t *testing.T) {
			f := newSlowFixture(t)
			p, err := NewProvider(Config{Type: vc.typ, BaseURL: f.srv.URL, APIKey: "test-key"})
			if err != nil {
				t.Fatal(err)
			}

			ctx, cancel := context.WithCancel(context.Background())
			time.AfterFunc(50*time.Millisecond, cancel)

			_, err = p.Generate(ctx, testutil.SingleUserMessage("hi"), model.ContextCosmic, model.Overrides{})
			if err == nil {
				t.Fatal("expected error after cancellation")
			}
		})
	}
}

func TestOpenAIRequestParameters(t *testing.T) {
	f := newFixture(t, http.StatusOK, vendorCases[0].success)
	p := newTestAdapter(t, ProviderTypeOpenAI, f.srv.URL)

	if _, err := p.Generate(context.Background(), testutil.TestMessages(), model.ContextAerospace, model.Overrides{}); err != nil {
		t.Fatal(err)
	}

	body := f.body()
	checks := map[string]float64{
		"temperature":       0.7,
		"max_tokens":        500,
		"presence_penalty":  0.1,
		"frequency_penalty": 0.1,
	}
	for field, want := range checks {
		if got := gjson.GetBytes(body, field).Float(); got != want {
			t.Errorf("%s = %v, want %v", field, got, want)
		}
	}
	if got := gjson.GetBytes(body, "model").String(); got != "gpt-3.5-turbo" {
		t.Errorf("model = %q", got)
	}
	if got := gjson.GetBytes(body, "messages.0.role").String(); got != "system" {
		t.Errorf("first role = %q, want system", got)
	}
	if got := gjson.GetBytes(body, "messages.0.content").String(); !strings.Contains(got, "aerospace engineering expert") {
		t.Errorf("system content = %q", got)
	}
	if got := gjson.GetBytes(body, "messages.#").Int(); got != 4 {
		t.Errorf("messages = %d, want 4", got)
	}
}

func TestAdaptersHonourOverrides(t *testing.T) {
	temp := 0.2
	o := model.Overrides{Model: "custom-model", Temperature: &temp, MaxTokens: 64}

	tests := []struct {
		typ       ProviderType
		modelPath string // "" when the model travels in the URL
		tempPath  string
		maxPath   string
	}{
		{ProviderTypeOpenAI, "model", "temperature", "max_tokens"},
		{ProviderTypeAnthropic, "model", "temperature", "max_tokens"},
		{ProviderTypeGoogle, "", "generationConfig.temperature", "generationConfig.maxOutputTokens"},
		{ProviderTypeCohere, "model", "temperature", "max_tokens"},
		{ProviderTypeHuggingFace, "", "parameters.temperature", "parameters.max_new_tokens"},
		{ProviderTypeLocal, "model", "options.temperature", "options.num_predict"},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			var success string
			for _, vc := range vendorCases {
				if vc.typ == tt.typ {
					success = vc.success
				}
			}
			f := newFixture(t, http.StatusOK, success)
			p := newTestAdapter(t, tt.typ, f.srv.URL)

			if _, err := p.Generate(context.Background(), testutil.SingleUserMessage("hi"), model.ContextCosmic, o); err != nil {
				t.Fatal(err)
			}

			body := f.body()
			if tt.modelPath != "" {
				if got := gjson.GetBytes(body, tt.modelPath).String(); got != "custom-model" {
					t.Errorf("model = %q, want custom-model", got)
				}
			} else if !strings.Contains(f.path(), "custom-model") {
				t.Errorf("path %q does not name the override model", f.path())
			}
			if got := gjson.GetBytes(body, tt.tempPath).Float(); got < 0.19 || got > 0.21 {
				t.Errorf("temperature = %v, want 0.2", got)
			}
			if got := gjson.GetBytes(body, tt.maxPath).Int(); got != 64 {
				t.Errorf("max tokens = %d, want 64", got)
			}
		})
	}
}

func TestCohereWireShape(t *testing.T) {
	f := newFixture(t, http.StatusOK, vendorCases[3].success)
	p := newTestAdapter(t, ProviderTypeCohere, f.srv.URL)

	if _, err := p.Generate(context.Background(), testutil.TestMessages(), model.ContextTechnical, model.Overrides{}); err != nil {
		t.Fatal(err)
	}

	if f.path() != "/v1/chat" {
		t.Errorf("path = %q, want /v1/chat", f.path())
	}
	body := f.body()
	if got := gjson.GetBytes(body, "message").String(); got != "How was it formed?" {
		t.Errorf("message = %q", got)
	}
	if got := gjson.GetBytes(body, "chat_history.1.role").String(); got != "CHATBOT" {
		t.Errorf("chat_history[1].role = %q", got)
	}
	if got := gjson.GetBytes(body, "preamble").String(); !strings.Contains(got, "technical expert") {
		t.Errorf("preamble = %q", got)
	}
}

func TestHuggingFaceWireShape(t *testing.T) {
	f := newFixture(t, http.StatusOK, vendorCases[4].success)
	p := newTestAdapter(t, ProviderTypeHuggingFace, f.srv.URL)

	if _, err := p.Generate(context.Background(), testutil.SingleUserMessage("Tell me about Saturn"), model.ContextGeneral, model.Overrides{}); err != nil {
		t.Fatal(err)
	}

	if f.path() != "/models/microsoft/DialoGPT-large" {
		t.Errorf("path = %q", f.path())
	}
	body := f.body()
	inputs := gjson.GetBytes(body, "inputs").String()
	if !strings.HasPrefix(inputs, "System: You are a helpful AI assistant.") || !strings.HasSuffix(inputs, "User: Tell me about Saturn\nAssistant:") {
		t.Errorf("inputs = %q", inputs)
	}
	if gjson.GetBytes(body, "parameters.return_full_text").Bool() {
		t.Error("return_full_text should be false")
	}
}

func TestAnthropicSystemIsTopLevel(t *testing.T) {
	f := newFixture(t, http.StatusOK, vendorCases[1].success)
	p := newTestAdapter(t, ProviderTypeAnthropic, f.srv.URL)

	if _, err := p.Generate(context.Background(), testutil.TestMessages(), model.ContextAI, model.Overrides{}); err != nil {
		t.Fatal(err)
	}

	body := f.body()
	if got := gjson.GetBytes(body, "system.0.text").String(); !strings.Contains(got, "machine learning expert") {
		t.Errorf("system = %q", got)
	}
	for _, m := range gjson.GetBytes(body, "messages").Array() {
		if role := m.Get("role").String(); role != "user" && role != "assistant" {
			t.Errorf("unexpected role %q in messages", role)
		}
	}
}
