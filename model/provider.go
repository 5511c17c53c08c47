package model

import "context"

// Provider abstracts a text-generation vendor (OpenAI, Anthropic, Google,
// Cohere, Hugging Face, a local model server) behind one call.
//
// This interface is defined in the model package (not provider package) to avoid
// import cycles: provider implementations import model, and the assistant
// facade can hold a Provider without importing every vendor SDK.
type Provider interface {
	// Generate sends the trailing message window with the system prompt for
	// tag and returns the first candidate's text. Implementations never
	// return an empty Content with a nil error.
	Generate(ctx context.Context, messages []Message, tag ContextTag, overrides Overrides) (*Result, error)

	// Name returns the provider id ("openai", "anthropic", ...).
	Name() string

	// DefaultModel returns the model used when no override is supplied.
	DefaultModel() string
}

// Overrides carries the per-session settings an adapter honours.
// Zero values mean "use the adapter default".
type Overrides struct {
	Model       string
	Temperature *float64
	MaxTokens   int
}

// ModelOr returns the override model or def.
func (o Overrides) ModelOr(def string) string {
	if o.Model != "" {
		return o.Model
	}
	return def
}

// TemperatureOr returns the override temperature or def.
func (o Overrides) TemperatureOr(def float64) float64 {
	if o.Temperature != nil {
		return *o.Temperature
	}
	return def
}

// MaxTokensOr returns the override token limit or def.
func (o Overrides) MaxTokensOr(def int) int {
	if o.MaxTokens > 0 {
		return o.MaxTokens
	}
	return def
}

// Result is the normalized reply shape returned by every adapter and by the
// fallback path.
type Result struct {
	Content    string
	TokensUsed int
	Model      string
}

// FallbackModel is the model name reported for offline responses.
const FallbackModel = "fallback"
