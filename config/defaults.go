package config

// DefaultConfigFile is read when COSMIC_CONFIG is unset.
const DefaultConfigFile = "cosmic.toml"

// DefaultProvider is selected when AI_PROVIDER and the config file are silent.
const DefaultProvider = "huggingface"

func defaultConfig() *Config {
	cfg := &Config{
		DataDirectory: "~/.local/share/cosmic",
		Port:          "5000",
		RateLimit:     5,
		Provider:      DefaultProvider,
		LogLevel:      "info",
		LogFormat:     "json",
		providers:     make(map[string]ProviderConfig),
	}
	for _, p := range DefaultProviderConfigs() {
		cfg.providers[p.ID] = p
	}
	return cfg
}

// DefaultProviderConfigs returns the endpoint and model defaults for every vendor.
func DefaultProviderConfigs() []ProviderConfig {
	return []ProviderConfig{
		{ID: "openai", BaseURL: "https://api.openai.com/v1", Model: "gpt-3.5-turbo"},
		{ID: "anthropic", BaseURL: "https://api.anthropic.com", Model: "claude-3-haiku-20240307"},
		{ID: "google", BaseURL: "https://generativelanguage.googleapis.com", Model: "gemini-1.5-flash"},
		{ID: "cohere", BaseURL: "https://api.cohere.ai", Model: "command"},
		{ID: "huggingface", BaseURL: "https://api-inference.huggingface.co", Model: "microsoft/DialoGPT-large"},
		{ID: "local", BaseURL: "http://localhost:11434", Model: "llama3.1:latest"},
	}
}

func GenerateConfigTemplate() string {
	return `# Cosmic configuration
# Location: ./cosmic.toml (override with COSMIC_CONFIG)
# This file uses TOML format: https://toml.io
# Environment variables (AI_PROVIDER, OPENAI_API_KEY, ...) take precedence.

# Directory holding the chat session database
data_directory = "~/.local/share/cosmic"

[server]
port = "5000"
# HS256 secret for bearer tokens; protected routes answer 401 when empty
jwt_secret = ""
# Requests per second per client on /api/chat and /api/ai (0 disables)
rate_limit = 5

[ai]
# One of: openai, anthropic, google, cohere, huggingface, local, fallback
provider = "huggingface"
# Optional model override applied to the selected provider
model = ""

[log]
level = "info"   # debug, info, warn, error
format = "json"  # json or text

[[providers]]
id = "openai"
api_key = ""
base_url = "https://api.openai.com/v1"
model = "gpt-3.5-turbo"

[[providers]]
id = "local"
base_url = "http://localhost:11434"
model = "llama3.1:latest"
`
}
