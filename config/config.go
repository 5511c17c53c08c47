package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ProviderConfig holds the credentials and endpoint for one AI vendor.
type ProviderConfig struct {
	ID      string `toml:"id"`
	APIKey  string `toml:"api_key,omitempty"`
	BaseURL string `toml:"base_url,omitempty"`
	Model   string `toml:"model,omitempty"`
}

type ServerConfig struct {
	Port      string  `toml:"port"`
	JWTSecret string  `toml:"jwt_secret,omitempty"`
	RateLimit float64 `toml:"rate_limit"`
}

type AISection struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model,omitempty"`
	BaseURL  string `toml:"base_url,omitempty"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// UserConfig is the on-disk TOML shape.
type UserConfig struct {
	DataDirectory string           `toml:"data_directory"`
	Server        ServerConfig     `toml:"server"`
	AI            AISection        `toml:"ai"`
	Log           LogConfig        `toml:"log"`
	Providers     []ProviderConfig `toml:"providers"`
}

// Config is the resolved process configuration. It is built once by Load
// and treated as read-only afterwards.
type Config struct {
	DataDirectory string
	Port          string
	JWTSecret     string
	RateLimit     float64

	Provider string
	Model    string
	BaseURL  string

	LogLevel  string
	LogFormat string

	providers map[string]ProviderConfig
}

// AIConfig is the provider configuration handed to the selector.
type AIConfig struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
}

// envKeys maps provider ids to the environment variables holding their API keys.
var envKeys = map[string]string{
	"openai":      "OPENAI_API_KEY",
	"anthropic":   "ANTHROPIC_API_KEY",
	"google":      "GOOGLE_API_KEY",
	"cohere":      "COHERE_API_KEY",
	"huggingface": "HUGGINGFACE_API_KEY",
}

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

// ProviderSettings returns the stored settings for id.
func (c *Config) ProviderSettings(id string) ProviderConfig {
	p, ok := c.providers[id]
	if !ok {
		return ProviderConfig{ID: id}
	}
	return p
}

// AIConfig resolves the configuration for the selected provider. The global
// model and base URL take precedence over the per-provider values.
func (c *Config) AIConfig() AIConfig {
	p := c.ProviderSettings(c.Provider)

	ai := AIConfig{
		Provider: c.Provider,
		APIKey:   p.APIKey,
		BaseURL:  p.BaseURL,
		Model:    p.Model,
	}
	if c.Model != "" {
		ai.Model = c.Model
	}
	if c.BaseURL != "" {
		ai.BaseURL = c.BaseURL
	}
	return ai
}

func (c *Config) applyUserConfig(u *UserConfig) {
	if u.DataDirectory != "" {
		c.DataDirectory = u.DataDirectory
	}
	if u.Server.Port != "" {
		c.Port = u.Server.Port
	}
	if u.Server.JWTSecret != "" {
		c.JWTSecret = u.Server.JWTSecret
	}
	if u.Server.RateLimit != 0 {
		c.RateLimit = u.Server.RateLimit
	}
	if u.AI.Provider != "" {
		c.Provider = u.AI.Provider
	}
	c.Model = u.AI.Model
	c.BaseURL = u.AI.BaseURL
	if u.Log.Level != "" {
		c.LogLevel = u.Log.Level
	}
	if u.Log.Format != "" {
		c.LogFormat = u.Log.Format
	}

	for _, p := range u.Providers {
		id := CanonicalProviderID(p.ID)
		if id == "" {
			continue
		}
		merged := c.ProviderSettings(id)
		merged.ID = id
		if p.APIKey != "" {
			merged.APIKey = p.APIKey
		}
		if p.BaseURL != "" {
			merged.BaseURL = p.BaseURL
		}
		if p.Model != "" {
			merged.Model = p.Model
		}
		c.providers[id] = merged
	}
}

func (c *Config) applyEnvOverrides() error {
	if provider := os.Getenv("AI_PROVIDER"); provider != "" {
		c.Provider = provider
	}
	if model := os.Getenv("AI_MODEL"); model != "" {
		c.Model = model
	}
	if baseURL := os.Getenv("AI_BASE_URL"); baseURL != "" {
		c.BaseURL = baseURL
	}
	if port := os.Getenv("PORT"); port != "" {
		c.Port = port
	}
	if dataDir := os.Getenv("COSMIC_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		c.JWTSecret = secret
	}
	if level := os.Getenv("COSMIC_LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}
	if format := os.Getenv("COSMIC_LOG_FORMAT"); format != "" {
		c.LogFormat = format
	}
	if limit := os.Getenv("COSMIC_RATE_LIMIT"); limit != "" {
		v, err := strconv.ParseFloat(limit, 64)
		if err != nil {
			return fmt.Errorf("invalid COSMIC_RATE_LIMIT %q: %w", limit, err)
		}
		c.RateLimit = v
	}

	for id, env := range envKeys {
		if key := os.Getenv(env); key != "" {
			p := c.ProviderSettings(id)
			p.APIKey = key
			c.providers[id] = p
		}
	}
	if url := os.Getenv("LOCAL_MODEL_URL"); url != "" {
		p := c.ProviderSettings("local")
		p.BaseURL = url
		c.providers["local"] = p
	}

	return nil
}

// scrubPlaceholders clears template API keys such as "your-openai-api-key-here".
func (c *Config) scrubPlaceholders() {
	for id, p := range c.providers {
		if IsPlaceholderKey(p.APIKey) {
			p.APIKey = ""
			c.providers[id] = p
		}
	}
}

// IsPlaceholderKey reports whether key is a template value rather than a credential.
func IsPlaceholderKey(key string) bool {
	k := strings.ToLower(strings.TrimSpace(key))
	return strings.HasPrefix(k, "your-") && strings.HasSuffix(k, "-here")
}

// Load resolves the configuration: defaults, then the TOML file named by
// COSMIC_CONFIG (default ./cosmic.toml, optional), then a .env file
// (COSMIC_ENV_FILE, default .env, optional), then the process environment.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if err := loadEnvFile(getEnv("COSMIC_ENV_FILE", ".env")); err != nil {
		return nil, err
	}

	configPath := getEnv("COSMIC_CONFIG", DefaultConfigFile)
	userCfg, err := LoadUserConfigFromPath(configPath)
	if err != nil {
		return nil, err
	}
	if userCfg != nil {
		cfg.applyUserConfig(userCfg)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	cfg.scrubPlaceholders()
	cfg.Provider = CanonicalProviderID(cfg.Provider)

	if err := EnsureDir(cfg.DataDir()); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// loadEnvFile loads path into the environment without overriding variables
// that are already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
