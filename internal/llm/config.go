package llm

import (
	"fmt"
	"os"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects the backend: "anthropic", "openai", "gemini",
	// "openrouter" or "mock".
	Provider string `yaml:"provider"`

	Anthropic  AnthropicConfig  `yaml:"anthropic"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	OpenRouter OpenRouterConfig `yaml:"openrouter"`
	Retry      RetryConfig      `yaml:"retry"`
}

type AnthropicConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"` // Default: "claude-haiku"
	BaseURL string `yaml:"base_url"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"` // Default: "gpt-4o-mini"
	BaseURL string `yaml:"base_url"`
}

type GeminiConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"` // Default: "gemini-flash"
	BaseURL string `yaml:"base_url"`
}

type OpenRouterConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"` // Default: "https://openrouter.ai/api/v1"

	// AppName is sent as X-Title for OpenRouter's app attribution.
	AppName string `yaml:"app_name"`
}

// RetryConfig configures transport-level retries and the wait between
// attempts. MaxAttempts <= 1 disables the retry decorator.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	InitialWait time.Duration `yaml:"initial_wait"`
	MaxWait     time.Duration `yaml:"max_wait"`
	Multiplier  float64       `yaml:"multiplier"`
}

// Backoff returns the wait schedule described by c.
func (c RetryConfig) Backoff() Backoff {
	return Backoff{InitialWait: c.InitialWait, MaxWait: c.MaxWait, Multiplier: c.Multiplier}
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:   "anthropic",
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.0-flash-exp", AppName: "questgen"},
		Retry: RetryConfig{
			MaxAttempts: 1,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     4 * time.Second,
			Multiplier:  2.0,
		},
	}
}

// ApplyEnv overrides c with QUESTGEN_* environment variables.
func (c *Config) ApplyEnv() {
	setIf(&c.Provider, "QUESTGEN_LLM_PROVIDER")

	setIf(&c.Anthropic.APIKey, "QUESTGEN_ANTHROPIC_API_KEY")
	setIf(&c.Anthropic.Model, "QUESTGEN_ANTHROPIC_MODEL")
	setIf(&c.Anthropic.BaseURL, "QUESTGEN_ANTHROPIC_BASE_URL")

	setIf(&c.OpenAI.APIKey, "QUESTGEN_OPENAI_API_KEY")
	setIf(&c.OpenAI.Model, "QUESTGEN_OPENAI_MODEL")
	setIf(&c.OpenAI.BaseURL, "QUESTGEN_OPENAI_BASE_URL")

	setIf(&c.Gemini.APIKey, "QUESTGEN_GEMINI_API_KEY")
	setIf(&c.Gemini.Model, "QUESTGEN_GEMINI_MODEL")
	setIf(&c.Gemini.BaseURL, "QUESTGEN_GEMINI_BASE_URL")

	setIf(&c.OpenRouter.APIKey, "QUESTGEN_OPENROUTER_API_KEY")
	setIf(&c.OpenRouter.Model, "QUESTGEN_OPENROUTER_MODEL")
	setIf(&c.OpenRouter.BaseURL, "QUESTGEN_OPENROUTER_BASE_URL")
}

// ConfigFromEnv builds a Config from defaults plus environment variables.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.ApplyEnv()
	return cfg
}

// DiscoverConfig probes standard API key env vars in priority order
// (Gemini, OpenAI, Anthropic, OpenRouter) and returns a Config for the
// first provider found. Returns (Config{}, false) if none is set.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Provider = "gemini"
		cfg.Gemini.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.Provider = "openai"
		cfg.OpenAI.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Provider = "anthropic"
		cfg.Anthropic.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENROUTER_API_KEY"); k != "" {
		cfg.Provider = "openrouter"
		cfg.OpenRouter.APIKey = k
		return cfg, true
	}
	return Config{}, false
}

// Validate checks that the selected provider has its API key.
func (c Config) Validate() error {
	switch c.Provider {
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("QUESTGEN_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("QUESTGEN_OPENAI_API_KEY is required for the openai provider")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("QUESTGEN_GEMINI_API_KEY is required for the gemini provider")
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("QUESTGEN_OPENROUTER_API_KEY is required for the openrouter provider")
		}
	case "mock":
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}

func setIf(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
