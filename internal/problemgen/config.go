package problemgen

import (
	"os"
	"strconv"
	"time"

	"github.com/abhisek/questgen/internal/llm"
)

// Config controls the behavior of the Orchestrator.
type Config struct {
	// MaxRetries bounds retries beyond the initial attempt.
	MaxRetries int `yaml:"max_retries"`

	// CallTimeout caps each backend request. Zero disables the cap.
	CallTimeout time.Duration `yaml:"call_timeout"`

	// MaxTokens is the token budget for the LLM response.
	MaxTokens int `yaml:"max_tokens"`

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64 `yaml:"temperature"`

	// MaxPriorQuestions is the maximum number of prior questions
	// to include in the prompt for deduplication.
	MaxPriorQuestions int `yaml:"max_prior_questions"`

	// Fallback enables template fallback when generation is exhausted.
	Fallback bool `yaml:"fallback"`

	// Backoff is the pause between retries after backend failures.
	Backoff llm.Backoff `yaml:"backoff"`
}

// DefaultConfig returns a Config with recommended defaults.
func DefaultConfig() Config {
	return Config{
		MaxRetries:        3,
		CallTimeout:       30 * time.Second,
		MaxTokens:         1024,
		Temperature:       0.7,
		MaxPriorQuestions: 8,
		Fallback:          true,
		Backoff: llm.Backoff{
			InitialWait: 250 * time.Millisecond,
			MaxWait:     2 * time.Second,
			Multiplier:  2,
		},
	}
}

// ApplyEnv overrides c with QUESTGEN_* environment variables. Malformed
// values are ignored.
func (c *Config) ApplyEnv() {
	if v, err := strconv.Atoi(os.Getenv("QUESTGEN_MAX_RETRIES")); err == nil && v >= 0 {
		c.MaxRetries = v
	}
	if v, err := time.ParseDuration(os.Getenv("QUESTGEN_CALL_TIMEOUT")); err == nil {
		c.CallTimeout = v
	}
	if v, err := strconv.Atoi(os.Getenv("QUESTGEN_MAX_TOKENS")); err == nil && v > 0 {
		c.MaxTokens = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("QUESTGEN_TEMPERATURE"), 64); err == nil {
		c.Temperature = v
	}
	if v, err := strconv.ParseBool(os.Getenv("QUESTGEN_TEMPLATE_FALLBACK")); err == nil {
		c.Fallback = v
	}
}

// ConfigFromEnv returns DefaultConfig with environment overrides applied.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.ApplyEnv()
	return cfg
}
