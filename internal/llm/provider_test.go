package llm

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}

	ctx = WithPurpose(ctx, "question-gen")
	if p := PurposeFrom(ctx); p != "question-gen" {
		t.Fatalf("expected 'question-gen', got %q", p)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "anthropic without key",
			cfg:     Config{Provider: "anthropic"},
			wantErr: true,
		},
		{
			name:    "anthropic with key",
			cfg:     Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk-test"}},
			wantErr: false,
		},
		{
			name:    "openai without key",
			cfg:     Config{Provider: "openai"},
			wantErr: true,
		},
		{
			name:    "openai with key",
			cfg:     Config{Provider: "openai", OpenAI: OpenAIConfig{APIKey: "sk-test"}},
			wantErr: false,
		},
		{
			name:    "mock needs no key",
			cfg:     Config{Provider: "mock"},
			wantErr: false,
		},
		{
			name:    "unknown provider",
			cfg:     Config{Provider: "unknown"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAttemptContext(t *testing.T) {
	run, attempt := AttemptFrom(context.Background())
	if run != "" || attempt != 0 {
		t.Fatalf("expected zero values, got %q/%d", run, attempt)
	}

	ctx := WithAttempt(context.Background(), "run-7", 2)
	run, attempt = AttemptFrom(ctx)
	if run != "run-7" || attempt != 2 {
		t.Fatalf("got %q/%d, want run-7/2", run, attempt)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("QUESTGEN_LLM_PROVIDER", "openrouter")
	t.Setenv("QUESTGEN_OPENROUTER_API_KEY", "sk-or")
	t.Setenv("QUESTGEN_OPENROUTER_MODEL", "meta-llama/llama-3-8b")

	cfg := ConfigFromEnv()
	if cfg.Provider != "openrouter" || cfg.OpenRouter.APIKey != "sk-or" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.OpenRouter.Model != "meta-llama/llama-3-8b" {
		t.Fatalf("model = %q", cfg.OpenRouter.Model)
	}
	if cfg.Retry.MaxAttempts != 1 {
		t.Fatalf("transport retry should default to disabled, got %d", cfg.Retry.MaxAttempts)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestDiscoverConfig_Priority(t *testing.T) {
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
	if _, ok := DiscoverConfig(); ok {
		t.Fatal("expected no provider without keys")
	}

	t.Setenv("ANTHROPIC_API_KEY", "a")
	t.Setenv("OPENAI_API_KEY", "o")
	cfg, ok := DiscoverConfig()
	if !ok || cfg.Provider != "openai" || cfg.OpenAI.APIKey != "o" {
		t.Fatalf("expected openai to win over anthropic, got %+v", cfg)
	}
}

func TestNewProvider_Mock(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: "mock"}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("model = %q", p.ModelID())
	}
}

func TestNewProvider_RejectsInvalidConfig(t *testing.T) {
	if _, err := NewProvider(context.Background(), Config{Provider: "gemini"}, nil, nil); err == nil {
		t.Fatal("expected error for gemini without API key")
	}
}

func TestFinish(t *testing.T) {
	resp, err := finish(Request{}, []byte(`{"ok":true}`), Usage{InputTokens: 3, OutputTokens: 4}, "m", "end")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Usage.TotalTokens != 7 {
		t.Errorf("total tokens = %d, want 7", resp.Usage.TotalTokens)
	}

	if _, err := finish(Request{}, []byte(`{"ok":`), Usage{}, "m", "max_tokens"); !IsInvalidResponse(err) {
		t.Errorf("truncated output should be invalid, got %v", err)
	}
}

func TestTransportError(t *testing.T) {
	ctx := context.Background()
	cause := errors.New("boom")

	var rl *ErrRateLimit
	if err := transportError(ctx, http.StatusTooManyRequests, 0, cause); !errors.As(err, &rl) {
		t.Errorf("429 should be a rate limit, got %T", err)
	}

	var un *ErrProviderUnavailable
	for _, status := range []int{0, http.StatusBadRequest, http.StatusBadGateway} {
		if err := transportError(ctx, status, 0, cause); !errors.As(err, &un) || IsTimeout(err) {
			t.Errorf("status %d: got %T (%v)", status, err, err)
		}
	}

	done, cancel := context.WithCancel(ctx)
	cancel()
	err := transportError(done, http.StatusTooManyRequests, 0, cause)
	if !IsTimeout(err) || !errors.As(err, &un) {
		t.Errorf("a done ctx should win over the status, got %T (%v)", err, err)
	}
}
