package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenRouterProvider_Request(t *testing.T) {
	var (
		title string
		body  map[string]any
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		title = r.Header.Get("X-Title")
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &body)
		chatCompletion(w, fillBlankJSON, "stop")
	}))
	t.Cleanup(server.Close)

	p, err := NewOpenRouterProvider(OpenRouterConfig{
		APIKey:  "sk-or-test",
		Model:   "anthropic/claude-3-haiku",
		BaseURL: server.URL + "/v1",
		AppName: "questgen",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "q"}},
		MaxTokens: 300,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if title != "questgen" {
		t.Errorf("X-Title = %q, want questgen", title)
	}
	if body["max_tokens"] != float64(300) {
		t.Errorf("max_tokens = %v, want 300", body["max_tokens"])
	}
	if _, ok := body["max_completion_tokens"]; ok {
		t.Error("max_completion_tokens should not be sent to OpenRouter")
	}
	if body["model"] != "anthropic/claude-3-haiku" {
		t.Errorf("model = %v", body["model"])
	}
}

func TestNewOpenRouterProvider(t *testing.T) {
	t.Run("empty API key", func(t *testing.T) {
		if _, err := NewOpenRouterProvider(OpenRouterConfig{Model: "x"}); err == nil {
			t.Fatal("expected error for empty API key")
		}
	})

	t.Run("model pass-through", func(t *testing.T) {
		p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or-test", Model: "meta-llama/llama-3-8b"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ModelID() != "meta-llama/llama-3-8b" {
			t.Errorf("model = %q", p.ModelID())
		}
		if !p.legacyMaxTokens {
			t.Error("expected legacy max_tokens for OpenRouter")
		}
	})
}
