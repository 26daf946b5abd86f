package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Provider is the generation backend: prompt in, JSON text out.
// Implementations must honor ctx cancellation and deadlines so that a
// caller-supplied timeout surfaces as an error from Generate.
type Provider interface {
	// Generate sends one request and returns the model's output. When
	// req.Schema is set the provider asks for JSON matching it and checks
	// the result before returning.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the configured model identifier.
	ModelID() string
}

// Request is a single-turn generation request.
type Request struct {
	System   string
	Messages []Message

	// Schema selects the structured response format. Nil means free text.
	Schema *Schema

	MaxTokens int

	// Temperature is 0.0-1.0; zero leaves the provider default.
	Temperature float64
}

// Message is one conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema names a JSON Schema the response must satisfy.
type Schema struct {
	// Name is a kebab-case identifier, e.g. "fill-blank-question".
	Name        string
	Description string
	Definition  map[string]any
}

// Response holds the model output and accounting.
type Response struct {
	// Content is the raw JSON (or text) returned by the model.
	Content json.RawMessage

	Usage Usage
	Model string

	// StopReason is normalized to "end", "max_tokens" or "error".
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// finish turns raw provider output into a Response. A response cut off at
// MaxTokens is an error: truncated JSON cannot be a usable question.
func finish(req Request, content json.RawMessage, usage Usage, model, stop string) (*Response, error) {
	if stop == "max_tokens" {
		return nil, &ErrMaxTokensExceeded{Content: content}
	}
	if req.Schema != nil {
		if err := validateResponse(req.Schema, content); err != nil {
			return nil, err
		}
	}
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	}
	return &Response{
		Content:    content,
		Usage:      usage,
		Model:      model,
		StopReason: stop,
	}, nil
}

// transportError classifies a failed SDK call by HTTP status. A done ctx
// wins over whatever the SDK reported so callers can detect timeouts.
func transportError(ctx context.Context, status int, retryAfter time.Duration, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return &ErrProviderUnavailable{Err: fmt.Errorf("%w: %v", ctxErr, err)}
	}
	if status == http.StatusTooManyRequests {
		return &ErrRateLimit{RetryAfter: retryAfter, Err: err}
	}
	return &ErrProviderUnavailable{Err: err}
}

// parseRetryAfter reads a Retry-After header given in seconds.
func parseRetryAfter(h http.Header) time.Duration {
	if h == nil {
		return 0
	}
	secs, err := strconv.Atoi(strings.TrimSpace(h.Get("Retry-After")))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// resolveModel maps a friendly model name to a provider model ID. Unknown
// names pass through as direct model IDs.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
