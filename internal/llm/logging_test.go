package llm

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/questgen/internal/store"
)

func TestLoggingProvider_RecordsEvents(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"ok":true}`), Usage: Usage{InputTokens: 12, OutputTokens: 4}},
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
	)
	core, logs := observer.New(zap.DebugLevel)
	p := WithLogging(mock, "mock", st.EventRepo(), zap.New(core))

	ctx := WithAttempt(WithPurpose(context.Background(), "question-gen"), "run-1", 0)
	_, err = p.Generate(ctx, Request{System: "sys", Messages: []Message{{Role: RoleUser, Content: "make a question"}}})
	require.NoError(t, err)

	ctx = WithAttempt(WithPurpose(context.Background(), "question-gen"), "run-1", 1)
	_, err = p.Generate(ctx, Request{})
	require.Error(t, err)

	events, err := st.EventRepo().QueryLLMEvents(context.Background(), store.QueryOpts{RunID: "run-1"})
	require.NoError(t, err)
	require.Len(t, events, 2)

	failed, ok := events[0], events[1]
	assert.False(t, failed.Success)
	assert.Equal(t, 1, failed.Attempt)
	assert.Contains(t, failed.ErrorMessage, "down")

	assert.True(t, ok.Success)
	assert.Equal(t, 12, ok.InputTokens)
	assert.Equal(t, "question-gen", ok.Purpose)
	assert.True(t, strings.Contains(ok.RequestBody, "[system]\nsys"))
	assert.Equal(t, `{"ok":true}`, ok.ResponseBody)

	assert.Equal(t, 1, logs.FilterMessage("llm request failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("llm request").Len())
}

func TestLoggingProvider_NilRepo(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})
	p := WithLogging(mock, "mock", nil, nil)

	_, err := p.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "mock", p.ModelID())
}
