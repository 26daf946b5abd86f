package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/abhisek/questgen/internal/store"
)

func TestFailedEvents(t *testing.T) {
	events := []store.LLMRequestEventRecord{
		{ID: 5, LLMRequestEventData: store.LLMRequestEventData{Success: false}},
		{ID: 4, LLMRequestEventData: store.LLMRequestEventData{Success: true}},
		{ID: 3, LLMRequestEventData: store.LLMRequestEventData{Success: false}},
		{ID: 2, LLMRequestEventData: store.LLMRequestEventData{Success: false}},
	}

	got := failedEvents(events, 2)
	assert.Len(t, got, 2)
	assert.Equal(t, int64(5), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)

	assert.Len(t, failedEvents(events, 0), 3)
	assert.Empty(t, failedEvents(events[1:2], 0))
}

func TestWriteEvent(t *testing.T) {
	var buf bytes.Buffer
	writeEvent(&buf, &store.LLMRequestEventRecord{
		ID:        7,
		Timestamp: time.Now(),
		LLMRequestEventData: store.LLMRequestEventData{
			Provider:     "openai",
			Model:        "gpt-4o-mini",
			Purpose:      "question-gen",
			RunID:        "run-1",
			Attempt:      2,
			Success:      true,
			RequestBody:  "[user]\nwrite a question",
			ResponseBody: `{"type":"fill_blank","question":"The sun rises in the _____."}`,
		},
	})

	out := buf.String()
	assert.Contains(t, out, "gpt-4o-mini (openai)")
	assert.Contains(t, out, "run-1 (attempt 2)")
	assert.Contains(t, out, "write a question")
	assert.Contains(t, out, "  \"type\": \"fill_blank\"")
	assert.NotContains(t, out, "Error:")
}

func TestWriteCostTable(t *testing.T) {
	var buf bytes.Buffer
	writeCostTable(&buf, []store.LLMModelUsage{
		{Model: "claude-haiku-4-5", Calls: 2, InputTokens: 1_000_000, OutputTokens: 0},
		{Model: "homegrown-model", Calls: 1, InputTokens: 10, OutputTokens: 10},
	})

	out := buf.String()
	assert.Contains(t, out, "$1.00")
	assert.Contains(t, out, "TOTAL (partial)")
	assert.Contains(t, out, "Pricing unavailable for: homegrown-model")
}

func TestWriteUsageTable(t *testing.T) {
	var buf bytes.Buffer
	writeUsageTable(&buf, []store.LLMUsageStats{
		{Purpose: "question-gen", Calls: 3, Failures: 1, InputTokens: 100, OutputTokens: 50},
		{Purpose: "repair", Calls: 1, InputTokens: 10, OutputTokens: 5},
	})
	assert.Regexp(t, `TOTAL\s+4\s+1\s+110\s+55\s+165`, buf.String())
}

func TestPrettyJSON(t *testing.T) {
	assert.Equal(t, "{\n  \"a\": 1\n}", prettyJSON(`{"a":1}`))
	assert.Equal(t, "not json", prettyJSON("not json"))
	assert.Equal(t, "", prettyJSON(""))
}

func TestTruncateAndCost(t *testing.T) {
	assert.Equal(t, "abc", truncate("abcdef", 3))
	assert.Equal(t, "ab", truncate("ab", 3))
	assert.Equal(t, "$0.0012", formatCost(0.00123))
	assert.Equal(t, "$1.50", formatCost(1.5))
}
