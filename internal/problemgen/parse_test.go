package problemgen

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/questgen/internal/llm"
	"github.com/abhisek/questgen/internal/questiontype"
)

func TestParse_Valid(t *testing.T) {
	raw := json.RawMessage(`{
		"type": "multiple_choice",
		"question": "Which number is the largest?",
		"topic": "comparing numbers",
		"options": ["-7", "3", "-1", "0"],
		"correct_answer": 1
	}`)
	p := Parse(raw, questiontype.MultipleChoice)
	require.True(t, p.OK(), "err: %v", p.Err)
	assert.Equal(t, "multiple_choice", p.Candidate.Type)
	assert.Equal(t, "Which number is the largest?", p.Candidate.Question)
	assert.True(t, p.Candidate.HasAnswer())
	assert.JSONEq(t, string(raw), string(p.Raw))
}

func TestParse_CodeFence(t *testing.T) {
	raw := json.RawMessage("```json\n{\"type\": \"true_false\", \"question\": \"Is 2 even?\", \"correct_answer\": true}\n```")
	p := Parse(raw, questiontype.TrueFalse)
	require.True(t, p.OK(), "err: %v", p.Err)
	assert.Equal(t, "Is 2 even?", p.Candidate.Question)
}

func TestParse_AliasesAndEnvelope(t *testing.T) {
	raw := json.RawMessage(`{"question": {"question_type": "Fill-Blank", "question_text": "2 + _____ = 5", "answer": "3"}}`)
	p := Parse(raw, questiontype.FillBlank)
	require.True(t, p.OK(), "err: %v", p.Err)
	assert.Equal(t, "fill_blank", p.Candidate.Type)
	assert.Equal(t, "2 + _____ = 5", p.Candidate.Question)
	assert.JSONEq(t, `"3"`, string(p.Candidate.CorrectAnswer))
}

func TestParse_MissingTypeDefaultsToRequested(t *testing.T) {
	p := Parse(json.RawMessage(`{"question": "How many legs does a spider have?", "correct_answer": 8}`), questiontype.Counting)
	require.True(t, p.OK(), "err: %v", p.Err)
	assert.Equal(t, "counting", p.Candidate.Type)
}

func TestParse_DeclaredTypeKept(t *testing.T) {
	// The declared type is kept so the detector can see what the model did.
	p := Parse(json.RawMessage(`{"type": "numeric", "question": "What is 2 + 2?", "correct_answer": 4}`), questiontype.TrueFalse)
	require.True(t, p.OK(), "err: %v", p.Err)
	assert.Equal(t, "numeric", p.Candidate.Type)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		tag  questiontype.Tag
	}{
		{"empty", "", questiontype.Numeric},
		{"whitespace", "  \n ", questiontype.Numeric},
		{"not json", "Here is your question: what is 2+2?", questiontype.Numeric},
		{"array", `[1, 2]`, questiontype.Numeric},
		{"empty question", `{"type": "numeric", "question": "", "correct_answer": 4}`, questiontype.Numeric},
		{"missing question", `{"type": "numeric", "correct_answer": 4}`, questiontype.Numeric},
		{"too few options", `{"type": "multiple_choice", "question": "Pick", "options": ["a"], "correct_answer": 0}`, questiontype.MultipleChoice},
		{"ordering without items", `{"type": "ordering", "question": "Order these", "correct_answer": ["a", "b"]}`, questiontype.Ordering},
		{"matching without pairs", `{"type": "matching", "question": "Match"}`, questiontype.Matching},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := Parse(json.RawMessage(tc.raw), tc.tag)
			assert.False(t, p.OK())
			assert.Error(t, p.Err)
			assert.Empty(t, p.Candidate.Question)
		})
	}
}

func TestParse_SchemaErrorIsInvalidResponse(t *testing.T) {
	p := Parse(json.RawMessage(`{"type": "multiple_choice", "question": "Pick"}`), questiontype.MultipleChoice)
	require.False(t, p.OK())
	var inv *llm.ErrInvalidResponse
	assert.True(t, errors.As(p.Err, &inv))
}

func TestSchemaFor_EveryType(t *testing.T) {
	for _, tag := range questiontype.All() {
		s := SchemaFor(tag)
		if s == nil {
			t.Errorf("no schema for %s", tag)
			continue
		}
		if s.Name != "question-"+string(tag) {
			t.Errorf("schema name = %q", s.Name)
		}
	}
	if SchemaFor("essay") != nil {
		t.Error("unknown tag should have no schema")
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tc := range tests {
		if got := string(stripCodeFence([]byte(tc.in))); got != tc.want {
			t.Errorf("stripCodeFence(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
