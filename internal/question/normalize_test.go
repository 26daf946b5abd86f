package question

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/questgen/internal/questiontype"
)

func testMeta() SkillMeta {
	return SkillMeta{
		Grade:     "5",
		Subject:   "Math",
		SkillID:   "MATH.5.NBT.3",
		SkillName: "Comparing positive and negative numbers",
	}
}

func fixedNormalizer() *Normalizer {
	return &Normalizer{newID: func() string { return "q-1" }}
}

func decodeCandidate(t *testing.T, raw string) Candidate {
	t.Helper()
	var c Candidate
	require.NoError(t, json.Unmarshal([]byte(raw), &c))
	return c
}

func TestNormalize_MultipleChoiceIndex(t *testing.T) {
	c := decodeCandidate(t, `{
		"type": "multiple_choice",
		"question": "Which number is larger?",
		"options": ["-5", "3", "-8", "-1"],
		"correct_answer": 1
	}`)

	q, err := fixedNormalizer().Normalize(c, testMeta())
	require.NoError(t, err)
	assert.Equal(t, questiontype.MultipleChoice, q.Type)
	assert.Equal(t, "q-1", q.ID)
	assert.Equal(t, "Which number is larger?", q.Prompt)
	idx, ok := q.CorrectAnswer.Index()
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.Equal(t, SourceGenerated, q.Source)
}

func TestNormalize_MultipleChoiceOptionText(t *testing.T) {
	c := decodeCandidate(t, `{
		"type": "multiple_choice",
		"question": "Pick the noun.",
		"options": ["run", "Dog", "blue"],
		"correct_answer": "dog"
	}`)

	q, err := fixedNormalizer().Normalize(c, testMeta())
	require.NoError(t, err)
	idx, _ := q.CorrectAnswer.Index()
	assert.Equal(t, 1, idx)
}

func TestNormalize_MultipleChoiceOutOfRange(t *testing.T) {
	c := decodeCandidate(t, `{
		"type": "multiple_choice",
		"question": "Pick one.",
		"options": ["a", "b"],
		"correct_answer": 4
	}`)

	_, err := fixedNormalizer().Normalize(c, testMeta())
	var convErr *ConversionError
	require.True(t, errors.As(err, &convErr))
	assert.Equal(t, "correct_answer", convErr.Field)
}

func TestNormalize_RequiredFields(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		field string
	}{
		{"unknown type", `{"type":"riddle","question":"x","correct_answer":"y"}`, "type"},
		{"empty prompt", `{"type":"numeric","question":"  ","correct_answer":3}`, "question"},
		{"mc without options", `{"type":"multiple_choice","question":"x","correct_answer":0}`, "options"},
		{"numeric without answer", `{"type":"numeric","question":"2+2?"}`, "correct_answer"},
		{"true false wrong shape", `{"type":"true_false","question":"Is it?","correct_answer":"maybe"}`, "correct_answer"},
		{"fill blank without marker", `{"type":"fill_blank","question":"The sky is blue.","correct_answer":"blue"}`, "question"},
		{"ordering too few items", `{"type":"ordering","question":"Order","items":["a"],"correct_answer":["a"]}`, "items"},
		{"ordering incomplete", `{"type":"ordering","question":"Order","items":["a","b","c"],"correct_answer":["a"]}`, "correct_answer"},
		{"matching no pairs", `{"type":"matching","question":"Match"}`, "pairs"},
		{"classification no categories", `{"type":"classification","question":"Sort","items":["cat"],"categories":["animal"],"correct_answer":{"cat":"animal"}}`, "categories"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := decodeCandidate(t, tt.raw)
			_, err := fixedNormalizer().Normalize(c, testMeta())
			var convErr *ConversionError
			require.Truef(t, errors.As(err, &convErr), "expected *ConversionError, got %v", err)
			assert.Equal(t, tt.field, convErr.Field)
		})
	}
}

func TestNormalize_DefaultGrade(t *testing.T) {
	c := decodeCandidate(t, `{"type":"true_false","question":"Ice is cold.","correct_answer":true}`)
	q, err := fixedNormalizer().Normalize(c, SkillMeta{})
	require.NoError(t, err)
	assert.Equal(t, DefaultGrade, q.Grade)
}

func TestNormalize_PerTypeShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Value
	}{
		{"true false from text", `{"type":"true_false","question":"Q","correct_answer":"False"}`, Bool(false)},
		{"counting", `{"type":"counting","question":"How many apples?","visual":"3 apples","correct_answer":3}`, Number(3)},
		{"numeric text number", `{"type":"numeric","question":"Q","correct_answer":"12.5"}`, Number(12.5)},
		{"numeric fraction", `{"type":"numeric","question":"Q","correct_answer":"3/4"}`, Text("3/4")},
		{"fill blank", `{"type":"fill_blank","question":"2 + _____ = 5","correct_answer":3}`, Text("3")},
		{"short answer", `{"type":"short_answer","question":"Name a mammal.","correct_answer":" whale "}`, Text("whale")},
		{"matching from pairs", `{"type":"matching","question":"Match","pairs":[{"left":"cat","right":"kitten"},{"left":"dog","right":"puppy"}]}`,
			Pairs(map[string]string{"cat": "kitten", "dog": "puppy"})},
		{"ordering", `{"type":"ordering","question":"Order","items":["3","1","2"],"correct_answer":["1","2","3"]}`, List("1", "2", "3")},
		{"classification", `{"type":"classification","question":"Sort","items":["cat","oak"],"categories":["animal","plant"],"correct_answer":{"cat":"animal","oak":"plant"}}`,
			Pairs(map[string]string{"cat": "animal", "oak": "plant"})},
		{"pattern without options", `{"type":"pattern_recognition","question":"2, 4, 6, ?","correct_answer":8}`, Text("8")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := fixedNormalizer().Normalize(decodeCandidate(t, tt.raw), testMeta())
			require.NoError(t, err)
			assert.Truef(t, tt.want.Equal(q.CorrectAnswer), "got %v (%d), want %v", q.CorrectAnswer, q.CorrectAnswer.Kind(), tt.want)
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	raws := []string{
		`{"type":"multiple_choice","question":"Which is larger?","topic":"integers","options":["-2","4"],"correct_answer":"4","hint":"Think of a number line."}`,
		`{"type":"fill_blank","question":"7 - _____ = 2","correct_answer":"5"}`,
		`{"type":"matching","question":"Match","pairs":[{"left":"a","right":"1"},{"left":"b","right":"2"}]}`,
		`{"type":"ordering","question":"Order","items":["b","a"],"correct_answer":["a","b"]}`,
	}

	n := NewNormalizer()
	for _, raw := range raws {
		first, err := n.Normalize(decodeCandidate(t, raw), testMeta())
		require.NoError(t, err)

		second, err := n.Normalize(first.Candidate(), testMeta())
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, first.Prompt, second.Prompt)
		assert.Equal(t, first.Type, second.Type)
		assert.Equal(t, first.Options, second.Options)
		assert.Equal(t, first.Items, second.Items)
		assert.Equal(t, first.Pairs, second.Pairs)
		assert.Equal(t, first.Hint, second.Hint)
		assert.True(t, first.CorrectAnswer.Equal(second.CorrectAnswer), "answers differ: %v vs %v", first.CorrectAnswer, second.CorrectAnswer)
	}
}

func TestCandidate_EnvelopeAndAliases(t *testing.T) {
	c := decodeCandidate(t, `{
		"type": "multiple_choice",
		"question": {
			"question_text": "Which is smaller?",
			"choices": ["1", "2"],
			"answer": 0
		}
	}`)

	assert.Equal(t, "multiple_choice", c.Type)
	assert.Equal(t, "Which is smaller?", c.Question)
	assert.Equal(t, []string{"1", "2"}, c.Options)
	assert.True(t, c.HasAnswer())
}

func TestCandidate_HasAnswer(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{`{"question":"x"}`, false},
		{`{"question":"x","correct_answer":null}`, false},
		{`{"question":"x","correct_answer":"undefined"}`, false},
		{`{"question":"x","correct_answer":""}`, true},
		{`{"question":"x","correct_answer":0}`, true},
	}
	for _, tt := range tests {
		c := decodeCandidate(t, tt.raw)
		assert.Equal(t, tt.want, c.HasAnswer(), tt.raw)
	}
}
