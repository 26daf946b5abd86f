package question

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Candidate is one generation attempt's content after JSON decoding and
// before normalization. CorrectAnswer is kept raw so that an absent answer
// can be told apart from an empty one.
type Candidate struct {
	ID            string          `json:"id,omitempty" yaml:"id,omitempty"`
	Type          string          `json:"type" yaml:"type"`
	Question      string          `json:"question" yaml:"question"`
	Topic         string          `json:"topic,omitempty" yaml:"topic,omitempty"`
	Options       []string        `json:"options,omitempty" yaml:"options,omitempty"`
	CorrectAnswer json.RawMessage `json:"correct_answer,omitempty" yaml:"-"`
	Items         []string        `json:"items,omitempty" yaml:"items,omitempty"`
	Pairs         []Pair          `json:"pairs,omitempty" yaml:"pairs,omitempty"`
	Categories    []string        `json:"categories,omitempty" yaml:"categories,omitempty"`
	Visual        string          `json:"visual,omitempty" yaml:"visual,omitempty"`
	Hint          string          `json:"hint,omitempty" yaml:"hint,omitempty"`
	Explanation   string          `json:"explanation,omitempty" yaml:"explanation,omitempty"`
}

// HasAnswer reports whether the correct answer is present. A JSON null
// and the literal string "undefined" both count as absent.
func (c *Candidate) HasAnswer() bool {
	raw := bytes.TrimSpace(c.CorrectAnswer)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s == "undefined" {
		return false
	}
	return true
}

// Answer decodes the raw correct answer.
func (c *Candidate) Answer() (Value, error) {
	var v Value
	if !c.HasAnswer() {
		return v, nil
	}
	if err := json.Unmarshal(c.CorrectAnswer, &v); err != nil {
		return Value{}, fmt.Errorf("decode correct_answer: %w", err)
	}
	return v, nil
}

// SetAnswer replaces the raw correct answer with v.
func (c *Candidate) SetAnswer(v Value) {
	b, _ := json.Marshal(v)
	c.CorrectAnswer = b
}

// candidateAliases lists alternative keys models use for the same field.
var candidateAliases = map[string][]string{
	"question":       {"question_text", "prompt", "text"},
	"correct_answer": {"answer", "correctAnswer", "correct"},
	"options":        {"choices"},
	"type":           {"question_type", "questionType"},
}

// UnmarshalJSON accepts the canonical field names plus common aliases,
// and unwraps a {"question": {...}} envelope.
func (c *Candidate) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	if inner, ok := fields["question"]; ok && looksLikeObject(inner) {
		var nested map[string]json.RawMessage
		if err := json.Unmarshal(inner, &nested); err != nil {
			return err
		}
		// Outer keys fill gaps in the envelope, e.g. a sibling "type".
		for k, v := range fields {
			if k == "question" {
				continue
			}
			if _, exists := nested[k]; !exists {
				nested[k] = v
			}
		}
		fields = nested
	}

	for canonical, alts := range candidateAliases {
		if _, ok := fields[canonical]; ok {
			continue
		}
		for _, alt := range alts {
			if v, ok := fields[alt]; ok {
				fields[canonical] = v
				break
			}
		}
	}

	type plain Candidate
	var out plain
	normalized, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(normalized, &out); err != nil {
		return err
	}
	*c = Candidate(out)
	c.Type = strings.TrimSpace(c.Type)
	return nil
}

func looksLikeObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

// Candidate converts q back to candidate form. Normalizing the result with
// the same SkillMeta yields an equivalent Question.
func (q *Question) Candidate() Candidate {
	c := Candidate{
		ID:          q.ID,
		Type:        string(q.Type),
		Question:    q.Prompt,
		Topic:       q.Topic,
		Options:     append([]string(nil), q.Options...),
		Items:       append([]string(nil), q.Items...),
		Pairs:       append([]Pair(nil), q.Pairs...),
		Categories:  append([]string(nil), q.Categories...),
		Visual:      q.Visual,
		Hint:        q.Hint,
		Explanation: q.Explanation,
	}
	if !q.CorrectAnswer.IsZero() {
		c.SetAnswer(q.CorrectAnswer)
	}
	return c
}
