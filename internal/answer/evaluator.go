// Package answer scores a learner's submitted answer against a normalized
// question.
package answer

import (
	"fmt"

	"github.com/abhisek/questgen/internal/question"
	"github.com/abhisek/questgen/internal/questiontype"
)

// Result is the outcome of one evaluation.
type Result struct {
	IsCorrect            bool           `json:"is_correct"`
	CorrectAnswerDisplay string         `json:"correct_answer_display"`
	CorrectAnswerValue   question.Value `json:"correct_answer_value"`
}

// Capability scores answers for one family of question types.
type Capability interface {
	// Validate reports whether submitted is correct for q. It returns an
	// *EvaluationError when submitted has a shape the type cannot score.
	Validate(q *question.Question, submitted question.Value) (bool, error)

	// ResolveCorrect returns the learner-facing form of the correct answer
	// and the raw value it was derived from.
	ResolveCorrect(q *question.Question) (display string, raw question.Value)
}

// EvaluationError reports an answer that cannot be scored.
type EvaluationError struct {
	Type   questiontype.Tag
	Reason string
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("cannot evaluate %s answer: %s", e.Type, e.Reason)
}

// Evaluator dispatches to the capability registered for a question's type.
// It has no side effects and is safe for concurrent use once built.
type Evaluator struct {
	caps map[questiontype.Tag]Capability
}

// NewEvaluator returns an Evaluator with a capability for every type.
func NewEvaluator() *Evaluator {
	e := &Evaluator{caps: make(map[questiontype.Tag]Capability)}
	choice := choiceCapability{}
	text := textCapability{}
	pairs := pairsCapability{}
	num := numberCapability{}

	e.Register(questiontype.MultipleChoice, choice)
	e.Register(questiontype.VisualIdentification, choice)
	e.Register(questiontype.PatternRecognition, choice)
	e.Register(questiontype.TrueFalse, boolCapability{})
	e.Register(questiontype.Counting, num)
	e.Register(questiontype.Numeric, num)
	e.Register(questiontype.FillBlank, text)
	e.Register(questiontype.ShortAnswer, text)
	e.Register(questiontype.LongAnswer, text)
	e.Register(questiontype.OpenEnded, text)
	e.Register(questiontype.CodeCompletion, text)
	e.Register(questiontype.Matching, pairs)
	e.Register(questiontype.DiagramLabeling, pairs)
	e.Register(questiontype.Classification, pairs)
	e.Register(questiontype.Ordering, orderCapability{})
	return e
}

// Register sets the capability for tag, replacing any previous one.
func (e *Evaluator) Register(tag questiontype.Tag, c Capability) {
	e.caps[tag] = c
}

// Evaluate scores submitted against q.
func (e *Evaluator) Evaluate(q *question.Question, submitted question.Value) (Result, error) {
	if q == nil {
		return Result{}, &EvaluationError{Reason: "no question"}
	}
	c, ok := e.caps[q.Type]
	if !ok {
		return Result{}, &EvaluationError{Type: q.Type, Reason: "no capability registered"}
	}
	if submitted.IsZero() {
		return Result{}, &EvaluationError{Type: q.Type, Reason: "empty answer"}
	}

	display, raw := c.ResolveCorrect(q)
	correct, err := c.Validate(q, submitted)
	if err != nil {
		return Result{}, err
	}
	return Result{
		IsCorrect:            correct,
		CorrectAnswerDisplay: display,
		CorrectAnswerValue:   raw,
	}, nil
}
