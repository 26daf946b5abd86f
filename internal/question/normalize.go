package question

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/abhisek/questgen/internal/questiontype"
)

// ConversionError reports that a candidate lacks what its declared type
// needs to become a canonical Question.
type ConversionError struct {
	Type   questiontype.Tag
	Field  string
	Reason string
}

func (e *ConversionError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("cannot convert candidate: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("cannot convert %s candidate: %s: %s", e.Type, e.Field, e.Reason)
}

// Normalizer maps candidates to canonical questions. It only wraps and
// fills defaults; it never invents question content.
type Normalizer struct {
	newID func() string
}

// NewNormalizer returns a Normalizer that assigns random UUIDs.
func NewNormalizer() *Normalizer {
	return &Normalizer{newID: uuid.NewString}
}

// Normalize builds a Question from c. Candidates that already carry an ID
// keep it, so normalizing q.Candidate() is idempotent.
func (n *Normalizer) Normalize(c Candidate, meta SkillMeta) (*Question, error) {
	tag, ok := questiontype.ParseTag(c.Type)
	if !ok {
		return nil, &ConversionError{Field: "type", Reason: fmt.Sprintf("unknown question type %q", c.Type)}
	}

	prompt := strings.TrimSpace(c.Question)
	if prompt == "" {
		return nil, &ConversionError{Type: tag, Field: "question", Reason: "prompt text is empty"}
	}

	answer, err := c.Answer()
	if err != nil {
		return nil, &ConversionError{Type: tag, Field: "correct_answer", Reason: err.Error()}
	}

	q := &Question{
		ID:          c.ID,
		Type:        tag,
		Prompt:      prompt,
		Topic:       strings.TrimSpace(c.Topic),
		Grade:       meta.Grade,
		Subject:     meta.Subject,
		SkillID:     meta.SkillID,
		SkillName:   meta.SkillName,
		Options:     trimAll(c.Options),
		Items:       trimAll(c.Items),
		Pairs:       append([]Pair(nil), c.Pairs...),
		Categories:  trimAll(c.Categories),
		Visual:      strings.TrimSpace(c.Visual),
		Hint:        strings.TrimSpace(c.Hint),
		Explanation: strings.TrimSpace(c.Explanation),
		Source:      meta.Source,
	}
	if q.ID == "" {
		q.ID = n.newID()
	}
	if q.Grade == "" {
		q.Grade = DefaultGrade
	}
	if q.Source == "" {
		q.Source = SourceGenerated
	}

	check, ok := answerShapes[tag]
	if !ok {
		return nil, &ConversionError{Type: tag, Field: "type", Reason: "no conversion rule"}
	}
	canonical, err := check(q, answer)
	if err != nil {
		return nil, err
	}
	q.CorrectAnswer = canonical
	return q, nil
}

type shapeFunc func(q *Question, answer Value) (Value, error)

// answerShapes holds the per-type required fields and the canonical shape
// of the correct answer.
var answerShapes = map[questiontype.Tag]shapeFunc{
	questiontype.MultipleChoice:       optionIndex(true),
	questiontype.VisualIdentification: optionIndex(true),
	questiontype.PatternRecognition:   patternAnswer,
	questiontype.TrueFalse:            boolAnswer,
	questiontype.Counting:             numberAnswer,
	questiontype.Numeric:              numberAnswer,
	questiontype.FillBlank:            fillBlankAnswer,
	questiontype.ShortAnswer:          textAnswer,
	questiontype.LongAnswer:           textAnswer,
	questiontype.OpenEnded:            textAnswer,
	questiontype.CodeCompletion:       textAnswer,
	questiontype.Matching:             pairsAnswer,
	questiontype.DiagramLabeling:      pairsAnswer,
	questiontype.Ordering:             orderAnswer,
	questiontype.Classification:       classifyAnswer,
}

func missing(q *Question, field, reason string) error {
	return &ConversionError{Type: q.Type, Field: field, Reason: reason}
}

func optionIndex(required bool) shapeFunc {
	return func(q *Question, answer Value) (Value, error) {
		if len(q.Options) < 2 {
			if required {
				return Value{}, missing(q, "options", fmt.Sprintf("need at least 2, got %d", len(q.Options)))
			}
			return textAnswer(q, answer)
		}
		if answer.IsZero() {
			return Value{}, missing(q, "correct_answer", "absent")
		}
		if idx, ok := answer.Index(); ok && answer.Kind() == KindNumber {
			if idx < 0 || idx >= len(q.Options) {
				return Value{}, missing(q, "correct_answer", fmt.Sprintf("index %d out of range [0,%d)", idx, len(q.Options)))
			}
			return Int(idx), nil
		}
		want := strings.TrimSpace(answer.String())
		for i, opt := range q.Options {
			if strings.EqualFold(opt, want) {
				return Int(i), nil
			}
		}
		// Text digits that are not an option are read as an index.
		if idx, ok := answer.Index(); ok && idx >= 0 && idx < len(q.Options) {
			return Int(idx), nil
		}
		return Value{}, missing(q, "correct_answer", fmt.Sprintf("%q matches no option", want))
	}
}

func patternAnswer(q *Question, answer Value) (Value, error) {
	return optionIndex(false)(q, answer)
}

func boolAnswer(q *Question, answer Value) (Value, error) {
	b, ok := answer.Bool()
	if !ok {
		return Value{}, missing(q, "correct_answer", "expected true or false")
	}
	return Bool(b), nil
}

// numberAnswer keeps fractions such as "3/4" as text for the evaluator.
func numberAnswer(q *Question, answer Value) (Value, error) {
	if answer.IsZero() {
		return Value{}, missing(q, "correct_answer", "absent")
	}
	if f, ok := answer.Number(); ok {
		return Number(f), nil
	}
	if answer.Kind() == KindText {
		return Text(strings.TrimSpace(answer.String())), nil
	}
	return Value{}, missing(q, "correct_answer", "expected a number")
}

func fillBlankAnswer(q *Question, answer Value) (Value, error) {
	if !strings.Contains(q.Prompt, BlankMarker) {
		return Value{}, missing(q, "question", "blank marker "+BlankMarker+" not found")
	}
	return textAnswer(q, answer)
}

func textAnswer(q *Question, answer Value) (Value, error) {
	if answer.IsZero() {
		return Value{}, missing(q, "correct_answer", "absent")
	}
	switch answer.Kind() {
	case KindText, KindNumber, KindBool:
		return Text(strings.TrimSpace(answer.String())), nil
	case KindList:
		// Several acceptable answers: keep them all.
		return answer, nil
	}
	return Value{}, missing(q, "correct_answer", "expected text")
}

func pairsAnswer(q *Question, answer Value) (Value, error) {
	if m, ok := answer.Pairs(); ok && len(m) > 0 {
		return Pairs(m), nil
	}
	if len(q.Pairs) < 2 {
		return Value{}, missing(q, "pairs", fmt.Sprintf("need at least 2, got %d", len(q.Pairs)))
	}
	m := make(map[string]string, len(q.Pairs))
	for _, p := range q.Pairs {
		m[p.Left] = p.Right
	}
	return Pairs(m), nil
}

func orderAnswer(q *Question, answer Value) (Value, error) {
	if len(q.Items) < 2 {
		return Value{}, missing(q, "items", fmt.Sprintf("need at least 2, got %d", len(q.Items)))
	}
	order, ok := answer.List()
	if !ok || len(order) != len(q.Items) {
		return Value{}, missing(q, "correct_answer", "expected an ordering of every item")
	}
	return List(order...), nil
}

func classifyAnswer(q *Question, answer Value) (Value, error) {
	if len(q.Categories) < 2 {
		return Value{}, missing(q, "categories", fmt.Sprintf("need at least 2, got %d", len(q.Categories)))
	}
	if len(q.Items) == 0 {
		return Value{}, missing(q, "items", "empty")
	}
	m, ok := answer.Pairs()
	if !ok || len(m) == 0 {
		return Value{}, missing(q, "correct_answer", "expected item to category assignments")
	}
	return Pairs(m), nil
}

func trimAll(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}
