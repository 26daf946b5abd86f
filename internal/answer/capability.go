package answer

import (
	"strings"

	"github.com/abhisek/questgen/internal/question"
)

func shapeError(q *question.Question, reason string) error {
	return &EvaluationError{Type: q.Type, Reason: reason}
}

// choiceCapability scores option-based questions. The answer is a 0-based
// option index or the option text. Questions without options (pattern
// recognition) are scored as text.
type choiceCapability struct{}

func (choiceCapability) ResolveCorrect(q *question.Question) (string, question.Value) {
	if idx, ok := q.CorrectAnswer.Index(); ok && len(q.Options) > 0 && idx >= 0 && idx < len(q.Options) {
		return q.Options[idx], q.CorrectAnswer
	}
	return q.CorrectAnswer.String(), q.CorrectAnswer
}

func (c choiceCapability) Validate(q *question.Question, submitted question.Value) (bool, error) {
	if len(q.Options) == 0 {
		return textCapability{}.Validate(q, submitted)
	}
	want, ok := q.CorrectAnswer.Index()
	if !ok {
		return false, shapeError(q, "correct answer is not an option index")
	}

	switch submitted.Kind() {
	case question.KindNumber:
		got, ok := submitted.Index()
		if !ok {
			return false, shapeError(q, "option index must be a whole number")
		}
		return got == want, nil
	case question.KindText:
		text := strings.TrimSpace(submitted.String())
		for i, opt := range q.Options {
			if strings.EqualFold(strings.TrimSpace(opt), text) {
				return i == want, nil
			}
		}
		if got, ok := submitted.Index(); ok {
			return got == want, nil
		}
		return false, nil
	}
	return false, shapeError(q, "expected an option index or option text")
}

type boolCapability struct{}

func (boolCapability) ResolveCorrect(q *question.Question) (string, question.Value) {
	return q.CorrectAnswer.String(), q.CorrectAnswer
}

func (boolCapability) Validate(q *question.Question, submitted question.Value) (bool, error) {
	want, ok := q.CorrectAnswer.Bool()
	if !ok {
		return false, shapeError(q, "correct answer is not a boolean")
	}
	got, ok := submitted.Bool()
	if !ok {
		return false, shapeError(q, "expected true or false")
	}
	return got == want, nil
}

// numberCapability accepts integers, decimals and fractions.
type numberCapability struct{}

func (numberCapability) ResolveCorrect(q *question.Question) (string, question.Value) {
	return formatNumber(q.CorrectAnswer.String()), q.CorrectAnswer
}

func (numberCapability) Validate(q *question.Question, submitted question.Value) (bool, error) {
	want, err := parseNumber(q.CorrectAnswer.String())
	if err != nil {
		return false, shapeError(q, "correct answer is not a number")
	}
	switch submitted.Kind() {
	case question.KindNumber, question.KindText:
	default:
		return false, shapeError(q, "expected a number")
	}
	got, err := parseNumber(submitted.String())
	if err != nil {
		return false, shapeError(q, "expected a number, got "+submitted.String())
	}
	return sameNumber(got, want), nil
}

// textCapability compares trimmed, case-insensitive text. A list correct
// answer holds several acceptable answers.
type textCapability struct{}

func (textCapability) ResolveCorrect(q *question.Question) (string, question.Value) {
	if list, ok := q.CorrectAnswer.List(); ok && len(list) > 0 {
		return strings.Join(list, " or "), q.CorrectAnswer
	}
	return q.CorrectAnswer.String(), q.CorrectAnswer
}

func (textCapability) Validate(q *question.Question, submitted question.Value) (bool, error) {
	switch submitted.Kind() {
	case question.KindText, question.KindNumber, question.KindBool:
	default:
		return false, shapeError(q, "expected text")
	}
	accepted, ok := q.CorrectAnswer.List()
	if !ok {
		accepted = []string{q.CorrectAnswer.String()}
	}
	got := submitted.String()
	for _, want := range accepted {
		if textMatches(got, want) {
			return true, nil
		}
	}
	return false, nil
}

func textMatches(got, want string) bool {
	if normalizeText(got) == normalizeText(want) {
		return true
	}
	g, gerr := parseNumber(got)
	w, werr := parseNumber(want)
	return gerr == nil && werr == nil && sameNumber(g, w)
}

// pairsCapability scores matching, labeling and classification answers:
// every key must map to the expected value.
type pairsCapability struct{}

func (pairsCapability) ResolveCorrect(q *question.Question) (string, question.Value) {
	return q.CorrectAnswer.String(), q.CorrectAnswer
}

func (pairsCapability) Validate(q *question.Question, submitted question.Value) (bool, error) {
	want, ok := q.CorrectAnswer.Pairs()
	if !ok {
		return false, shapeError(q, "correct answer is not a set of pairs")
	}
	got, ok := submitted.Pairs()
	if !ok {
		return false, shapeError(q, "expected key/value pairs")
	}
	if len(got) != len(want) {
		return false, nil
	}
	normalized := make(map[string]string, len(got))
	for k, v := range got {
		normalized[normalizeText(k)] = normalizeText(v)
	}
	for k, v := range want {
		if normalized[normalizeText(k)] != normalizeText(v) {
			return false, nil
		}
	}
	return true, nil
}

type orderCapability struct{}

func (orderCapability) ResolveCorrect(q *question.Question) (string, question.Value) {
	return q.CorrectAnswer.String(), q.CorrectAnswer
}

func (orderCapability) Validate(q *question.Question, submitted question.Value) (bool, error) {
	want, ok := q.CorrectAnswer.List()
	if !ok {
		return false, shapeError(q, "correct answer is not a list")
	}
	got, ok := submitted.List()
	if !ok {
		return false, shapeError(q, "expected an ordered list")
	}
	if len(got) != len(want) {
		return false, nil
	}
	for i := range want {
		if !textMatches(got[i], want[i]) {
			return false, nil
		}
	}
	return true, nil
}
