package pipeline

import (
	"slices"
	"sort"

	"github.com/abhisek/questgen/internal/question"
	"github.com/abhisek/questgen/internal/questiontype"
)

// InputKind tells a front end which answer widget to show.
type InputKind string

const (
	InputChoice   InputKind = "choice"
	InputBoolean  InputKind = "boolean"
	InputNumber   InputKind = "number"
	InputText     InputKind = "text"
	InputLongText InputKind = "long_text"
	InputOrder    InputKind = "order"
	InputMatch    InputKind = "match"
	InputClassify InputKind = "classify"
)

// RenderData is the display-ready view of a question. It never carries the
// correct answer.
type RenderData struct {
	QuestionID string           `json:"question_id"`
	Type       questiontype.Tag `json:"type"`
	TypeLabel  string           `json:"type_label"`
	Prompt     string           `json:"prompt"`
	Input      InputKind        `json:"input"`
	Options    []string         `json:"options,omitempty"`
	Items      []string         `json:"items,omitempty"`
	Categories []string         `json:"categories,omitempty"`

	// Left and Right are the two columns of matching and labeling
	// questions. Right is sorted so the pairing is not given away.
	Left  []string `json:"left,omitempty"`
	Right []string `json:"right,omitempty"`

	Visual string `json:"visual,omitempty"`
	Hint   string `json:"hint,omitempty"`
}

// buildRenderData is pure struct construction and cannot fail.
func buildRenderData(q *question.Question) *RenderData {
	rd := &RenderData{
		QuestionID: q.ID,
		Type:       q.Type,
		TypeLabel:  q.Type.DisplayName(),
		Prompt:     q.Prompt,
		Input:      inputKind(q),
		Options:    slices.Clone(q.Options),
		Items:      slices.Clone(q.Items),
		Categories: slices.Clone(q.Categories),
		Visual:     q.Visual,
		Hint:       q.Hint,
	}
	if len(q.Pairs) > 0 {
		for _, p := range q.Pairs {
			rd.Left = append(rd.Left, p.Left)
			rd.Right = append(rd.Right, p.Right)
		}
		sort.Strings(rd.Right)
	}
	return rd
}

func inputKind(q *question.Question) InputKind {
	switch q.Type {
	case questiontype.MultipleChoice, questiontype.VisualIdentification:
		return InputChoice
	case questiontype.PatternRecognition:
		if len(q.Options) > 0 {
			return InputChoice
		}
		return InputText
	case questiontype.TrueFalse:
		return InputBoolean
	case questiontype.Counting, questiontype.Numeric:
		return InputNumber
	case questiontype.LongAnswer, questiontype.OpenEnded, questiontype.CodeCompletion:
		return InputLongText
	case questiontype.Ordering:
		return InputOrder
	case questiontype.Matching, questiontype.DiagramLabeling:
		return InputMatch
	case questiontype.Classification:
		return InputClassify
	default:
		return InputText
	}
}
