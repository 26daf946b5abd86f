package question

import "github.com/abhisek/questgen/internal/questiontype"

// BlankMarker is the placeholder fill-in-the-blank prompts must contain.
const BlankMarker = "_____"

// DefaultGrade is used when no grade reaches normalization. It is a fixed
// fallback and says nothing about the skill.
const DefaultGrade = "5"

// Source records where a question's content came from.
type Source string

const (
	SourceGenerated Source = "generated"
	SourceTemplate  Source = "template"
)

// Pair is one left/right association used by matching and diagram labeling.
type Pair struct {
	Left  string `json:"left" yaml:"left"`
	Right string `json:"right" yaml:"right"`
}

// Question is the canonical, normalized question. Values are never
// modified after Normalize returns them.
type Question struct {
	ID        string           `json:"id"`
	Type      questiontype.Tag `json:"type"`
	Prompt    string           `json:"prompt"`
	Topic     string           `json:"topic,omitempty"`
	Grade     string           `json:"grade"`
	Subject   string           `json:"subject,omitempty"`
	SkillID   string           `json:"skill_id,omitempty"`
	SkillName string           `json:"skill_name,omitempty"`

	// Options holds answer choices for multiple choice, visual
	// identification and option-based pattern questions.
	Options []string `json:"options,omitempty"`

	// Items holds the elements to order or classify.
	Items []string `json:"items,omitempty"`

	// Pairs holds matching pairs or diagram label/part pairs.
	Pairs []Pair `json:"pairs,omitempty"`

	// Categories holds the buckets for classification questions.
	Categories []string `json:"categories,omitempty"`

	// Visual is a textual description of an image or scene.
	Visual string `json:"visual,omitempty"`

	// CorrectAnswer's shape depends on Type: an option index for
	// multiple choice, a bool for true/false, a number for counting,
	// text for fill-in and written answers, a list for ordering and
	// pairs for matching, classification and diagram labeling.
	CorrectAnswer Value `json:"correct_answer"`

	Hint        string `json:"hint,omitempty"`
	Explanation string `json:"explanation,omitempty"`
	Source      Source `json:"source"`
}

// SkillMeta is the curriculum context attached during normalization.
type SkillMeta struct {
	Grade     string
	Subject   string
	SkillID   string
	SkillName string
	Source    Source
}
