package questiontype

import "strings"

// Tag identifies how a learner answers a question.
type Tag string

const (
	MultipleChoice       Tag = "multiple_choice"
	TrueFalse            Tag = "true_false"
	Counting             Tag = "counting"
	Numeric              Tag = "numeric"
	FillBlank            Tag = "fill_blank"
	ShortAnswer          Tag = "short_answer"
	LongAnswer           Tag = "long_answer"
	Matching             Tag = "matching"
	Ordering             Tag = "ordering"
	Classification       Tag = "classification"
	VisualIdentification Tag = "visual_identification"
	PatternRecognition   Tag = "pattern_recognition"
	CodeCompletion       Tag = "code_completion"
	DiagramLabeling      Tag = "diagram_labeling"
	OpenEnded            Tag = "open_ended"
)

// All returns every tag in declaration order.
func All() []Tag {
	return []Tag{
		MultipleChoice,
		TrueFalse,
		Counting,
		Numeric,
		FillBlank,
		ShortAnswer,
		LongAnswer,
		Matching,
		Ordering,
		Classification,
		VisualIdentification,
		PatternRecognition,
		CodeCompletion,
		DiagramLabeling,
		OpenEnded,
	}
}

// Valid reports whether t is a member of the closed tag set.
func (t Tag) Valid() bool {
	for _, v := range All() {
		if t == v {
			return true
		}
	}
	return false
}

func (t Tag) String() string { return string(t) }

// DisplayName returns a human-readable label, e.g. "Multiple Choice".
func (t Tag) DisplayName() string {
	words := strings.Split(string(t), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// aliases maps common spellings emitted by models and callers to tags.
var aliases = map[string]Tag{
	"mcq":               MultipleChoice,
	"multiple":          MultipleChoice,
	"truefalse":         TrueFalse,
	"boolean":           TrueFalse,
	"count":             Counting,
	"number":            Numeric,
	"fill_in_the_blank": FillBlank,
	"fill_in_blank":     FillBlank,
	"fill_in":           FillBlank,
	"short":             ShortAnswer,
	"long":              LongAnswer,
	"essay":             LongAnswer,
	"match":             Matching,
	"order":             Ordering,
	"sequence":          Ordering,
	"sort":              Classification,
	"categorize":        Classification,
	"visual":            VisualIdentification,
	"pattern":           PatternRecognition,
	"code":              CodeCompletion,
	"diagram":           DiagramLabeling,
	"open":              OpenEnded,
}

// ParseTag maps loose spellings ("Multiple-Choice", "fill in the blank",
// "TRUE_FALSE") to a Tag. The second result is false when nothing matches.
func ParseTag(s string) (Tag, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "_", " ", "_", "/", "_").Replace(key)
	if t := Tag(key); t.Valid() {
		return t, true
	}
	if t, ok := aliases[key]; ok {
		return t, true
	}
	return "", false
}
