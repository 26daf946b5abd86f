package questiontype

import "strings"

// Rotator suggests question types for skills that no precedence rule covers.
// Suggestions are ordered by preference; an empty result is allowed.
type Rotator interface {
	Suggest(skillName, subject string) []Tag
}

// Classifier maps (grade, subject, skill) to a question type using ordered
// rule precedence with a rotation fallback. It performs no I/O.
type Classifier struct {
	rotator Rotator
}

// NewClassifier returns a Classifier that falls back to r. A nil r uses
// the default SubjectRotator.
func NewClassifier(r Rotator) *Classifier {
	if r == nil {
		r = NewSubjectRotator()
	}
	return &Classifier{rotator: r}
}

// Classify always returns a tag. Unrecognized grades skip the early-grade
// rule and are treated as below grade 6 for written responses.
func (c *Classifier) Classify(grade, subject, skillName string) Tag {
	g, gradeKnown := NormalizeGrade(grade)
	skill := strings.ToLower(skillName)
	kind := KindOf(subject)

	if gradeKnown && g <= 2 {
		switch {
		case mentions(skill, "count") && kind == SubjectMath:
			return Counting
		case mentions(skill, "identif", "which"):
			return MultipleChoice
		case mentions(skill, "true", "false"):
			return TrueFalse
		default:
			return MultipleChoice
		}
	}

	switch kind {
	case SubjectMath:
		switch {
		case mentions(skill, "calculat", "solv"):
			return Numeric
		case mentions(skill, "equation"):
			return FillBlank
		case mentions(skill, "compar", "which"):
			return MultipleChoice
		}
	case SubjectLanguageArts:
		switch {
		case mentions(skill, "fill", "complet"):
			return FillBlank
		case mentions(skill, "identif", "choos"):
			return MultipleChoice
		case mentions(skill, "writ", "explain"):
			if gradeKnown && g >= 6 {
				return LongAnswer
			}
			return ShortAnswer
		}
	}

	countingAllowed := kind == SubjectMath && gradeKnown && g <= 2
	for _, t := range c.rotator.Suggest(skillName, subject) {
		if t == Counting && !countingAllowed {
			continue
		}
		if t.Valid() {
			return t
		}
	}
	return MultipleChoice
}

// mentions matches keyword stems so that "comparing" and "solving" count
// as mentions of "compare" and "solve".
func mentions(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
