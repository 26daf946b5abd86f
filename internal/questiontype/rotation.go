package questiontype

import (
	"hash/fnv"
	"strings"
)

// SubjectRotator spreads skills across a per-subject pool of question types
// so that neighbouring skills get different formats. The choice depends only
// on (subject, skill), never on call order.
type SubjectRotator struct {
	pools map[SubjectKind][]Tag
}

// NewSubjectRotator returns a rotator with the default subject pools.
func NewSubjectRotator() *SubjectRotator {
	return &SubjectRotator{pools: defaultPools()}
}

func defaultPools() map[SubjectKind][]Tag {
	return map[SubjectKind][]Tag{
		SubjectMath: {
			MultipleChoice, Numeric, TrueFalse, PatternRecognition,
			Ordering, FillBlank, Matching,
		},
		SubjectLanguageArts: {
			MultipleChoice, FillBlank, ShortAnswer, Matching,
			TrueFalse, Ordering, Classification,
		},
		SubjectScience: {
			MultipleChoice, TrueFalse, Classification, DiagramLabeling,
			VisualIdentification, ShortAnswer, Ordering,
		},
		SubjectSocialStudies: {
			MultipleChoice, TrueFalse, Matching, Ordering,
			ShortAnswer, Classification,
		},
		SubjectOther: {
			MultipleChoice, TrueFalse, ShortAnswer, Matching,
			OpenEnded, CodeCompletion,
		},
	}
}

// Suggest returns the pool for subject rotated so that the hashed position
// comes first. The remaining entries keep pool order.
func (r *SubjectRotator) Suggest(skillName, subject string) []Tag {
	pool := r.pools[KindOf(subject)]
	if len(pool) == 0 {
		return nil
	}

	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(subject))))
	h.Write([]byte{0})
	h.Write([]byte(strings.ToLower(strings.TrimSpace(skillName))))
	start := int(h.Sum32() % uint32(len(pool)))

	out := make([]Tag, 0, len(pool))
	out = append(out, pool[start:]...)
	out = append(out, pool[:start]...)
	return out
}
