package questiontype

import "strings"

// SubjectKind groups subject labels that share classification rules.
type SubjectKind int

const (
	SubjectOther SubjectKind = iota
	SubjectMath
	SubjectLanguageArts
	SubjectScience
	SubjectSocialStudies
)

var subjectLabels = map[string]SubjectKind{
	"math":                    SubjectMath,
	"maths":                   SubjectMath,
	"mathematics":             SubjectMath,
	"ela":                     SubjectLanguageArts,
	"english":                 SubjectLanguageArts,
	"language arts":           SubjectLanguageArts,
	"english language arts":   SubjectLanguageArts,
	"reading":                 SubjectLanguageArts,
	"writing":                 SubjectLanguageArts,
	"science":                 SubjectScience,
	"social studies":          SubjectSocialStudies,
	"history":                 SubjectSocialStudies,
	"geography":               SubjectSocialStudies,
	"social_studies":          SubjectSocialStudies,
	"english_language_arts":   SubjectLanguageArts,
	"language_arts":           SubjectLanguageArts,
	"reading/language arts":   SubjectLanguageArts,
	"reading & language arts": SubjectLanguageArts,
}

// KindOf classifies a free-form subject label.
func KindOf(subject string) SubjectKind {
	return subjectLabels[strings.ToLower(strings.TrimSpace(subject))]
}
