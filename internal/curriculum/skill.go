// Package curriculum is the skill data store: a validated catalog of skills
// by grade and subject, and read-through caches in front of it.
package curriculum

import (
	"strings"

	"github.com/abhisek/questgen/internal/questiontype"
)

// Skill is one curriculum skill.
type Skill struct {
	ID            string   `json:"id" yaml:"id"`
	Name          string   `json:"name" yaml:"name"`
	Description   string   `json:"description,omitempty" yaml:"description"`
	Subject       string   `json:"subject" yaml:"subject"`
	Grade         string   `json:"grade" yaml:"grade"`
	Strand        string   `json:"strand,omitempty" yaml:"strand"`
	Keywords      []string `json:"keywords,omitempty" yaml:"keywords"`
	Prerequisites []string `json:"prerequisites,omitempty" yaml:"prerequisites"`
}

// GradeLevel returns the normalized grade (K is 0), or -1 when the grade
// label is not recognized.
func (s Skill) GradeLevel() int {
	if n, ok := questiontype.NormalizeGrade(s.Grade); ok {
		return n
	}
	return -1
}

// sameSubject matches subject labels case-insensitively and treats known
// aliases ("ELA", "English Language Arts") as equal.
func sameSubject(a, b string) bool {
	if strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b)) {
		return true
	}
	ka, kb := questiontype.KindOf(a), questiontype.KindOf(b)
	return ka != questiontype.SubjectOther && ka == kb
}
