package problemgen

import (
	"fmt"
	"strings"

	"github.com/abhisek/questgen/internal/questiontype"
)

// DefectCode names one class of generation defect.
type DefectCode string

const (
	TypeMisclassified  DefectCode = "TYPE_MISCLASSIFIED"
	MissingBlankMarker DefectCode = "MISSING_BLANK_MARKER"
	MissingAnswer      DefectCode = "MISSING_ANSWER"
	SkillIrrelevant    DefectCode = "SKILL_IRRELEVANT"
	ParseError         DefectCode = "PARSE_ERROR"
)

// Blocking reports whether the defect makes a candidate unusable as is.
// MISSING_ANSWER is patched instead; PARSE_ERROR has its own path.
func (c DefectCode) Blocking() bool {
	switch c {
	case TypeMisclassified, MissingBlankMarker, SkillIrrelevant:
		return true
	}
	return false
}

// DefectSet holds the defects of one candidate in detection order,
// without duplicates.
type DefectSet []DefectCode

// Has reports whether code is in the set.
func (s DefectSet) Has(code DefectCode) bool {
	for _, c := range s {
		if c == code {
			return true
		}
	}
	return false
}

// Add returns s with code appended unless already present.
func (s DefectSet) Add(code DefectCode) DefectSet {
	if s.Has(code) {
		return s
	}
	return append(s, code)
}

// Blocking returns the subset that requires a retry.
func (s DefectSet) Blocking() DefectSet {
	var out DefectSet
	for _, c := range s {
		if c.Blocking() {
			out = append(out, c)
		}
	}
	return out
}

// Strings returns the codes as plain strings.
func (s DefectSet) Strings() []string {
	if len(s) == 0 {
		return nil
	}
	out := make([]string, len(s))
	for i, c := range s {
		out[i] = string(c)
	}
	return out
}

func (s DefectSet) String() string {
	return strings.Join(s.Strings(), ",")
}

// DefectError describes the defects found in one attempt. It stays inside
// the retry loop; callers only see it wrapped in a GenerationError.
type DefectError struct {
	Attempt int
	Defects DefectSet
	Err     error // parse failure behind a PARSE_ERROR, if any
}

func (e *DefectError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("attempt %d: defects %s: %v", e.Attempt, e.Defects, e.Err)
	}
	return fmt.Sprintf("attempt %d: defects %s", e.Attempt, e.Defects)
}

func (e *DefectError) Unwrap() error { return e.Err }

// GenerationError is returned when generation ends in FAILED.
type GenerationError struct {
	Type  questiontype.Tag
	Calls int
	Err   error // last backend error or *DefectError
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generating %s question failed after %d call(s): %v", e.Type, e.Calls, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
