package questiontype

import (
	"strconv"
	"strings"
	"unicode"
)

// Kindergarten is the normalized grade for "K".
const Kindergarten = 0

// NormalizeGrade converts a grade token to an integer where K is 0.
// Accepted forms include "K", "kindergarten", "5", "Grade 5" and "5th".
// The second result is false when the token carries no recognizable grade.
func NormalizeGrade(grade string) (int, bool) {
	g := strings.ToLower(strings.TrimSpace(grade))
	g = strings.TrimPrefix(g, "grade")
	g = strings.TrimSpace(g)

	switch g {
	case "":
		return 0, false
	case "k", "kg", "kindergarten", "pre-k", "prek":
		return Kindergarten, true
	}

	end := strings.IndexFunc(g, func(r rune) bool { return !unicode.IsDigit(r) })
	if end == 0 {
		return 0, false
	}
	if end > 0 {
		g = g[:end]
	}
	n, err := strconv.Atoi(g)
	if err != nil || n < 0 || n > 12 {
		return 0, false
	}
	return n, true
}

// GradeLabel renders a normalized grade: "K" for kindergarten, otherwise
// the number.
func GradeLabel(n int) string {
	if n == Kindergarten {
		return "K"
	}
	return strconv.Itoa(n)
}
