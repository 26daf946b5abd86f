package answer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// numberTolerance absorbs float rounding when comparing decimals with
// fractions such as "1/3".
const numberTolerance = 1e-9

// parseNumber reads an integer, decimal or fraction.
//
// Normalization rules:
//   - Whitespace is trimmed
//   - Fractions are reduced, so "2/4" equals "1/2" and "0.5"
//   - Trailing zeros are ignored ("3.50" equals "3.5")
//   - Leading zeros are ignored ("007" equals "7")
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "/") {
		num, den, err := reduceFraction(s)
		if err != nil {
			return 0, err
		}
		return float64(num) / float64(den), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %w", err)
	}
	return f, nil
}

func sameNumber(a, b float64) bool {
	return math.Abs(a-b) <= numberTolerance
}

// formatNumber renders a number for display. Fractions keep their reduced
// a/b form.
func formatNumber(s string) string {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "/") {
		if num, den, err := reduceFraction(s); err == nil {
			if den == 1 {
				return strconv.FormatInt(num, 10)
			}
			return fmt.Sprintf("%d/%d", num, den)
		}
		return s
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return s
}

// reduceFraction parses "a/b" into lowest terms with the sign on the
// numerator.
func reduceFraction(s string) (int64, int64, error) {
	num, den, err := parseFraction(s)
	if err != nil {
		return 0, 0, err
	}
	if den == 0 {
		return 0, 0, fmt.Errorf("zero denominator")
	}
	if den < 0 {
		num = -num
		den = -den
	}
	g := gcd(abs(num), den)
	if g == 0 {
		g = 1
	}
	return num / g, den / g, nil
}

// parseFraction parses "a/b" into numerator and denominator.
func parseFraction(s string) (int64, int64, error) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid fraction format: %q", s)
	}
	num, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid numerator: %w", err)
	}
	den, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid denominator: %w", err)
	}
	return num, den, nil
}

// gcd returns the greatest common divisor of a and b.
// Both a and b must be non-negative.
func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

// normalizeText trims, lower-cases and collapses inner whitespace.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
