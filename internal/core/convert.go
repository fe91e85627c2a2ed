package core

// convert.go holds the number-or-string coercion rule shared by the codec and
// by cell edits.
//
// A token becomes a Number only when the whole trimmed token is a plain
// decimal literal. Anything else, including currency symbols, thousands
// separators and hex, stays text. The empty string is never coerced to zero.

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numericRegex validates that a string is a plain numeric literal.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// Coerce converts a raw token to a Value.
// The token is trimmed for the numeric test only; when it is not numeric the
// untrimmed token is kept as text, except that an all-whitespace token
// becomes Text("").
func Coerce(raw string) Value {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Text("")
	}
	if f, ok := parseNumber(trimmed); ok {
		return Number(f)
	}
	return Text(raw)
}

// parseNumber returns the float for a numeric literal. Literals that overflow
// float64 are rejected so they survive as text.
func parseNumber(s string) (float64, bool) {
	if !numericRegex.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// stripQuotes removes one leading and one trailing double quote.
// Embedded quotes are left alone.
func stripQuotes(s string) string {
	s = strings.TrimPrefix(s, `"`)
	return strings.TrimSuffix(s, `"`)
}

// cleanField applies the per-field normalization of a parsed data line:
// trim, then strip one optional quote at each end.
func cleanField(s string) string {
	return stripQuotes(strings.TrimSpace(s))
}
