package inventory

import (
	"strings"
	"unicode"
)

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsUnassigned reports whether a holder identity means "no holder".
func IsUnassigned(identity string) bool {
	identity = strings.TrimSpace(identity)
	return identity == "" || strings.EqualFold(identity, UnassignedSentinel)
}

// TitleCase lower-cases s and upper-cases the first letter of every word.
func TitleCase(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return s
	}
	out := []rune(s)
	prevWord := false
	for i, r := range out {
		isWord := unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
		if isWord && !prevWord {
			out[i] = unicode.ToUpper(r)
		}
		prevWord = isWord
	}
	return string(out)
}
