// Package textutils provides text extraction and manipulation utilities.
package textutils

import (
	"regexp"
	"strings"
	"unicode"
)

var officeCodePattern = regexp.MustCompile(`(?i)(?:^|[^A-Z0-9])([A-Z]{2})[\s-]?(\d{3})(?:[^0-9]|$)`)

// ExtractOfficeCode pulls a canonical office code such as "CA010" out of free
// text like "CA010 - Fresno" or "Office ca-010". When no code is present the
// trimmed, upper-cased text is returned unchanged.
func ExtractOfficeCode(raw string) string {
	if m := officeCodePattern.FindStringSubmatch(raw); len(m) == 3 {
		return strings.ToUpper(m[1]) + m[2]
	}
	return strings.ToUpper(strings.TrimSpace(raw))
}

// NormalizeName lowercases a person name, removes punctuation other than
// apostrophes and hyphens, and collapses whitespace.
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '\'', r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// NameTokens returns the whitespace-separated tokens of a normalized name.
func NameTokens(name string) []string {
	return strings.Fields(NormalizeName(name))
}

// ContainsAll reports whether s contains every one of the given substrings.
func ContainsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

// ContainsAny reports whether s contains at least one of the given substrings.
func ContainsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
