// Package tokenize turns free text into comparable keyword tokens.
package tokenize

import (
	"strings"
	"unicode"
)

// MinTokenLength is the shortest token kept by Normalize.
const MinTokenLength = 3

// Normalize lower-cases text, replaces every rune outside [a-z0-9] and whitespace with a
// space, splits on whitespace and drops tokens shorter than MinTokenLength. Token order
// and duplicates are preserved.
func Normalize(text string) []string {
	if text == "" {
		return nil
	}

	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case unicode.IsSpace(r):
			return r
		default:
			return ' '
		}
	}, strings.ToLower(text))

	var tokens []string
	for _, tok := range strings.Fields(cleaned) {
		if len(tok) >= MinTokenLength {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// Set returns the distinct tokens.
func Set(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

// Unique returns the distinct tokens in order of first appearance.
func Unique(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}
