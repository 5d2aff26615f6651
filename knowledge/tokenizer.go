package knowledge

import (
	"strings"
	"unicode"
)

// Tokenize normalizes free text into an ordered list of distinct lowercase
// alphanumeric tokens. Splitting happens on every non-alphanumeric rune.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]struct{}, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		tokens = append(tokens, f)
	}
	return tokens
}

// TokenSet tokenizes every part and returns the union as a set.
func TokenSet(parts ...string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, part := range parts {
		for _, tok := range Tokenize(part) {
			set[tok] = struct{}{}
		}
	}
	return set
}
