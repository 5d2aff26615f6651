package pipeline

import (
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// Interpolate replaces every {token} occurrence in template against the
// run state. Interpolation is total: it never fails, and any token that
// resolves to nothing becomes an empty string, deferring prompt-quality
// issues to the model rather than the engine.
//
// Reserved tokens (case-insensitive) resolve to state fields: input,
// context, intent, last_output. Anything else is looked up in the
// variable bag, exact key first, lowercased key second.
func Interpolate(template string, state *State) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		token := match[1 : len(match)-1]

		switch strings.ToLower(token) {
		case "input":
			return state.Input
		case "context":
			return state.Context
		case "intent":
			return state.Intent
		case "last_output":
			return state.LastOutput
		}

		if v, ok := state.Variable(token); ok {
			return Stringify(v)
		}
		return ""
	})
}
