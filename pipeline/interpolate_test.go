package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterpolate_ReservedTokens(t *testing.T) {
	t.Parallel()

	state := NewState("what is go")
	state.Context = "go is a language"
	state.Intent = "question"
	state.LastOutput = "previous"

	got := Interpolate("Q: {input}\nC: {context}\nI: {intent}\nL: {last_output}", state)
	assert.Equal(t, "Q: what is go\nC: go is a language\nI: question\nL: previous", got)
}

func TestInterpolate_ReservedTokensAreCaseInsensitive(t *testing.T) {
	t.Parallel()

	state := NewState("hello")
	assert.Equal(t, "hello hello", Interpolate("{INPUT} {Input}", state))
}

func TestInterpolate_VariablesResolveCaseInsensitively(t *testing.T) {
	t.Parallel()

	state := NewState("")
	state.SetVariable("DetectIntent", "greeting")

	assert.Equal(t, "greeting", Interpolate("{DetectIntent}", state))
	assert.Equal(t, "greeting", Interpolate("{detectintent}", state))
}

func TestInterpolate_UnknownTokenBecomesEmpty(t *testing.T) {
	t.Parallel()

	state := NewState("x")
	assert.Equal(t, "before  after", Interpolate("before {missing} after", state))
}

func TestInterpolate_NonStringVariableSerialized(t *testing.T) {
	t.Parallel()

	state := NewState("")
	state.SetVariable("search", map[string]any{"count": 2})
	state.SetVariable("answer", 42)
	state.SetVariable("nothing", nil)

	assert.Equal(t, `{"count":2}`, Interpolate("{search}", state))
	assert.Equal(t, "42", Interpolate("{answer}", state))
	assert.Equal(t, "", Interpolate("{nothing}", state))
}

func TestInterpolate_NeverFails(t *testing.T) {
	t.Parallel()

	state := NewState("in")
	cases := []string{
		"",
		"no placeholders",
		"{}",
		"{{input}}",
		"{unclosed",
		"unopened}",
	}
	for _, template := range cases {
		// must not panic, and unmatched braces survive untouched
		_ = Interpolate(template, state)
	}
	assert.Equal(t, "{unclosed", Interpolate("{unclosed", state))
}

func TestState_VariableLookupOrder(t *testing.T) {
	t.Parallel()

	state := NewState("")
	state.Variables["Exact"] = "exact-value"
	state.Variables["exact"] = "lower-value"

	v, ok := state.Variable("Exact")
	assert.True(t, ok)
	assert.Equal(t, "exact-value", v, "exact key wins over lowercased key")

	v, ok = state.Variable("EXACT")
	assert.True(t, ok)
	assert.Equal(t, "lower-value", v)
}

func TestStringify(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "s", Stringify("s"))
	assert.Equal(t, "", Stringify(nil))
	assert.Equal(t, `["a","b"]`, Stringify([]string{"a", "b"}))
	assert.Equal(t, "3.5", Stringify(3.5))
}
