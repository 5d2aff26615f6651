package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"
)

// State is the mutable per-run context threaded across node executions.
// Each run owns its State exclusively; it is mutated only by the executor
// in node order and discarded when the run completes.
type State struct {
	// Input is the user request that started the run
	Input string
	// Context accumulates retrieved knowledge and tool output
	Context string
	// Intent is the detected intent, when an intent node produced one
	Intent string
	// LastOutput is the stringified output of the most recent node
	LastOutput string
	// Variables maps node ids to their raw outputs
	Variables map[string]any
}

// NewState creates a fresh run state.
func NewState(input string) *State {
	return &State{
		Input:     input,
		Variables: make(map[string]any),
	}
}

// SetVariable stores a node's raw output under both the exact node id and
// its lowercased form, enabling case-insensitive template lookup.
func (s *State) SetVariable(nodeID string, value any) {
	s.Variables[nodeID] = value
	s.Variables[strings.ToLower(nodeID)] = value
}

// Variable looks a variable up by exact key, then by lowercased key.
func (s *State) Variable(name string) (any, bool) {
	if v, ok := s.Variables[name]; ok {
		return v, true
	}
	v, ok := s.Variables[strings.ToLower(name)]
	return v, ok
}

// Stringify renders a node output for state threading: strings pass
// through, nil becomes empty, structured values become compact JSON.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}
