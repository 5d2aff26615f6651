package types

// NodeType defines the type of a pipeline node
type NodeType string

const (
	// NodeTypeLLM invokes the language model with an interpolated prompt
	NodeTypeLLM NodeType = "llm"
	// NodeTypeRetriever ranks knowledge-base entries against the current query
	NodeTypeRetriever NodeType = "retriever"
	// NodeTypeTool dispatches to a registered tool
	NodeTypeTool NodeType = "tool"
)

// NodeRole marks a node's semantic role independent of its type.
type NodeRole string

const (
	// RoleNone is the default role
	RoleNone NodeRole = ""
	// RoleIntent marks a node whose output is captured as the run's intent
	RoleIntent NodeRole = "intent"
)

// PipelineNode represents a single step of a pipeline definition
type PipelineNode struct {
	// ID is the unique identifier for this node within its pipeline
	ID string `json:"id" yaml:"id"`
	// Type specifies the node type (llm, retriever, tool)
	Type NodeType `json:"type" yaml:"type"`
	// Config holds type-specific settings (prompt, source, toolName, ...)
	Config map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
}

// StringConfig returns a string-valued config field, or the fallback when
// the key is absent or not a string.
func (n PipelineNode) StringConfig(key, fallback string) string {
	if v, ok := n.Config[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return fallback
}

// Role returns the node's declared role. Nodes without an explicit
// "role" config field have RoleNone.
func (n PipelineNode) Role() NodeRole {
	return NodeRole(n.StringConfig("role", ""))
}

// PipelineEdge represents a declared ordering constraint between two nodes
type PipelineEdge struct {
	// From is the id of the node that must execute first
	From string `json:"from" yaml:"from"`
	// To is the id of the node that depends on From
	To string `json:"to" yaml:"to"`
}

// PipelineDefinition represents a named workflow of nodes, optionally
// constrained by edges. Definitions are immutable once loaded and are
// replaced wholesale on configuration reload.
type PipelineDefinition struct {
	// Name uniquely identifies the pipeline (case-insensitive on lookup)
	Name string `json:"name" yaml:"name"`
	// Description describes the pipeline
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	// Nodes contains all node definitions in declaration order
	Nodes []PipelineNode `json:"nodes" yaml:"nodes"`
	// Edges contains the declared dependency edges
	Edges []PipelineEdge `json:"edges,omitempty" yaml:"edges,omitempty"`
}

// Node retrieves a node by id.
func (p *PipelineDefinition) Node(id string) (PipelineNode, bool) {
	for _, n := range p.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return PipelineNode{}, false
}

// StepMetadata records the model settings a step executed with
type StepMetadata struct {
	Model       string   `json:"model,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// Step records the outcome of a single executed node
type Step struct {
	NodeID   string       `json:"node_id"`
	Type     NodeType     `json:"type"`
	Output   any          `json:"output"`
	Metadata StepMetadata `json:"metadata"`
}

// RunResult is the final outcome of a pipeline run
type RunResult struct {
	FinalOutput string `json:"final_output"`
	Intent      string `json:"intent"`
	Context     string `json:"context"`
	Steps       []Step `json:"steps"`
}
