// Package tools provides the tool-dispatch boundary of the engine: a
// thread-safe name-to-tool registry consumed by pipeline tool nodes.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/BaSui01/pipeflow/types"
)

// Tool executes a query against an external backend and returns either a
// structured result or a plain-text answer.
type Tool interface {
	Invoke(ctx context.Context, query string) (any, error)
}

// ToolFunc adapts a plain function to Tool.
type ToolFunc func(ctx context.Context, query string) (any, error)

// Invoke implements Tool.
func (f ToolFunc) Invoke(ctx context.Context, query string) (any, error) {
	return f(ctx, query)
}

// Registry is a thread-safe registry of named tools. An unregistered tool
// name is a configuration error: it indicates a broken pipeline
// definition, not a data-availability gap.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	logger *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		tools:  make(map[string]Tool),
		logger: logger,
	}
}

// Register adds a tool under the given name, replacing any existing one.
func (r *Registry) Register(name string, tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[name] = tool
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke dispatches a query to the named tool.
func (r *Registry) Invoke(ctx context.Context, name, query string) (any, error) {
	r.mu.RLock()
	tool, ok := r.tools[name]
	r.mu.RUnlock()

	if !ok {
		return nil, types.NewErrorf(types.ErrToolNotFound, "tool %q is not registered", name)
	}

	r.logger.Debug("invoking tool",
		zap.String("tool", name))

	result, err := tool.Invoke(ctx, query)
	if err != nil {
		return nil, types.NewErrorf(types.ErrUpstreamError, "tool %q failed", name).WithCause(err)
	}
	return result, nil
}

// Serialize renders a tool result for inclusion in pipeline context:
// strings pass through, structured values become compact JSON.
func Serialize(result any) string {
	switch v := result.(type) {
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
