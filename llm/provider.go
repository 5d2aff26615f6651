package llm

import (
	"context"
	"fmt"
)

// InvokeOptions carries per-call model settings. The zero value means
// "use the invoker's defaults".
type InvokeOptions struct {
	// Model overrides the model name for this call
	Model string `json:"model,omitempty"`
	// Temperature overrides the sampling temperature; nil leaves the default
	Temperature *float64 `json:"temperature,omitempty"`
	// MaxOutputTokens caps the generated output length; 0 leaves the default
	MaxOutputTokens int `json:"max_output_tokens,omitempty"`
}

// ModelInvoker is the opaque language-model boundary. Implementations call
// an external provider; the engine never retries, so a failed invocation
// aborts the pipeline run.
type ModelInvoker interface {
	Invoke(ctx context.Context, prompt string, opts InvokeOptions) (string, error)
}

// EmbeddingProvider produces a semantic vector for a piece of text.
// Implementations call an external embedding service; callers treat any
// failure as a soft degrade.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// InvokerFunc adapts a plain function to ModelInvoker.
type InvokerFunc func(ctx context.Context, prompt string, opts InvokeOptions) (string, error)

// Invoke implements ModelInvoker.
func (f InvokerFunc) Invoke(ctx context.Context, prompt string, opts InvokeOptions) (string, error) {
	return f(ctx, prompt, opts)
}

// variantKey identifies a model variant in the cache. Every pinned field
// participates in the key; options that pin different output caps must not
// share a cache entry.
func variantKey(opts InvokeOptions) string {
	temp := "default"
	if opts.Temperature != nil {
		temp = fmt.Sprintf("%.4f", *opts.Temperature)
	}
	model := opts.Model
	if model == "" {
		model = "default"
	}
	return fmt.Sprintf("%s|%s|%d", model, temp, opts.MaxOutputTokens)
}
