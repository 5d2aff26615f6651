// Package llm defines the language-model boundary consumed by the pipeline
// executor: the ModelInvoker interface, per-call InvokeOptions, and a
// VariantCache that shares model variants (model + temperature overrides)
// across concurrent runs with race-free get-or-create semantics.
package llm
