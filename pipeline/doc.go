// Package pipeline is the execution engine: it turns a declarative graph
// of llm, retriever, and tool nodes into an ordered run.
//
// The Scheduler computes a topological execution order tolerant of
// malformed graphs; the Executor walks that order, dispatching each node
// to its type-specific handler while threading a mutable per-run State;
// Interpolate resolves {token} placeholders in prompts against that
// state. Runs are strictly sequential per pipeline; concurrency happens
// only across independent runs, which share nothing mutable but the
// model-variant cache.
package pipeline
