// Package types provides the shared type contracts of the pipeflow engine.
//
// types is the lowest-level public package and depends on no other internal
// package. It defines the pipeline data model (PipelineDefinition,
// PipelineNode, PipelineEdge), the knowledge-base model (KnowledgeEntry,
// IndexedEntry, ScoredMatch), the per-run result shapes (Step, RunResult),
// and the structured Error taxonomy shared across all modules.
package types
