package config

import (
	"strings"
	"sync/atomic"

	"github.com/BaSui01/pipeflow/knowledge"
	"github.com/BaSui01/pipeflow/types"
)

// Snapshot is an immutable view of the loaded configuration plus the
// knowledge index built from it. Runs hold a snapshot for their whole
// duration, so a reload mid-run never mixes old and new definitions.
type Snapshot struct {
	doc       *Document
	index     *knowledge.Index
	pipelines map[string]*types.PipelineDefinition
}

// Pipeline looks up a pipeline definition by name, case-insensitively.
func (s *Snapshot) Pipeline(name string) (*types.PipelineDefinition, bool) {
	p, ok := s.pipelines[strings.ToLower(name)]
	return p, ok
}

// Index returns the knowledge index of this snapshot.
func (s *Snapshot) Index() *knowledge.Index {
	return s.index
}

// Document returns the raw configuration document.
func (s *Snapshot) Document() *Document {
	return s.doc
}

// Store publishes configuration snapshots. Replace swaps the whole
// snapshot atomically: partial updates are not supported, and entries
// absent from a new document vanish from subsequent retrieval.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore creates a store holding an empty snapshot.
func NewStore() *Store {
	s := &Store{}
	s.Replace(&Document{}, nil)
	return s
}

// Replace installs a new configuration snapshot.
func (s *Store) Replace(doc *Document, index *knowledge.Index) {
	pipelines := make(map[string]*types.PipelineDefinition, len(doc.Pipelines))
	for i := range doc.Pipelines {
		p := doc.Pipelines[i]
		pipelines[strings.ToLower(p.Name)] = &p
	}
	s.current.Store(&Snapshot{doc: doc, index: index, pipelines: pipelines})
}

// Snapshot returns the current configuration snapshot.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}
