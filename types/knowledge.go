package types

// KnowledgeEntry is a raw knowledge-base entry as loaded from configuration
type KnowledgeEntry struct {
	ID       string   `json:"id,omitempty" yaml:"id,omitempty"`
	Title    string   `json:"title" yaml:"title"`
	Content  string   `json:"content" yaml:"content"`
	Summary  string   `json:"summary,omitempty" yaml:"summary,omitempty"`
	Tags     []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Priority float64  `json:"priority,omitempty" yaml:"priority,omitempty"`
	Weight   float64  `json:"weight,omitempty" yaml:"weight,omitempty"`
}

// EffectivePriority resolves the entry's scoring weight: priority first,
// then weight, then 1.0.
func (e KnowledgeEntry) EffectivePriority() float64 {
	if e.Priority > 0 {
		return e.Priority
	}
	if e.Weight > 0 {
		return e.Weight
	}
	return 1.0
}

// IndexedEntry is a knowledge entry enriched with derived retrieval data.
// Built once per configuration load and shared read-only across runs.
type IndexedEntry struct {
	KnowledgeEntry

	// Tokens is the distinct lowercase token set of all entry text fields
	Tokens map[string]struct{} `json:"-"`
	// Embedding is the entry's semantic vector, nil when embedding failed
	// or no provider was configured
	Embedding []float64 `json:"-"`
}

// ScoredMatch is a ranked retrieval result. Produced per retrieval call,
// never persisted.
type ScoredMatch struct {
	Rank     int      `json:"rank"`
	ID       string   `json:"id,omitempty"`
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Summary  string   `json:"summary,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
	Score    float64  `json:"score"`
}
