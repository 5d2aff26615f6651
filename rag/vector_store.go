package rag

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/BaSui01/pipeflow/knowledge"
)

// VectorStore is the durable semantic-search boundary. Implementations
// wrap an external vector database; the engine prefers their pre-ranked
// results and falls back to local scoring when a search returns nothing
// or fails.
type VectorStore interface {
	// SemanticSearch returns up to topK hits for a query embedding within
	// a named source. An empty slice signals a miss, not an error.
	SemanticSearch(ctx context.Context, source string, queryEmbedding []float64, topK int) ([]VectorHit, error)
}

// VectorHit is a single pre-ranked semantic search result.
type VectorHit struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Score    float64        `json:"score"`
}

// StoredDocument is a document held by the in-memory store.
type StoredDocument struct {
	ID        string
	Title     string
	Content   string
	Metadata  map[string]any
	Embedding []float64
}

// InMemoryVectorStore is a mutex-guarded per-source vector store for tests
// and small deployments. Ranking is exact cosine similarity.
type InMemoryVectorStore struct {
	mu      sync.RWMutex
	sources map[string][]StoredDocument
	logger  *zap.Logger
}

// NewInMemoryVectorStore creates an empty in-memory vector store.
func NewInMemoryVectorStore(logger *zap.Logger) *InMemoryVectorStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryVectorStore{
		sources: make(map[string][]StoredDocument),
		logger:  logger,
	}
}

// AddDocuments appends documents to a source. Documents without an
// embedding are rejected.
func (s *InMemoryVectorStore) AddDocuments(_ context.Context, source string, docs []StoredDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range docs {
		if doc.Embedding == nil {
			return fmt.Errorf("document %s has no embedding", doc.ID)
		}
		s.sources[source] = append(s.sources[source], doc)
	}

	s.logger.Info("documents added to vector store",
		zap.String("source", source),
		zap.Int("count", len(docs)),
		zap.Int("total", len(s.sources[source])))

	return nil
}

// SemanticSearch ranks the source's documents by cosine similarity to the
// query embedding and returns the topK best.
func (s *InMemoryVectorStore) SemanticSearch(_ context.Context, source string, queryEmbedding []float64, topK int) ([]VectorHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := s.sources[source]
	if len(docs) == 0 || len(queryEmbedding) == 0 {
		return []VectorHit{}, nil
	}

	hits := make([]VectorHit, 0, len(docs))
	for _, doc := range docs {
		similarity := knowledge.CosineSimilarity(queryEmbedding, doc.Embedding)
		if similarity <= 0 {
			continue
		}
		hits = append(hits, VectorHit{
			ID:       doc.ID,
			Title:    doc.Title,
			Content:  doc.Content,
			Metadata: doc.Metadata,
			Score:    similarity,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}

	return hits, nil
}

// DeleteDocuments removes documents by id from a source.
func (s *InMemoryVectorStore) DeleteDocuments(_ context.Context, source string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}

	docs := s.sources[source]
	filtered := docs[:0]
	for _, doc := range docs {
		if !idSet[doc.ID] {
			filtered = append(filtered, doc)
		}
	}

	deleted := len(docs) - len(filtered)
	s.sources[source] = filtered

	s.logger.Info("documents deleted from vector store",
		zap.String("source", source),
		zap.Int("deleted", deleted))

	return nil
}

// Count returns the number of documents held for a source.
func (s *InMemoryVectorStore) Count(_ context.Context, source string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sources[source])
}
