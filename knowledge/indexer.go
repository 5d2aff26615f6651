package knowledge

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/pipeflow/llm"
	"github.com/BaSui01/pipeflow/types"
)

// EmbeddingProvider aliases the model-layer embedding interface so index
// construction can be wired without importing llm directly.
type EmbeddingProvider = llm.EmbeddingProvider

// Index is the in-memory knowledge index, keyed by source name.
// Built once per configuration load and shared read-only across runs;
// reloads replace the whole index atomically at the config store.
type Index struct {
	sources map[string][]types.IndexedEntry
}

// Source returns the indexed entries for a source name.
func (ix *Index) Source(name string) ([]types.IndexedEntry, bool) {
	if ix == nil {
		return nil, false
	}
	entries, ok := ix.sources[name]
	return entries, ok
}

// Sources returns the names of all indexed sources.
func (ix *Index) Sources() []string {
	if ix == nil {
		return nil
	}
	names := make([]string, 0, len(ix.sources))
	for name := range ix.sources {
		names = append(names, name)
	}
	return names
}

// Indexer builds the knowledge index from raw configuration entries.
type Indexer struct {
	embedder EmbeddingProvider
	logger   *zap.Logger
}

// NewIndexer creates an indexer. embedder may be nil, in which case
// entries are indexed lexically only.
func NewIndexer(embedder EmbeddingProvider, logger *zap.Logger) *Indexer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Indexer{embedder: embedder, logger: logger}
}

// BuildIndex indexes every source. Embedding failures for individual
// entries are logged and skipped; they never abort the build.
func (ix *Indexer) BuildIndex(ctx context.Context, sources map[string][]types.KnowledgeEntry) *Index {
	indexed := make(map[string][]types.IndexedEntry, len(sources))

	for name, entries := range sources {
		out := make([]types.IndexedEntry, 0, len(entries))
		for _, entry := range entries {
			out = append(out, ix.indexEntry(ctx, name, entry))
		}
		indexed[name] = out

		ix.logger.Info("knowledge source indexed",
			zap.String("source", name),
			zap.Int("entries", len(out)))
	}

	return &Index{sources: indexed}
}

func (ix *Indexer) indexEntry(ctx context.Context, source string, entry types.KnowledgeEntry) types.IndexedEntry {
	texts := []string{entry.Title, entry.Summary, entry.Content}
	texts = append(texts, entry.Tags...)
	texts = append(texts, entry.Keywords...)

	out := types.IndexedEntry{
		KnowledgeEntry: entry,
		Tokens:         TokenSet(texts...),
	}

	if ix.embedder != nil {
		embedding, err := ix.embedder.Embed(ctx, strings.Join(texts, "\n"))
		if err != nil {
			ix.logger.Warn("embedding failed, indexing entry lexically only",
				zap.String("source", source),
				zap.String("title", entry.Title),
				zap.Error(err))
		} else {
			out.Embedding = embedding
		}
	}

	return out
}
