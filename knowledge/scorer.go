package knowledge

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/BaSui01/pipeflow/types"
)

// DefaultTopK is the number of matches returned when a retriever node
// does not configure top_k.
const DefaultTopK = 3

// blendLexicalWeight is the share of the lexical score mixed into a
// blended semantic score.
const blendLexicalWeight = 0.25

// Scorer ranks indexed knowledge entries against a query using token
// overlap, optionally blended with embedding cosine similarity.
type Scorer struct {
	logger *zap.Logger
}

// NewScorer creates a scorer.
func NewScorer(logger *zap.Logger) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{logger: logger}
}

// Score computes the relevance of a single entry. queryEmbedding may be
// nil; the score then falls back to lexical-only.
func (s *Scorer) Score(queryTokens []string, entry types.IndexedEntry, queryEmbedding []float64) float64 {
	lexical := s.lexicalScore(queryTokens, entry)

	if queryEmbedding != nil && entry.Embedding != nil && len(queryEmbedding) == len(entry.Embedding) {
		similarity := CosineSimilarity(queryEmbedding, entry.Embedding)
		blended := similarity*entry.EffectivePriority() + lexical*blendLexicalWeight
		// opposing vectors would go negative; scores stay in [0, inf)
		return math.Max(blended, 0)
	}

	return lexical
}

// lexicalScore implements the token-overlap score with tag bonus,
// priority weighting, and a length-normalization penalty favoring
// concise entries. Zero overlap against a non-empty query is a hard 0.
func (s *Scorer) lexicalScore(queryTokens []string, entry types.IndexedEntry) float64 {
	overlap := 0
	for _, tok := range queryTokens {
		if _, ok := entry.Tokens[tok]; ok {
			overlap++
		}
	}
	if overlap == 0 {
		return 0
	}

	raw := float64(overlap) + 0.1*float64(len(entry.Tags))
	penalty := math.Log(float64(len(entry.Tokens))+1) + 1

	return raw * entry.EffectivePriority() / penalty
}

// Rank scores every candidate entry and returns the topK best matches.
//
// Zero-score entries are dropped when the query is non-empty. Ties keep
// the entries' original relative order. When filtering removes every
// candidate but the knowledge base is non-empty, the first min(topK, N)
// entries are returned with score 0 so retrieval never comes back empty
// purely due to lexical mismatch.
func (s *Scorer) Rank(queryTokens []string, entries []types.IndexedEntry, queryEmbedding []float64, topK int) []types.ScoredMatch {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if len(entries) == 0 {
		return nil
	}

	type candidate struct {
		entry types.IndexedEntry
		score float64
	}

	candidates := make([]candidate, 0, len(entries))
	for _, entry := range entries {
		score := s.Score(queryTokens, entry, queryEmbedding)
		if score == 0 && len(queryTokens) > 0 {
			continue
		}
		candidates = append(candidates, candidate{entry: entry, score: score})
	}

	if len(candidates) == 0 {
		s.logger.Debug("no lexical match, falling back to leading entries",
			zap.Int("entries", len(entries)),
			zap.Int("top_k", topK))
		n := topK
		if n > len(entries) {
			n = len(entries)
		}
		matches := make([]types.ScoredMatch, 0, n)
		for i := 0; i < n; i++ {
			matches = append(matches, toMatch(i+1, entries[i], 0))
		}
		return matches
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) > topK {
		candidates = candidates[:topK]
	}

	matches := make([]types.ScoredMatch, 0, len(candidates))
	for i, c := range candidates {
		matches = append(matches, toMatch(i+1, c.entry, c.score))
	}
	return matches
}

func toMatch(rank int, entry types.IndexedEntry, score float64) types.ScoredMatch {
	return types.ScoredMatch{
		Rank:     rank,
		ID:       entry.ID,
		Title:    entry.Title,
		Content:  entry.Content,
		Summary:  entry.Summary,
		Tags:     entry.Tags,
		Keywords: entry.Keywords,
		Score:    score,
	}
}

// CosineSimilarity computes dot(a,b) / (|a|*|b|). Mismatched dimensions
// or a zero-norm vector yield 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
