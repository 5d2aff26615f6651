package knowledge

import (
	"math"
	"testing"

	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/BaSui01/pipeflow/types"
)

func TestRank_PropertyNeverExceedsTopK(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := NewScorer(zap.NewNop())

		vocab := []string{"alpha", "beta", "gamma", "delta", "epsilon"}
		n := rapid.IntRange(1, 12).Draw(t, "entries")
		entries := make([]types.IndexedEntry, 0, n)
		for i := 0; i < n; i++ {
			toks := rapid.SliceOfN(rapid.SampledFrom(vocab), 0, 5).Draw(t, "tokens")
			e := entryWithTokens("e", rapid.Float64Range(0.1, 5).Draw(t, "priority"), toks...)
			entries = append(entries, e)
		}

		query := rapid.SliceOfN(rapid.SampledFrom(vocab), 0, 4).Draw(t, "query")
		topK := rapid.IntRange(1, 6).Draw(t, "topK")

		matches := s.Rank(query, entries, nil, topK)

		if len(matches) > topK {
			t.Fatalf("got %d matches, topK is %d", len(matches), topK)
		}
		if len(entries) > 0 && len(matches) == 0 {
			t.Fatalf("non-empty knowledge base must never yield zero matches")
		}

		// scores must be non-increasing and ranks sequential
		for i := range matches {
			if matches[i].Rank != i+1 {
				t.Fatalf("rank %d at position %d", matches[i].Rank, i)
			}
			if i > 0 && matches[i].Score > matches[i-1].Score {
				t.Fatalf("scores not descending: %v then %v", matches[i-1].Score, matches[i].Score)
			}
		}
	})
}

func TestCosineSimilarity_PropertySelfSimilarityIsOne(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		dim := rapid.IntRange(1, 16).Draw(t, "dim")
		vec := make([]float64, dim)
		nonZero := false
		for i := range vec {
			vec[i] = rapid.Float64Range(-10, 10).Draw(t, "component")
			if vec[i] != 0 {
				nonZero = true
			}
		}
		if !nonZero {
			vec[0] = 1
		}

		got := CosineSimilarity(vec, vec)
		if math.Abs(got-1.0) > 1e-9 {
			t.Fatalf("self-similarity = %v, want 1.0", got)
		}
	})
}
