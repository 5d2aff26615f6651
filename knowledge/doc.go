// Package knowledge provides the knowledge-base index and the hybrid
// retrieval scorer.
//
// Raw entries from configuration are tokenized (and optionally embedded)
// into an Index by the Indexer; the Scorer then ranks indexed entries
// against a query by blending token-overlap scoring with embedding cosine
// similarity, degrading gracefully to lexical-only when embeddings are
// unavailable.
package knowledge
