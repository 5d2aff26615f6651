// Package rag defines the semantic vector-store boundary of the engine.
//
// The VectorStore interface is the seam to a durable vector database;
// InMemoryVectorStore is a cosine-similarity reference implementation used
// by tests and small deployments. Retriever nodes prefer vector-store hits
// and fall back to the local knowledge scorer when a store misses or fails.
package rag
