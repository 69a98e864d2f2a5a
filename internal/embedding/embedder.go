// Package embedding provides interfaces and implementations for text embedding,
// including the authenticated gRPC client for the remote embedding service and
// a colocated Ollama-backed embedder for in-process use.
package embedding

import (
	"context"
	"errors"
	"math"
)

// ErrAuthentication is returned when the embedding service rejects the call's
// credentials. It indicates misconfiguration and is never retried.
var ErrAuthentication = errors.New("embedding: authentication failed")

// ErrTransport is returned for network, timeout, and malformed-payload
// failures. Embedding is idempotent and side-effect-free, so the whole batch
// is safe to retry.
var ErrTransport = errors.New("embedding: transport failure")

// Embedder defines the interface for text embedding services.
type Embedder interface {
	// Embed generates an embedding vector for a single text input.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embedding vectors for multiple text inputs.
	// Returns a slice of embeddings in the same order as the input texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the dimensionality of the embedding vectors.
	Dimension() int

	// ModelName returns the identifying tag of the embedding model. Chunks
	// store this tag in meta.embedding_model and retrieval filters on it.
	ModelName() string
}

// SlicedNormL2 truncates vec to dim elements and L2-normalizes the slice.
// It is used when a wide model's vectors are stored into a narrower dimension
// shard (512/1024/2048 slices of a 2048-wide model, for instance).
func SlicedNormL2(vec []float32, dim int) []float32 {
	if dim <= 0 || dim > len(vec) {
		dim = len(vec)
	}
	var sum float64
	for _, v := range vec[:dim] {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	out := make([]float32, dim)
	if norm == 0 {
		copy(out, vec[:dim])
		return out
	}
	for i, v := range vec[:dim] {
		out[i] = float32(float64(v) / norm)
	}
	return out
}
