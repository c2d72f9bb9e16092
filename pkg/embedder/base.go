// Package embedder defines the interface to the external vector-generation
// collaborator.
//
// The consistency engine treats embeddings as an opportunistic cache: a
// provider may be absent entirely, and no maintenance operation requires one.
package embedder

import "context"

// Provider converts text into embedding vectors.
type Provider interface {
	// Embed converts a single text into a vector.
	Embed(ctx context.Context, text string) ([]float64, error)

	// EmbedBatch converts multiple texts in one request. Results are
	// positionally aligned with the input.
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)

	// Dimensions returns the vector dimension this provider produces.
	Dimensions() int

	// Close releases provider resources.
	Close() error
}
