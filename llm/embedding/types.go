// Package embedding provides the embedding-provider interface and the
// OpenAI-compatible implementation consumed by the semantic memory
// subsystem.
package embedding

import "context"

// Provider generates fixed-dimension embedding vectors.
type Provider interface {
	// EmbedQuery embeds a single string.
	EmbedQuery(ctx context.Context, text string) ([]float64, error)

	// EmbedDocuments embeds a batch of documents.
	EmbedDocuments(ctx context.Context, documents []string) ([][]float64, error)

	// Name returns the provider name.
	Name() string

	// Dimensions returns the embedding dimension.
	Dimensions() int
}
