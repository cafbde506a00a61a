// Package embedder provides text embedding clients for vector
// representations. Implementations wrap either a remote API (OpenAI) or a
// local in-process model (EmbedEverything).
package embedder

import "context"

// Client generates embeddings for text. Implementations handle batching
// internally based on provider limits.
type Client interface {
	// Embed generates embeddings for the given texts, one vector per input
	// in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedSingle generates an embedding for a single text.
	EmbedSingle(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the dimensionality of the produced vectors.
	Dimensions() int

	// Close cleans up any resources.
	Close() error
}

// Config holds provider-independent embedding settings.
type Config struct {
	// Model names the embedding model.
	Model string
	// Dimensions is the expected vector dimensionality.
	Dimensions int
	// BatchSize caps how many texts go into one provider request.
	BatchSize int
}

// DefaultBatchSize is used when Config.BatchSize is unset.
const DefaultBatchSize = 100
