// Package embeddings defines the embedding provider contract.
package embeddings

import "context"

// Embedder provides text embedding capabilities.
type Embedder interface {
	// Embed converts text into a vector embedding. Identical input to an
	// identical provider and model yields an identical vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions reports the width of the vectors this embedder produces.
	// Zero means the width is not yet known; providers that learn it from
	// their backend report it after the first successful Embed.
	Dimensions() int

	// Close releases any resources held by the embedder.
	Close() error
}
