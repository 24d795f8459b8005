// Package embeddingutils is the embeddings utility package
package embeddingutils

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/engramco/engram/pkg/embeddings"
	"github.com/engramco/engram/pkg/embeddings/hash"
	"github.com/engramco/engram/pkg/embeddings/ollama"
	"github.com/engramco/engram/pkg/embeddings/openai"
)

// NewEmbedderOpts selects and configures an embedding provider.
type NewEmbedderOpts struct {
	Provider   string
	BaseURL    string
	Model      string
	APIKey     string
	Dimensions int

	// CacheSize is the embedding cache budget in bytes. Zero or less
	// disables caching.
	CacheSize int64

	Logger *zap.Logger
}

// NewEmbedder builds the embedder named by o.Provider, wrapped in a cache
// when a cache budget is configured.
func NewEmbedder(o *NewEmbedderOpts) (embeddings.Embedder, error) {
	var (
		inner embeddings.Embedder
		err   error
	)

	switch o.Provider {
	case "ollama":
		inner, err = ollama.NewEmbedder(ollama.Config{
			BaseURL: o.BaseURL,
			Model:   o.Model,
		}, o.Logger)
	case "openai":
		inner, err = openai.NewEmbedder(openai.Config{
			APIKey:  o.APIKey,
			BaseURL: o.BaseURL,
			Model:   o.Model,
		}, o.Logger)
	case "hash":
		inner, err = hash.NewEmbedder(hash.Config{
			Dimensions: o.Dimensions,
		})
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", o.Provider)
	}
	if err != nil {
		return nil, err
	}

	if o.CacheSize > 0 {
		return embeddings.NewCached(inner, o.CacheSize)
	}

	return inner, nil
}
