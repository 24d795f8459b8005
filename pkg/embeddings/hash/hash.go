// Package hash implements a deterministic offline embeddings.Embedder.
//
// Vectors are derived from an FNV-1a hash of the input expanded through a
// linear congruential generator and normalized to unit length. The same text
// always yields the same vector, which makes the provider suitable for
// development, tests, and air-gapped deployments where no embedding backend
// is reachable. The vectors carry no semantic signal; retrieval quality
// degrades to exact-text and lexical matching.
package hash

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/engramco/engram/pkg/embeddings"
)

// DefaultDimensions is the vector width used when none is configured.
const DefaultDimensions = 64

// Knuth MMIX linear congruential generator constants.
const (
	lcgMultiplier = 6364136223846793005
	lcgIncrement  = 1442695040888963407
)

// Embedder produces deterministic hash-derived embeddings.
type Embedder struct {
	dims int
}

// Config holds configuration for the hash embedder.
type Config struct {
	// Dimensions is the width of produced vectors. Defaults to
	// DefaultDimensions when zero or less.
	Dimensions int
}

// NewEmbedder creates a deterministic hash-based embedder.
func NewEmbedder(cfg Config) (*Embedder, error) {
	dims := cfg.Dimensions
	if dims <= 0 {
		dims = DefaultDimensions
	}

	return &Embedder{dims: dims}, nil
}

// Embed derives a unit vector from the FNV-1a hash of text. The result is a
// pure function of the input and the configured width.
func (e *Embedder) Embed(_ context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()

	vec := make([]float32, e.dims)
	var norm float64
	for i := 0; i < e.dims; i++ {
		seed = seed*lcgMultiplier + lcgIncrement
		v := float64(int64(seed)) / float64(math.MaxInt64)
		vec[i] = float32(v)
		norm += v * v
	}

	if norm == 0 {
		vec[0] = 1
		return vec, nil
	}

	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}

	return vec, nil
}

// Dimensions reports the configured vector width.
func (e *Embedder) Dimensions() int {
	return e.dims
}

// Close is a no-op for the hash embedder.
func (e *Embedder) Close() error {
	return nil
}

var _ embeddings.Embedder = (*Embedder)(nil)
