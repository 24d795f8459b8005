package embeddings

import (
	"context"
	"errors"

	"github.com/dgraph-io/ristretto"
)

// DefaultCacheSize is the cache budget in bytes used when none is
// configured.
const DefaultCacheSize = 32 << 20

// Cached decorates an Embedder with an in-process ristretto cache keyed by
// the exact input text. Embedding providers are deterministic for a fixed
// model, so cached vectors never go stale within a process lifetime.
type Cached struct {
	inner Embedder
	cache *ristretto.Cache
}

// NewCached wraps inner with a cache holding at most maxBytes of vectors.
// Each entry is costed at four bytes per dimension.
func NewCached(inner Embedder, maxBytes int64) (*Cached, error) {
	if inner == nil {
		return nil, errors.New("embedding cache: inner embedder is required")
	}
	if maxBytes <= 0 {
		maxBytes = DefaultCacheSize
	}

	// Counter budget sized at ten times the expected entry count,
	// assuming small-model vectors around 1 KiB each.
	numCounters := maxBytes / 100
	if numCounters < 1000 {
		numCounters = 1000
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: numCounters,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	return &Cached{inner: inner, cache: cache}, nil
}

// Embed returns the cached vector for text when present, otherwise embeds
// through the inner provider and caches the result. Cache entries and hits
// are copied so callers can never alias cached memory.
func (c *Cached) Embed(ctx context.Context, text string) ([]float32, error) {
	if hit, ok := c.cache.Get(text); ok {
		if vec, ok := hit.([]float32); ok {
			out := make([]float32, len(vec))
			copy(out, vec)
			return out, nil
		}
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	entry := make([]float32, len(vec))
	copy(entry, vec)
	c.cache.Set(text, entry, int64(4*len(entry)))

	return vec, nil
}

// Dimensions reports the inner embedder's vector width.
func (c *Cached) Dimensions() int {
	return c.inner.Dimensions()
}

// Wait blocks until buffered cache writes are applied. Sets are
// asynchronous; callers needing read-your-write visibility (tests, mostly)
// call this between Embed calls.
func (c *Cached) Wait() {
	c.cache.Wait()
}

// Close releases the cache and the inner embedder.
func (c *Cached) Close() error {
	c.cache.Close()
	return c.inner.Close()
}

var _ Embedder = (*Cached)(nil)
