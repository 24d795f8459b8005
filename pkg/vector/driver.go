// Package vector provides the document vocabulary, the embedding blob codec,
// and the storage contract shared by all long-term memory backends.
package vector

import "context"

// Document is a stored (content, embedding) pair.
type Document struct {
	// ID is the monotonically increasing insertion id assigned by the store.
	ID int64

	// Content is the raw document text.
	Content string

	// Embedding is the vector representation of Content. Every embedding in
	// a store has the same dimensionality, fixed by the first insert.
	Embedding []float32
}

// Store handles durable storage of documents and their embeddings.
// Implementations serialize access internally, so a single Store may be
// shared across goroutines.
type Store interface {
	// Insert appends a new document. There is no deduplication and no
	// per-document delete. The first insert fixes the store's embedding
	// dimensionality; later inserts with a different length fail with
	// ErrDimensionMismatch rather than truncating or padding.
	Insert(ctx context.Context, content string, embedding []float32) error

	// GetAll returns every stored document in insertion order.
	GetAll(ctx context.Context) ([]Document, error)

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// Clear removes every document. Clearing an empty store is a no-op, and
	// a cleared store accepts a new dimensionality on its next insert.
	Clear(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
