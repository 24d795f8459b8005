package vector

import "errors"

var (
	// ErrConnection is returned when the store's backing medium cannot be
	// opened, read, or written.
	ErrConnection = errors.New("vector store connection failed")

	// ErrDimensionMismatch is returned when two embeddings, or an embedding
	// and the store's fixed dimensionality, disagree in length. It signals a
	// configuration change (such as a swapped embedding model), not a
	// recoverable input error.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmbedding is returned when embedding generation fails.
	ErrEmbedding = errors.New("embedding failed")

	// ErrNotFound is returned when a requested document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrValidation is returned when document content is empty or malformed.
	ErrValidation = errors.New("invalid document content")
)
