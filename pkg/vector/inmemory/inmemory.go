// Package inmemory provides an ephemeral vector store for tests and
// throwaway runs.
package inmemory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/engramco/engram/pkg/vector"
)

// Store implements vector.Store on a mutex-guarded slice. Documents are
// copied on the way in and on the way out so callers can never observe a
// torn write.
type Store struct {
	mu     sync.RWMutex
	docs   []vector.Document
	nextID int64
	dims   int
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{nextID: 1}
}

// Insert appends a document.
func (s *Store) Insert(_ context.Context, content string, embedding []float32) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: empty content", vector.ErrValidation)
	}
	if len(embedding) == 0 {
		return fmt.Errorf("%w: empty embedding", vector.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dims != 0 && len(embedding) != s.dims {
		return fmt.Errorf("%w: got %d dimensions, store holds %d",
			vector.ErrDimensionMismatch, len(embedding), s.dims)
	}

	emb := make([]float32, len(embedding))
	copy(emb, embedding)

	s.docs = append(s.docs, vector.Document{
		ID:        s.nextID,
		Content:   content,
		Embedding: emb,
	})
	s.nextID++

	if s.dims == 0 {
		s.dims = len(embedding)
	}

	return nil
}

// GetAll returns a copy of every document in insertion order.
func (s *Store) GetAll(_ context.Context) ([]vector.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]vector.Document, len(s.docs))
	for i, doc := range s.docs {
		emb := make([]float32, len(doc.Embedding))
		copy(emb, doc.Embedding)
		docs[i] = vector.Document{
			ID:        doc.ID,
			Content:   doc.Content,
			Embedding: emb,
		}
	}

	return docs, nil
}

// Count returns the number of stored documents.
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.docs), nil
}

// Clear removes all documents and releases the fixed dimensionality.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs = nil
	s.dims = 0

	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

var _ vector.Store = (*Store)(nil)
