package testutils

import (
	"context"

	"github.com/engramco/engram/pkg/vector"
)

// FailingStore wraps a vector.Store and fails selected operations with a
// configured error. Operations without a configured failure pass through to
// the wrapped store.
type FailingStore struct {
	vector.Store

	InsertErr error
	GetAllErr error
	CountErr  error
	ClearErr  error
}

// NewFailingStore wraps inner with no failures configured.
func NewFailingStore(inner vector.Store) *FailingStore {
	return &FailingStore{Store: inner}
}

func (s *FailingStore) Insert(ctx context.Context, content string, embedding []float32) error {
	if s.InsertErr != nil {
		return s.InsertErr
	}
	return s.Store.Insert(ctx, content, embedding)
}

func (s *FailingStore) GetAll(ctx context.Context) ([]vector.Document, error) {
	if s.GetAllErr != nil {
		return nil, s.GetAllErr
	}
	return s.Store.GetAll(ctx)
}

func (s *FailingStore) Count(ctx context.Context) (int, error) {
	if s.CountErr != nil {
		return 0, s.CountErr
	}
	return s.Store.Count(ctx)
}

func (s *FailingStore) Clear(ctx context.Context) error {
	if s.ClearErr != nil {
		return s.ClearErr
	}
	return s.Store.Clear(ctx)
}
