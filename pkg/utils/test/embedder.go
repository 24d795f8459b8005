// Package testutils provides hand-rolled collaborator doubles for ginkgo
// suites.
package testutils

import (
	"context"
	"fmt"
	"sync"
)

// MockEmbedder is a test embedder that returns predictable embeddings.
type MockEmbedder struct {
	// Embeddings maps exact input text to the vector Embed returns for it.
	Embeddings map[string][]float32

	// Default is returned for any text without an Embeddings entry.
	Default []float32

	// FailOn causes Embed to return an error when the input text matches.
	FailOn string

	// Err overrides the error returned for FailOn matches when set.
	Err error

	mu    sync.Mutex
	calls []string
}

// NewMockEmbedder creates a mock embedder with a three-dimensional default
// vector.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{
		Embeddings: make(map[string][]float32),
		Default:    []float32{0.1, 0.2, 0.3},
	}
}

func (m *MockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	m.mu.Unlock()

	if m.FailOn != "" && text == m.FailOn {
		if m.Err != nil {
			return nil, m.Err
		}
		return nil, fmt.Errorf("mock embedding failure for: %s", text)
	}

	if emb, ok := m.Embeddings[text]; ok {
		return emb, nil
	}

	return m.Default, nil
}

// Dimensions reports the width of the default vector.
func (m *MockEmbedder) Dimensions() int {
	return len(m.Default)
}

// Calls returns every text passed to Embed, in order.
func (m *MockEmbedder) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, len(m.calls))
	copy(out, m.calls)

	return out
}

func (m *MockEmbedder) Close() error {
	return nil
}
