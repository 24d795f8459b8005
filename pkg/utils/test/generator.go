package testutils

import (
	"context"
	"sync"
)

// MockGenerator is a test generator that returns a canned completion and
// records every prompt it receives.
type MockGenerator struct {
	// Response is returned by Generate when Err is nil.
	Response string

	// Err causes Generate to fail when set.
	Err error

	mu      sync.Mutex
	prompts []string
}

// NewMockGenerator creates a mock generator with a fixed response.
func NewMockGenerator(response string) *MockGenerator {
	return &MockGenerator{Response: response}
}

func (m *MockGenerator) Generate(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.Err != nil {
		return "", m.Err
	}

	return m.Response, nil
}

// Prompts returns every prompt passed to Generate, in order.
func (m *MockGenerator) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, len(m.prompts))
	copy(out, m.prompts)

	return out
}

// LastPrompt returns the most recent prompt, or the empty string when
// Generate was never called.
func (m *MockGenerator) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.prompts) == 0 {
		return ""
	}

	return m.prompts[len(m.prompts)-1]
}

func (m *MockGenerator) Close() error {
	return nil
}
