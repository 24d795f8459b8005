// Package llm defines the text generation provider contract.
package llm

import "context"

// Generator produces a completion for a fully assembled prompt.
type Generator interface {
	// Generate returns the model's completion for prompt. Generation is
	// blocking; callers bound it through ctx.
	Generate(ctx context.Context, prompt string) (string, error)

	// Close releases any resources held by the generator.
	Close() error
}
