// Package llmutils is the generation utility package
package llmutils

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/engramco/engram/pkg/llm"
	"github.com/engramco/engram/pkg/llm/anthropic"
	"github.com/engramco/engram/pkg/llm/ollama"
	"github.com/engramco/engram/pkg/llm/openai"
)

// NewGeneratorOpts selects and configures a generation provider.
type NewGeneratorOpts struct {
	Provider  string
	BaseURL   string
	Model     string
	APIKey    string
	MaxTokens int
	Logger    *zap.Logger
}

// NewGenerator builds the generator named by o.Provider.
func NewGenerator(o *NewGeneratorOpts) (llm.Generator, error) {
	switch o.Provider {
	case "ollama":
		return ollama.NewGenerator(ollama.Config{
			BaseURL: o.BaseURL,
			Model:   o.Model,
		}, o.Logger)
	case "anthropic":
		return anthropic.NewGenerator(anthropic.Config{
			APIKey:    o.APIKey,
			BaseURL:   o.BaseURL,
			Model:     o.Model,
			MaxTokens: int64(o.MaxTokens),
		}, o.Logger)
	case "openai":
		return openai.NewGenerator(openai.Config{
			APIKey:    o.APIKey,
			BaseURL:   o.BaseURL,
			Model:     o.Model,
			MaxTokens: o.MaxTokens,
		}, o.Logger)
	default:
		return nil, fmt.Errorf("unsupported generation provider: %s", o.Provider)
	}
}
