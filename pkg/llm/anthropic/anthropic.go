// Package anthropic implements the llm.Generator client for the Anthropic
// Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/engramco/engram/pkg/llm"
)

const (
	// DefaultModel is the default generation model.
	DefaultModel = "claude-sonnet-4-20250514"

	// DefaultMaxTokens caps completion length when none is configured.
	DefaultMaxTokens = 1024

	// maxAttempts bounds how often a failing call is retried before the
	// error surfaces to the caller.
	maxAttempts = 3

	// retryBaseDelay is the sleep before the second attempt; it doubles on
	// each subsequent one.
	retryBaseDelay = 250 * time.Millisecond
)

// Generator wraps the Anthropic Messages API.
type Generator struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
	logger    *zap.Logger
}

// Config holds configuration for the Anthropic generator.
type Config struct {
	// APIKey authenticates against the API. Required.
	APIKey string

	// BaseURL overrides the API endpoint.
	BaseURL string

	// Model is the generation model to use. Defaults to DefaultModel.
	Model string

	// MaxTokens caps completion length. Defaults to DefaultMaxTokens when
	// zero or less.
	MaxTokens int64
}

// NewGenerator creates a generator backed by the Anthropic Messages API.
func NewGenerator(cfg Config, logger *zap.Logger) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic generator: API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// The generator owns the retry policy; the SDK's built-in
		// retries would multiply it.
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := anthropic.Model(DefaultModel)
	if cfg.Model != "" {
		model = anthropic.Model(cfg.Model)
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	return &Generator{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
		logger:    logger,
	}, nil
}

// Generate returns the model's completion for prompt. Failed calls are
// retried with a doubling backoff before the error surfaces; every failure
// wraps llm.ErrProvider.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", llm.ErrProvider, ctx.Err())
			case <-time.After(retryBaseDelay << (attempt - 1)):
			}
		}

		text, err := g.generateOnce(ctx, prompt)
		if err == nil {
			return text, nil
		}

		lastErr = err
		g.logger.Warn("generation attempt failed",
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}

	return "", lastErr
}

func (g *Generator) generateOnce(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     g.model,
		MaxTokens: g.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: anthropic messages call: %v", llm.ErrProvider, err)
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}

	if out.Len() == 0 {
		return "", fmt.Errorf("%w: completion contained no text", llm.ErrProvider)
	}

	return out.String(), nil
}

// Close releases resources held by the generator.
func (g *Generator) Close() error {
	return nil
}

var _ llm.Generator = (*Generator)(nil)
