// Package openai implements the llm.Generator client for the OpenAI chat
// completions API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	gopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/engramco/engram/pkg/llm"
)

const (
	// maxAttempts bounds how often a failing call is retried before the
	// error surfaces to the caller.
	maxAttempts = 3

	// retryBaseDelay is the sleep before the second attempt; it doubles on
	// each subsequent one.
	retryBaseDelay = 250 * time.Millisecond
)

// Generator wraps the OpenAI chat completions API.
type Generator struct {
	client    *gopenai.Client
	model     string
	maxTokens int
	logger    *zap.Logger
}

// Config holds configuration for the OpenAI generator.
type Config struct {
	// APIKey authenticates against the API. Required.
	APIKey string

	// BaseURL overrides the API endpoint, for OpenAI-compatible backends.
	BaseURL string

	// Model is the generation model to use. Defaults to gpt-4o-mini.
	Model string

	// MaxTokens caps completion length. Zero leaves the backend default.
	MaxTokens int
}

// NewGenerator creates a generator backed by the OpenAI chat completions
// API.
func NewGenerator(cfg Config, logger *zap.Logger) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai generator: API key is required")
	}

	clientCfg := gopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = gopenai.GPT4oMini
	}

	return &Generator{
		client:    gopenai.NewClientWithConfig(clientCfg),
		model:     model,
		maxTokens: cfg.MaxTokens,
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
	resp, err := g.client.CreateChatCompletion(ctx, gopenai.ChatCompletionRequest{
		Model: g.model,
		Messages: []gopenai.ChatCompletionMessage{
			{Role: gopenai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens: g.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: openai completion call: %v", llm.ErrProvider, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: completion contained no choices", llm.ErrProvider)
	}

	return resp.Choices[0].Message.Content, nil
}

// Close releases resources held by the generator.
func (g *Generator) Close() error {
	return nil
}

var _ llm.Generator = (*Generator)(nil)
