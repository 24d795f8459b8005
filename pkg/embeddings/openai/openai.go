// Package openai implements the embeddings.Embedder client for the OpenAI
// embeddings API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	gopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/engramco/engram/pkg/embeddings"
	"github.com/engramco/engram/pkg/vector"
)

const (
	// maxAttempts bounds how often a failing embed call is retried before
	// the error surfaces to the caller.
	maxAttempts = 3

	// retryBaseDelay is the sleep before the second attempt; it doubles on
	// each subsequent one.
	retryBaseDelay = 250 * time.Millisecond
)

// Embedder wraps the OpenAI embeddings API.
type Embedder struct {
	client *gopenai.Client
	model  gopenai.EmbeddingModel
	logger *zap.Logger

	mu sync.Mutex
	// dims is the vector width observed on the first successful embed.
	dims int
}

// Config holds configuration for the OpenAI embedder.
type Config struct {
	// APIKey authenticates against the API. Required.
	APIKey string

	// BaseURL overrides the API endpoint, for OpenAI-compatible backends.
	BaseURL string

	// Model is the embedding model to use. Defaults to
	// text-embedding-3-small if empty.
	Model string
}

// NewEmbedder creates an embedder backed by the OpenAI embeddings API.
func NewEmbedder(cfg Config, logger *zap.Logger) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai embedder: API key is required")
	}

	clientCfg := gopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := gopenai.SmallEmbedding3
	if cfg.Model != "" {
		model = gopenai.EmbeddingModel(cfg.Model)
	}

	return &Embedder{
		client: gopenai.NewClientWithConfig(clientCfg),
		model:  model,
		logger: logger,
	}, nil
}

// Embed converts text into a vector embedding. Failed calls are retried with
// a doubling backoff before the error surfaces; every failure wraps
// vector.ErrEmbedding.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", vector.ErrEmbedding, ctx.Err())
			case <-time.After(retryBaseDelay << (attempt - 1)):
			}
		}

		vec, err := e.embedOnce(ctx, text)
		if err == nil {
			e.observeDims(len(vec))
			return vec, nil
		}

		lastErr = err
		e.logger.Warn("embedding attempt failed",
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}

	return nil, lastErr
}

func (e *Embedder) embedOnce(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, gopenai.EmbeddingRequest{
		Input: []string{text},
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: openai embeddings call: %v", vector.ErrEmbedding, err)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: no embeddings returned", vector.ErrEmbedding)
	}

	return resp.Data[0].Embedding, nil
}

// Dimensions reports the vector width observed on the first successful
// Embed, or zero before that.
func (e *Embedder) Dimensions() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.dims
}

func (e *Embedder) observeDims(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.dims = n
}

// Close releases resources held by the embedder.
func (e *Embedder) Close() error {
	return nil
}

var _ embeddings.Embedder = (*Embedder)(nil)
