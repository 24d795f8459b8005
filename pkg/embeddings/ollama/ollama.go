// Package ollama implements the embeddings.Embedder client for Ollama's
// embedding API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/engramco/engram/pkg/embeddings"
	"github.com/engramco/engram/pkg/vector"
)

const (
	// DefaultModel is the default embedding model.
	DefaultModel = "nomic-embed-text"

	// DefaultBaseURL is the default Ollama API URL.
	DefaultBaseURL = "http://localhost:11434"

	// maxAttempts bounds how often a failing embed call is retried before
	// the error surfaces to the caller.
	maxAttempts = 3

	// retryBaseDelay is the sleep before the second attempt; it doubles on
	// each subsequent one.
	retryBaseDelay = 250 * time.Millisecond
)

// Embedder wraps Ollama's embedding API.
type Embedder struct {
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *zap.Logger

	mu sync.Mutex
	// dims is the vector width observed on the first successful embed.
	dims int
}

// Config holds configuration for the Ollama embedder.
type Config struct {
	// BaseURL is the Ollama API URL (e.g., "http://localhost:11434").
	// Defaults to DefaultBaseURL if empty.
	BaseURL string

	// Model is the embedding model to use (e.g., "nomic-embed-text",
	// "all-minilm"). Defaults to DefaultModel if empty.
	Model string
}

// embedRequest is the request body for Ollama's embedding API.
type embedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

// embedResponse is the response from Ollama's embedding API.
type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// NewEmbedder creates an embedder backed by Ollama's embedding API.
func NewEmbedder(cfg Config, logger *zap.Logger) (*Embedder, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Embedder{
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
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
	reqBody := embedRequest{
		Model: e.model,
		Input: text,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: marshaling request: %v", vector.ErrEmbedding, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embed", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", vector.ErrEmbedding, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: sending request: %v", vector.ErrEmbedding, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: ollama returned status %d: %s", vector.ErrEmbedding, resp.StatusCode, string(body))
	}

	var embedResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", vector.ErrEmbedding, err)
	}

	if len(embedResp.Embeddings) == 0 {
		return nil, fmt.Errorf("%w: no embeddings returned", vector.ErrEmbedding)
	}

	return embedResp.Embeddings[0], nil
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
	e.httpClient.CloseIdleConnections()
	return nil
}

var _ embeddings.Embedder = (*Embedder)(nil)
