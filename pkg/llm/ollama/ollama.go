// Package ollama implements the llm.Generator client for Ollama's generate
// API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/engramco/engram/pkg/llm"
)

const (
	// DefaultModel is the default generation model.
	DefaultModel = "gemma3:latest"

	// DefaultBaseURL is the default Ollama API URL.
	DefaultBaseURL = "http://localhost:11434"

	// maxAttempts bounds how often a failing generate call is retried
	// before the error surfaces to the caller.
	maxAttempts = 3

	// retryBaseDelay is the sleep before the second attempt; it doubles on
	// each subsequent one.
	retryBaseDelay = 250 * time.Millisecond
)

// Generator wraps Ollama's generate API.
type Generator struct {
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

// Config holds configuration for the Ollama generator.
type Config struct {
	// BaseURL is the Ollama API URL (e.g., "http://localhost:11434").
	// Defaults to DefaultBaseURL if empty.
	BaseURL string

	// Model is the generation model to use (e.g., "gemma3:1b",
	// "llama3.2"). Defaults to DefaultModel if empty.
	Model string
}

// generateRequest is the request body for Ollama's generate API. Stream is
// always serialized so the backend answers with a single JSON object.
type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// generateResponse is the non-streaming response from Ollama's generate API.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// NewGenerator creates a generator backed by Ollama's generate API.
func NewGenerator(cfg Config, logger *zap.Logger) (*Generator, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Generator{
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			// LLM responses can be slow
			Timeout: 5 * time.Minute,
		},
		logger: logger,
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
	reqBody := generateRequest{
		Model:  g.model,
		Prompt: prompt,
		Stream: false,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: marshaling request: %v", llm.ErrProvider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/generate", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("%w: creating request: %v", llm.ErrProvider, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: sending request: %v", llm.ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: ollama returned status %d: %s", llm.ErrProvider, resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", llm.ErrProvider, err)
	}

	return genResp.Response, nil
}

// Close releases resources held by the generator.
func (g *Generator) Close() error {
	g.httpClient.CloseIdleConnections()
	return nil
}

var _ llm.Generator = (*Generator)(nil)
