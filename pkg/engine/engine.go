// Package engine composes the retrieval and context-assembly core: the
// long-term document store, the short-term conversation buffer, the hybrid
// ranker, and the embedding and generation collaborators.
//
// An Engine is an explicit object owned by the host. It keeps no package
// state, so its lifecycle (create at startup, Close at shutdown) is visible
// at the call site. Collaborators are built lazily on first use behind a
// check-then-act lock, so concurrent first calls never construct two
// providers, and a failed construction is retried on the next call.
package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/engramco/engram/pkg/embeddings"
	"github.com/engramco/engram/pkg/eventstream"
	"github.com/engramco/engram/pkg/eventstream/nop"
	"github.com/engramco/engram/pkg/llm"
	"github.com/engramco/engram/pkg/memory"
	"github.com/engramco/engram/pkg/rank"
	"github.com/engramco/engram/pkg/vector"
)

// Document add statuses reported by AddResult.
const (
	StatusStored   = "stored"
	StatusRejected = "rejected"
)

// AddResult reports the outcome of an AddDocument call.
type AddResult struct {
	// Status is StatusStored or StatusRejected.
	Status string `json:"status"`

	// Length is the character length of the submitted content.
	Length int `json:"length"`

	// TotalDocuments is the store size after the call.
	TotalDocuments int `json:"total_documents"`
}

// Stats is a read-only snapshot of the long-term store.
type Stats struct {
	DocumentCount int `json:"document_count"`
}

// MemoryExport is a read-only diagnostic snapshot of both memory tiers.
type MemoryExport struct {
	ShortTerm           []memory.Turn `json:"short_term"`
	ShortTermTokenCount int           `json:"short_term_token_count"`
	LongTermDocCount    int           `json:"long_term_doc_count"`
}

// Config wires an Engine's collaborators.
//
// Store and Logger are required. Embedder and Generator may be supplied
// pre-built, or deferred through NewEmbedder/NewGenerator factories that run
// on first use; one of each pair is required. Buffer and Publisher fall back
// to a default buffer and a no-op publisher.
type Config struct {
	// Store is the long-term document store.
	Store vector.Store

	// Buffer is the short-term conversation memory. Defaults to a buffer
	// capped at memory.DefaultMaxTurns.
	Buffer *memory.Buffer

	// Publisher receives memory mutation events. Defaults to no-op.
	Publisher eventstream.Publisher

	// Embedder is a pre-built embedding provider. Takes precedence over
	// NewEmbedder when both are set.
	Embedder embeddings.Embedder

	// NewEmbedder builds the embedding provider on first use.
	NewEmbedder func() (embeddings.Embedder, error)

	// Generator is a pre-built generation provider. Takes precedence over
	// NewGenerator when both are set.
	Generator llm.Generator

	// NewGenerator builds the generation provider on first use.
	NewGenerator func() (llm.Generator, error)

	// Defaults overrides the built-in ask option defaults. Zero fields
	// keep the package constants.
	Defaults AskOptions

	// Logger is the configured zap logger.
	Logger *zap.Logger
}

// Engine is the dual-memory retrieval and context-assembly core.
type Engine struct {
	store     vector.Store
	buffer    *memory.Buffer
	publisher eventstream.Publisher
	defaults  AskOptions
	logger    *zap.Logger

	newEmbedder  func() (embeddings.Embedder, error)
	newGenerator func() (llm.Generator, error)

	// initMu guards the lazy collaborator fields below. Construction is
	// check-then-act under the lock: a winner builds the provider once,
	// losers reuse it, and a failed build stays retryable.
	initMu    sync.Mutex
	embedder  embeddings.Embedder
	generator llm.Generator
}

// New creates an Engine from cfg.
func New(cfg Config) (*Engine, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("engine: store is required")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("engine: logger is required")
	}
	if cfg.Embedder == nil && cfg.NewEmbedder == nil {
		return nil, fmt.Errorf("engine: an embedder or embedder factory is required")
	}
	if cfg.Generator == nil && cfg.NewGenerator == nil {
		return nil, fmt.Errorf("engine: a generator or generator factory is required")
	}

	buffer := cfg.Buffer
	if buffer == nil {
		buffer = memory.NewBuffer(memory.DefaultMaxTurns)
	}

	publisher := cfg.Publisher
	if publisher == nil {
		publisher = nop.NewPublisher()
	}

	return &Engine{
		store:        cfg.Store,
		buffer:       buffer,
		publisher:    publisher,
		defaults:     cfg.Defaults.withDefaults(),
		logger:       cfg.Logger,
		newEmbedder:  cfg.NewEmbedder,
		newGenerator: cfg.NewGenerator,
		embedder:     cfg.Embedder,
		generator:    cfg.Generator,
	}, nil
}

// AddDocument validates, embeds, normalizes, and appends content to the
// long-term store. Rejections (empty content, content that looks like a
// serialized provider error) carry both a populated AddResult and an error
// wrapping vector.ErrValidation so callers can branch with errors.Is.
func (e *Engine) AddDocument(ctx context.Context, content string) (AddResult, error) {
	if strings.TrimSpace(content) == "" {
		return e.rejected(ctx, content), fmt.Errorf("%w: empty content", vector.ErrValidation)
	}
	if looksLikeSerializedError(content) {
		return e.rejected(ctx, content), fmt.Errorf("%w: content looks like a serialized error object", vector.ErrValidation)
	}

	embedder, err := e.embedderInstance()
	if err != nil {
		return AddResult{}, err
	}

	emb, err := embedder.Embed(ctx, content)
	if err != nil {
		return AddResult{}, fmt.Errorf("embedding document: %w", err)
	}

	if err := e.store.Insert(ctx, content, rank.Normalize(emb)); err != nil {
		return AddResult{}, fmt.Errorf("storing document: %w", err)
	}

	count, err := e.store.Count(ctx)
	if err != nil {
		return AddResult{}, fmt.Errorf("counting documents: %w", err)
	}

	e.publish(ctx, eventstream.NewDocumentStoredEvent(len(content), count))
	e.logger.Debug("document added",
		zap.Int("length", len(content)),
		zap.Int("total_documents", count),
	)

	return AddResult{
		Status:         StatusStored,
		Length:         len(content),
		TotalDocuments: count,
	}, nil
}

// RetrieveTopK returns the contents of the k best-ranked documents for the
// query, best first. k <= 0 falls back to rank.DefaultTopK. An empty store
// yields an empty result, not an error; callers always re-rank, so order is
// the only contract.
func (e *Engine) RetrieveTopK(ctx context.Context, query string, k int) ([]string, error) {
	scored, err := e.retrieve(ctx, query, k)
	if err != nil {
		return nil, err
	}

	contents := make([]string, len(scored))
	for i, s := range scored {
		contents[i] = s.Content
	}

	return contents, nil
}

// RetrieveScored is RetrieveTopK with the ranking breakdown attached, for
// callers that surface scores alongside content.
func (e *Engine) RetrieveScored(ctx context.Context, query string, k int) ([]rank.Scored, error) {
	return e.retrieve(ctx, query, k)
}

// ClearStore removes every document from the long-term store, leaving the
// short-term buffer untouched.
func (e *Engine) ClearStore(ctx context.Context) error {
	if err := e.store.Clear(ctx); err != nil {
		return fmt.Errorf("clearing store: %w", err)
	}

	e.publish(ctx, eventstream.NewStoreClearedEvent())
	e.logger.Info("document store cleared")

	return nil
}

// Stats reports the long-term document count.
func (e *Engine) Stats(ctx context.Context) (Stats, error) {
	count, err := e.store.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("counting documents: %w", err)
	}

	return Stats{DocumentCount: count}, nil
}

// ExportMemory returns a read-only snapshot of both memory tiers. It never
// mutates either.
func (e *Engine) ExportMemory(ctx context.Context) (MemoryExport, error) {
	count, err := e.store.Count(ctx)
	if err != nil {
		return MemoryExport{}, fmt.Errorf("counting documents: %w", err)
	}

	return MemoryExport{
		ShortTerm:           e.buffer.Snapshot(),
		ShortTermTokenCount: e.buffer.TokenCount(),
		LongTermDocCount:    count,
	}, nil
}

// ResetAllMemory clears the short-term buffer and the long-term store
// together. The buffer clear cannot fail, so a store failure still leaves
// the conversation history empty; both outcomes are reported.
func (e *Engine) ResetAllMemory(ctx context.Context) error {
	var result *multierror.Error

	e.buffer.Clear()

	if err := e.store.Clear(ctx); err != nil {
		result = multierror.Append(result, fmt.Errorf("clearing store: %w", err))
	}

	if err := result.ErrorOrNil(); err != nil {
		return err
	}

	e.publish(ctx, eventstream.NewMemoryResetEvent())
	e.logger.Info("all memory reset")

	return nil
}

// Close releases any collaborators the engine constructed or was handed.
// The store is owned by the host and closed there.
func (e *Engine) Close() error {
	e.initMu.Lock()
	defer e.initMu.Unlock()

	var result *multierror.Error

	if e.embedder != nil {
		if err := e.embedder.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("closing embedder: %w", err))
		}
		e.embedder = nil
	}

	if e.generator != nil {
		if err := e.generator.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("closing generator: %w", err))
		}
		e.generator = nil
	}

	return result.ErrorOrNil()
}

// retrieve embeds the query and ranks every stored document against it.
func (e *Engine) retrieve(ctx context.Context, query string, k int) ([]rank.Scored, error) {
	embedder, err := e.embedderInstance()
	if err != nil {
		return nil, err
	}

	queryEmb, err := embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	docs, err := e.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("scanning store: %w", err)
	}

	scored, err := rank.TopK(queryEmb, docs, rank.QueryTokens(query), k)
	if err != nil {
		return nil, fmt.Errorf("ranking documents: %w", err)
	}

	return scored, nil
}

// rejected builds the rejection result for invalid content. The count read
// is best-effort; a failing store still yields a usable rejection.
func (e *Engine) rejected(ctx context.Context, content string) AddResult {
	count, err := e.store.Count(ctx)
	if err != nil {
		e.logger.Warn("counting documents for rejection result", zap.Error(err))
		count = 0
	}

	return AddResult{
		Status:         StatusRejected,
		Length:         len(content),
		TotalDocuments: count,
	}
}

// embedderInstance returns the embedding provider, constructing it on first
// use. Construction failures are surfaced and retried on the next call.
func (e *Engine) embedderInstance() (embeddings.Embedder, error) {
	e.initMu.Lock()
	defer e.initMu.Unlock()

	if e.embedder != nil {
		return e.embedder, nil
	}

	embedder, err := e.newEmbedder()
	if err != nil {
		return nil, fmt.Errorf("%w: initializing embedder: %v", vector.ErrEmbedding, err)
	}

	e.embedder = embedder
	e.logger.Debug("embedder initialized")

	return embedder, nil
}

// generatorInstance returns the generation provider, constructing it on
// first use. Construction failures are surfaced and retried on the next call.
func (e *Engine) generatorInstance() (llm.Generator, error) {
	e.initMu.Lock()
	defer e.initMu.Unlock()

	if e.generator != nil {
		return e.generator, nil
	}

	generator, err := e.newGenerator()
	if err != nil {
		return nil, fmt.Errorf("%w: initializing generator: %v", llm.ErrProvider, err)
	}

	e.generator = generator
	e.logger.Debug("generator initialized")

	return generator, nil
}

// publish emits a memory mutation event. Telemetry never fails an
// operation; publish errors are logged and dropped.
func (e *Engine) publish(ctx context.Context, event *eventstream.Event) {
	if err := e.publisher.Publish(ctx, event); err != nil {
		e.logger.Warn("publishing event",
			zap.String("event_type", event.EventType),
			zap.Error(err),
		)
	}
}

// looksLikeSerializedError reports whether content resembles a JSON error
// body, the shape a failing provider hands back. The check is a cheap
// marker scan, not a JSON parse.
func looksLikeSerializedError(content string) bool {
	trimmed := strings.TrimSpace(content)
	return strings.HasPrefix(trimmed, "{") && strings.Contains(trimmed, `"error"`)
}
