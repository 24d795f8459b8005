// Package sqlite provides the durable SQLite-backed vector store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/engramco/engram/pkg/vector"
)

// Store implements vector.Store on a single SQLite documents table. A single
// mutex guards every operation so concurrent inserts and scans never observe
// a torn write.
type Store struct {
	db     *sql.DB
	logger *zap.Logger

	mu   sync.Mutex
	dims int // fixed by the first insert, 0 while the store is empty
}

// Config holds configuration for the SQLite store.
type Config struct {
	// Path is the SQLite database file. Use ":memory:" for an ephemeral
	// database in tests.
	Path string
}

const createDocumentsTable = `
CREATE TABLE IF NOT EXISTS documents (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	content TEXT NOT NULL,
	embedding BLOB NOT NULL
)`

// NewStore opens (or creates) the database at cfg.Path and bootstraps the
// documents table. When the table already holds documents, the store's fixed
// dimensionality is re-derived from the first row so restarts keep enforcing
// the original insert contract.
func NewStore(cfg Config, logger *zap.Logger) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("%w: database path is required", vector.ErrConnection)
	}

	db, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %v", vector.ErrConnection, err)
	}

	if _, err := db.Exec(createDocumentsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: creating documents table: %v", vector.ErrConnection, err)
	}

	s := &Store{
		db:     db,
		logger: logger,
	}

	var blobLen int64
	err = db.QueryRow(`SELECT length(embedding) FROM documents ORDER BY id LIMIT 1`).Scan(&blobLen)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// Empty store, dimensionality fixed by the first insert.
	case err != nil:
		db.Close()
		return nil, fmt.Errorf("%w: reading stored dimensionality: %v", vector.ErrConnection, err)
	default:
		s.dims = int(blobLen) / 4
	}

	logger.Info("sqlite vector store initialized",
		zap.String("path", cfg.Path),
		zap.Int("dimensions", s.dims),
	)

	return s, nil
}

// Insert appends a document. The embedding is serialized through the shared
// little-endian codec so reads reproduce it bit for bit.
func (s *Store) Insert(ctx context.Context, content string, embedding []float32) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: empty content", vector.ErrValidation)
	}
	if len(embedding) == 0 {
		return fmt.Errorf("%w: empty embedding", vector.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dims != 0 && len(embedding) != s.dims {
		return fmt.Errorf("%w: got %d dimensions, store holds %d",
			vector.ErrDimensionMismatch, len(embedding), s.dims)
	}

	blob := vector.EncodeEmbedding(embedding)
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (content, embedding) VALUES (?, ?)`,
		content, blob,
	); err != nil {
		return fmt.Errorf("%w: inserting document: %v", vector.ErrConnection, err)
	}

	if s.dims == 0 {
		s.dims = len(embedding)
	}

	s.logger.Debug("document inserted",
		zap.Int("content_length", len(content)),
		zap.Int("dimensions", len(embedding)),
	)

	return nil
}

// GetAll returns every document in insertion (id) order.
func (s *Store) GetAll(ctx context.Context) ([]vector.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, content, embedding FROM documents ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying documents: %v", vector.ErrConnection, err)
	}
	defer rows.Close()

	var docs []vector.Document
	for rows.Next() {
		var (
			doc  vector.Document
			blob []byte
		)
		if err := rows.Scan(&doc.ID, &doc.Content, &blob); err != nil {
			return nil, fmt.Errorf("%w: scanning document: %v", vector.ErrConnection, err)
		}

		doc.Embedding, err = vector.DecodeEmbedding(blob)
		if err != nil {
			return nil, fmt.Errorf("decoding embedding for document %d: %w", doc.ID, err)
		}

		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating documents: %v", vector.ErrConnection, err)
	}

	return docs, nil
}

// Count returns the number of stored documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: counting documents: %v", vector.ErrConnection, err)
	}

	return n, nil
}

// Clear removes all documents and releases the fixed dimensionality so the
// next insert can establish a new one.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents`); err != nil {
		return fmt.Errorf("%w: clearing documents: %v", vector.ErrConnection, err)
	}

	s.dims = 0
	s.logger.Debug("document store cleared")

	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ vector.Store = (*Store)(nil)
