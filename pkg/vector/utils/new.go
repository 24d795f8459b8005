package vectorutils

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/engramco/engram/pkg/vector"
	"github.com/engramco/engram/pkg/vector/inmemory"
	"github.com/engramco/engram/pkg/vector/postgres"
	"github.com/engramco/engram/pkg/vector/sqlite"
)

type NewStoreOpts struct {
	// Provider selects the backend: "sqlite", "postgres", or "inmemory".
	Provider string

	// Path is the SQLite database file path (sqlite provider only).
	Path string

	// ConnString is the PostgreSQL connection string (postgres provider only).
	ConnString string

	Logger *zap.Logger
}

func NewStore(ctx context.Context, o *NewStoreOpts) (vector.Store, error) {
	switch o.Provider {
	case "sqlite":
		return sqlite.NewStore(sqlite.Config{Path: o.Path}, o.Logger)
	case "postgres":
		return postgres.NewStore(ctx, postgres.Config{ConnString: o.ConnString}, o.Logger)
	case "inmemory":
		return inmemory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", o.Provider)
	}
}
