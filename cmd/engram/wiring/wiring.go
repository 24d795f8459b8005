// Package wiring assembles the shared runtime for engram commands: config
// resolution through viper, and the store/embedder/generator/engine stack
// built from the resolved config.
package wiring

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/engramco/engram/pkg/config"
	"github.com/engramco/engram/pkg/dotdir"
	"github.com/engramco/engram/pkg/embeddings"
	embeddingutils "github.com/engramco/engram/pkg/embeddings/utils"
	"github.com/engramco/engram/pkg/engine"
	"github.com/engramco/engram/pkg/eventstream"
	"github.com/engramco/engram/pkg/eventstream/kafka"
	"github.com/engramco/engram/pkg/eventstream/nop"
	"github.com/engramco/engram/pkg/llm"
	llmutils "github.com/engramco/engram/pkg/llm/utils"
	"github.com/engramco/engram/pkg/memory"
	"github.com/engramco/engram/pkg/vector"
	vectorutils "github.com/engramco/engram/pkg/vector/utils"
)

// Flags is the shared flag registry for commands that build an engine.
// Name, shorthand, viper key, and description live here once so the same
// logical flag cannot drift between "engram serve", "engram add", and
// "engram ask".
var Flags = config.FlagSet{
	config.FlagListen: {
		Name: "listen", Shorthand: "l", ViperKey: "api.listen_addr",
		Description: "Address for the API server to listen on",
	},
	config.FlagEnableMCP: {
		Name: "mcp", ViperKey: "api.enable_mcp",
		Description: "Mount the MCP server under /mcp",
	},
	config.FlagStorageDriver: {
		Name: "storage-driver", ViperKey: "storage.driver",
		Description: "Long-term store backend (sqlite, postgres, inmemory)",
	},
	config.FlagDBPath: {
		Name: "db", ViperKey: "storage.path",
		Description: "Path to the SQLite database (default: .engram or ~/.engram resolution)",
	},
	config.FlagStorageDSN: {
		Name: "dsn", ViperKey: "storage.dsn",
		Description: "PostgreSQL connection string",
	},
	config.FlagEmbeddingProv: {
		Name: "embedding-provider", ViperKey: "embedding.provider",
		Description: "Embedding provider (ollama, openai, hash)",
	},
	config.FlagEmbeddingBaseURL: {
		Name: "embedding-base-url", ViperKey: "embedding.base_url",
		Description: "Embedding provider base URL",
	},
	config.FlagEmbeddingModel: {
		Name: "embedding-model", ViperKey: "embedding.model",
		Description: "Embedding model name",
	},
	config.FlagEmbeddingDims: {
		Name: "embedding-dimensions", ViperKey: "embedding.dimensions",
		Description: "Embedding vector width",
	},
	config.FlagGenerationProv: {
		Name: "generation-provider", ViperKey: "generation.provider",
		Description: "Generation provider (ollama, anthropic, openai)",
	},
	config.FlagGenerationBaseURL: {
		Name: "generation-base-url", ViperKey: "generation.base_url",
		Description: "Generation provider base URL",
	},
	config.FlagGenerationModel: {
		Name: "generation-model", ViperKey: "generation.model",
		Description: "Generation model name",
	},
	config.FlagSystemPrompt: {
		Name: "system-prompt", ViperKey: "memory.system_prompt",
		Description: "System prompt prepended to assembled prompts",
	},
	config.FlagShortTermBudget: {
		Name: "short-term-budget", ViperKey: "memory.max_short_term_tokens",
		Description: "Token budget for rendered conversation history",
	},
	config.FlagLongTermBudget: {
		Name: "long-term-budget", ViperKey: "memory.max_long_term_tokens",
		Description: "Token budget for retrieved knowledge",
	},
}

// StoreFlagKeys are the registry keys every store-touching command carries.
var StoreFlagKeys = []string{
	config.FlagStorageDriver,
	config.FlagDBPath,
	config.FlagStorageDSN,
}

// EmbeddingFlagKeys are the registry keys for commands that embed content.
var EmbeddingFlagKeys = []string{
	config.FlagEmbeddingProv,
	config.FlagEmbeddingBaseURL,
	config.FlagEmbeddingModel,
	config.FlagEmbeddingDims,
}

// GenerationFlagKeys are the registry keys for commands that generate text.
var GenerationFlagKeys = []string{
	config.FlagGenerationProv,
	config.FlagGenerationBaseURL,
	config.FlagGenerationModel,
}

// ResolveConfig materializes the effective config for cmd: defaults, then
// engram.toml, then ENGRAM_ environment variables, then any changed flags
// bound through the registry. Call from PreRunE after flags are parsed.
func ResolveConfig(cmd *cobra.Command, registryKeys []string) (*config.Config, error) {
	configDir, _ := cmd.Flags().GetString("config")

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, fmt.Errorf("initializing config: %w", err)
	}

	config.BindRegisteredFlags(v, cmd, Flags, registryKeys)

	return config.FromViper(v), nil
}

// Runtime is an assembled engine together with the collaborators the host
// owns and must close.
type Runtime struct {
	Engine    *engine.Engine
	Store     vector.Store
	Publisher eventstream.Publisher
}

// NewRuntime builds the engine stack from cfg. Embedder and generator
// construction is deferred to first use, so commands that never touch a
// provider (status, reset) do not pay a connection for one.
func NewRuntime(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Runtime, error) {
	store, err := NewStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	publisher, err := newPublisher(cfg, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	eng, err := engine.New(engine.Config{
		Store:     store,
		Buffer:    memory.NewBuffer(cfg.Memory.MaxTurns),
		Publisher: publisher,
		NewEmbedder: func() (embeddings.Embedder, error) {
			return embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
				Provider:   cfg.Embedding.Provider,
				BaseURL:    cfg.Embedding.BaseURL,
				Model:      cfg.Embedding.Model,
				APIKey:     cfg.Embedding.APIKey,
				Dimensions: int(cfg.Embedding.Dimensions),
				CacheSize:  cfg.Embedding.CacheSize,
				Logger:     logger,
			})
		},
		NewGenerator: func() (llm.Generator, error) {
			return llmutils.NewGenerator(&llmutils.NewGeneratorOpts{
				Provider:  cfg.Generation.Provider,
				BaseURL:   cfg.Generation.BaseURL,
				Model:     cfg.Generation.Model,
				APIKey:    cfg.Generation.APIKey,
				MaxTokens: cfg.Generation.MaxTokens,
				Logger:    logger,
			})
		},
		Defaults: engine.AskOptions{
			MaxShortTermTokens: cfg.Memory.MaxShortTermTokens,
			MaxLongTermTokens:  cfg.Memory.MaxLongTermTokens,
			SystemPrompt:       cfg.Memory.SystemPrompt,
		},
		Logger: logger,
	})
	if err != nil {
		_ = publisher.Close()
		_ = store.Close()
		return nil, fmt.Errorf("creating engine: %w", err)
	}

	return &Runtime{
		Engine:    eng,
		Store:     store,
		Publisher: publisher,
	}, nil
}

// Close releases the runtime's collaborators in reverse dependency order.
func (r *Runtime) Close() error {
	var result *multierror.Error

	if err := r.Engine.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := r.Publisher.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := r.Store.Close(); err != nil {
		result = multierror.Append(result, err)
	}

	return result.ErrorOrNil()
}

// NewStore opens the configured long-term store. An unset sqlite path falls
// back to dotdir resolution, creating ~/.engram/engram.db on first run.
func NewStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (vector.Store, error) {
	path, err := StorePath(cfg)
	if err != nil {
		return nil, err
	}

	store, err := vectorutils.NewStore(ctx, &vectorutils.NewStoreOpts{
		Provider:   cfg.Storage.Driver,
		Path:       path,
		ConnString: cfg.Storage.DSN,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.Storage.Driver, err)
	}

	return store, nil
}

// StorePath resolves the sqlite database path for cfg. Non-sqlite drivers
// have no file path.
func StorePath(cfg *config.Config) (string, error) {
	if cfg.Storage.Driver != "sqlite" {
		return "", nil
	}
	if cfg.Storage.Path != "" {
		return cfg.Storage.Path, nil
	}

	path, err := dotdir.ResolveDBPath("")
	if err != nil {
		return "", fmt.Errorf("resolving database path: %w", err)
	}

	return path, nil
}

// newPublisher returns the kafka-backed delivery pool when events are
// enabled, the no-op publisher otherwise.
func newPublisher(cfg *config.Config, logger *zap.Logger) (eventstream.Publisher, error) {
	if !cfg.Events.Enabled {
		return nop.NewPublisher(), nil
	}

	kp, err := kafka.NewPublisher(kafka.Config{
		Brokers: cfg.Events.Brokers,
		Topic:   cfg.Events.Topic,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating kafka publisher: %w", err)
	}

	pool, err := eventstream.NewPool(eventstream.PoolConfig{
		Publisher: kp,
		Logger:    logger,
	})
	if err != nil {
		_ = kp.Close()
		return nil, fmt.Errorf("creating event pool: %w", err)
	}

	return pool, nil
}
