// Package servecmder provides the serve command for running the engram API
// server.
package servecmder

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/engramco/engram/api"
	"github.com/engramco/engram/cmd/engram/wiring"
	"github.com/engramco/engram/pkg/config"
	"github.com/engramco/engram/pkg/logger"
)

type serveCommander struct {
	listen            string
	enableMCP         bool
	storageDriver     string
	dbPath            string
	dsn               string
	embeddingProv     string
	embeddingBaseURL  string
	embeddingModel    string
	embeddingDims     uint
	generationProv    string
	generationBaseURL string
	generationModel   string
	systemPrompt      string
	shortTermBudget   int
	longTermBudget    int

	debug  bool
	cfg    *config.Config
	logger *zap.Logger
}

const serveLongDesc string = `Run the engram API server.

Serves the REST API for storing, searching, and asking against memory, and
mounts the MCP server under /mcp so agents can use the remember, recall,
and ask tools.

Configuration comes from flags, ENGRAM_ environment variables, and
engram.toml, in that order of precedence.

Examples:
  engram serve
  engram serve --listen :9090
  engram serve --storage-driver inmemory
  engram serve --db ./engram.db --mcp=false`

const serveShortDesc string = "Run the engram API server"

// serveFlagKeys is every registry flag serve carries: the full stack is
// configurable from the command line.
var serveFlagKeys = []string{
	config.FlagListen,
	config.FlagEnableMCP,
	config.FlagStorageDriver,
	config.FlagDBPath,
	config.FlagStorageDSN,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingBaseURL,
	config.FlagEmbeddingModel,
	config.FlagEmbeddingDims,
	config.FlagGenerationProv,
	config.FlagGenerationBaseURL,
	config.FlagGenerationModel,
	config.FlagSystemPrompt,
	config.FlagShortTermBudget,
	config.FlagLongTermBudget,
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := wiring.ResolveConfig(cmd, serveFlagKeys)
			if err != nil {
				return err
			}
			cmder.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, wiring.Flags, config.FlagListen, &cmder.listen)
	config.AddBoolFlag(cmd, wiring.Flags, config.FlagEnableMCP, &cmder.enableMCP)
	config.AddStringFlag(cmd, wiring.Flags, config.FlagStorageDriver, &cmder.storageDriver)
	config.AddStringFlag(cmd, wiring.Flags, config.FlagDBPath, &cmder.dbPath)
	config.AddStringFlag(cmd, wiring.Flags, config.FlagStorageDSN, &cmder.dsn)
	config.AddStringFlag(cmd, wiring.Flags, config.FlagEmbeddingProv, &cmder.embeddingProv)
	config.AddStringFlag(cmd, wiring.Flags, config.FlagEmbeddingBaseURL, &cmder.embeddingBaseURL)
	config.AddStringFlag(cmd, wiring.Flags, config.FlagEmbeddingModel, &cmder.embeddingModel)
	config.AddUintFlag(cmd, wiring.Flags, config.FlagEmbeddingDims, &cmder.embeddingDims)
	config.AddStringFlag(cmd, wiring.Flags, config.FlagGenerationProv, &cmder.generationProv)
	config.AddStringFlag(cmd, wiring.Flags, config.FlagGenerationBaseURL, &cmder.generationBaseURL)
	config.AddStringFlag(cmd, wiring.Flags, config.FlagGenerationModel, &cmder.generationModel)
	config.AddStringFlag(cmd, wiring.Flags, config.FlagSystemPrompt, &cmder.systemPrompt)
	config.AddIntFlag(cmd, wiring.Flags, config.FlagShortTermBudget, &cmder.shortTermBudget)
	config.AddIntFlag(cmd, wiring.Flags, config.FlagLongTermBudget, &cmder.longTermBudget)

	return cmd
}

func (c *serveCommander) run(cmd *cobra.Command) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	rt, err := wiring.NewRuntime(cmd.Context(), c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	server, err := api.NewServer(api.Config{
		ListenAddr: c.cfg.API.ListenAddr,
		EnableMCP:  c.cfg.API.EnableMCP,
	}, rt.Engine, c.logger)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	c.logger.Info("starting engram",
		zap.String("listen", c.cfg.API.ListenAddr),
		zap.Bool("mcp", c.cfg.API.EnableMCP),
		zap.String("storage", c.cfg.Storage.Driver),
		zap.String("embedding", c.cfg.Embedding.Provider),
		zap.String("generation", c.cfg.Generation.Provider),
	)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return server.Shutdown()
	}
}
