package api

import (
	"fmt"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apimcp "github.com/engramco/engram/api/mcp"
	"github.com/engramco/engram/pkg/engine"
)

// Server is the API server for managing and querying the engram system
type Server struct {
	config Config
	engine *engine.Engine
	logger *zap.Logger
	app    *fiber.App
}

// NewServer creates a new API server.
// The engine is injected to allow sharing with other frontends; the MCP
// server mounted under /mcp operates on the same instance.
func NewServer(config Config, eng *engine.Engine, logger *zap.Logger) (*Server, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		engine: eng,
		logger: logger,
		app:    app,
	}

	app.Get("/ping", s.handlePing)
	app.Post("/v1/documents", s.handleAddDocument)
	app.Delete("/v1/documents", s.handleClearStore)
	app.Get("/v1/search", s.handleSearch)
	app.Get("/v1/stats", s.handleStats)
	app.Post("/v1/ask", s.handleAsk)
	app.Get("/v1/memory", s.handleExportMemory)
	app.Delete("/v1/memory", s.handleResetMemory)

	if config.EnableMCP {
		mcpServer, err := apimcp.NewServer(apimcp.Config{
			Engine: eng,
			Logger: logger,
		})
		if err != nil {
			return nil, fmt.Errorf("creating MCP server: %w", err)
		}
		app.All("/mcp", adaptor.HTTPHandler(mcpServer.Handler()))
	}

	return s, nil
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
		zap.Bool("mcp", s.config.EnableMCP),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
