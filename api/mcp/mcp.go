// Package mcp provides an MCP (Model Context Protocol) server for the engram system.
package mcp

import (
	"errors"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/engramco/engram/pkg/engine"
	"github.com/engramco/engram/pkg/utils"
)

type Config struct {
	// Engine is the shared retrieval and context-assembly core the tools
	// operate on.
	Engine *engine.Engine

	// Noop for empty MCP server
	Noop bool

	// Logger is the configured zap logger
	Logger *zap.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the memory tools.
func NewServer(c Config) (*Server, error) {
	s := &Server{
		config: c,
	}

	// Create the MCP server
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "engram-mcp",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	// Register no tools when the noop flag is set (i.e., MCP capabilities
	// are disabled); the handler still answers protocol traffic.
	if !c.Noop {
		if c.Engine == nil {
			return nil, errors.New("engine is required")
		}
		if c.Logger == nil {
			return nil, errors.New("logger is required")
		}

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        rememberToolName,
			Description: rememberDescription,
		}, s.handleRemember)

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        recallToolName,
			Description: recallDescription,
		}, s.handleRecall)

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        askToolName,
			Description: askDescription,
		}, s.handleAsk)
	}

	s.mcpServer = mcpServer

	// Create a streamable HTTP net/http handler for stateless operations
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// errorResult builds a tool-level failure result.
func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
	}
}

// textResult wraps serialized output in a TextContent block.
// Per MCP spec: tools returning structured content should also return
// serialized JSON in a TextContent block for backwards compatibility.
func textResult(jsonBytes []byte) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}
}
