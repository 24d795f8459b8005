// Package api provides the HTTP API server for the engram memory engine.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8080")
	ListenAddr string

	// EnableMCP mounts the MCP server under /mcp when true.
	EnableMCP bool
}
