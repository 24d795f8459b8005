package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

var (
	rememberToolName    = "remember"
	rememberDescription = "Store a piece of knowledge in engram's long-term memory. The content is embedded and becomes retrievable by later recall and ask calls."
)

// RememberInput represents the input arguments for the remember tool.
type RememberInput struct {
	Content string `json:"content" jsonschema:"the knowledge text to store"`
}

// RememberOutput represents the structured output of the remember tool.
type RememberOutput struct {
	Status         string `json:"status"`
	Length         int    `json:"length"`
	TotalDocuments int    `json:"total_documents"`
}

// handleRemember stores content in long-term memory via MCP.
func (s *Server) handleRemember(ctx context.Context, _ *mcp.CallToolRequest, input RememberInput) (*mcp.CallToolResult, RememberOutput, error) {
	result, err := s.config.Engine.AddDocument(ctx, input.Content)
	if err != nil {
		s.config.Logger.Warn("MCP remember rejected", zap.Error(err))
		return errorResult(fmt.Sprintf("Failed to store content: %v", err)), RememberOutput{}, nil
	}

	output := RememberOutput{
		Status:         result.Status,
		Length:         result.Length,
		TotalDocuments: result.TotalDocuments,
	}

	jsonBytes, err := json.Marshal(output)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to serialize result: %v", err)), RememberOutput{}, nil
	}

	return textResult(jsonBytes), output, nil
}
