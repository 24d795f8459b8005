package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/engramco/engram/pkg/engine"
)

var (
	askToolName    = "ask"
	askDescription = "Ask a question answered from engram's memory. Mode selects the tiers consulted: both (default), short-term-only, or long-term-only. long-term-only never writes conversation history."
)

// AskInput represents the input arguments for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer"`
	Mode     string `json:"mode,omitempty" jsonschema:"memory tiers to read: both, short-term-only, or long-term-only (default: both)"`
}

// AskOutput represents the structured output of the ask tool.
type AskOutput struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Mode     string `json:"mode"`
}

// handleAsk answers a question from memory via MCP.
func (s *Server) handleAsk(ctx context.Context, _ *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, AskOutput, error) {
	if strings.TrimSpace(input.Question) == "" {
		return errorResult("question is required"), AskOutput{}, nil
	}

	mode, err := engine.ParseMode(input.Mode)
	if err != nil {
		return errorResult(err.Error()), AskOutput{}, nil
	}

	s.config.Logger.Debug("MCP ask request",
		zap.String("mode", string(mode)),
	)

	answer, err := s.config.Engine.Ask(ctx, input.Question, mode, engine.AskOptions{})
	if err != nil {
		s.config.Logger.Error("MCP ask failed", zap.Error(err))
		return errorResult(fmt.Sprintf("Ask failed: %v", err)), AskOutput{}, nil
	}

	output := AskOutput{
		Question: input.Question,
		Answer:   answer,
		Mode:     string(mode),
	}

	jsonBytes, err := json.Marshal(output)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to serialize result: %v", err)), AskOutput{}, nil
	}

	return textResult(jsonBytes), output, nil
}
