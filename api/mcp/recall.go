package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/engramco/engram/pkg/rank"
)

var (
	recallToolName    = "recall"
	recallDescription = "Retrieve the most relevant knowledge from engram's long-term memory using semantic search with a lexical boost. Returns the best-matching stored contents with their scores."
)

// RecallInput represents the input arguments for the recall tool.
type RecallInput struct {
	Query string `json:"query" jsonschema:"the search query text"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"number of results to return (default: 3)"`
}

// RecallResult is a single recalled document.
type RecallResult struct {
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// RecallOutput represents the structured output of the recall tool.
type RecallOutput struct {
	Query   string         `json:"query"`
	Results []RecallResult `json:"results"`
	Count   int            `json:"count"`
}

// handleRecall processes a semantic search request via MCP.
func (s *Server) handleRecall(ctx context.Context, _ *mcp.CallToolRequest, input RecallInput) (*mcp.CallToolResult, RecallOutput, error) {
	if input.Query == "" {
		return errorResult("query is required"), RecallOutput{}, nil
	}

	s.config.Logger.Debug("MCP recall request",
		zap.String("query", input.Query),
		zap.Int("topK", input.TopK),
	)

	scored, err := s.config.Engine.RetrieveScored(ctx, input.Query, input.TopK)
	if err != nil {
		s.config.Logger.Error("MCP recall failed", zap.Error(err))
		return errorResult(fmt.Sprintf("Recall failed: %v", err)), RecallOutput{}, nil
	}

	output := RecallOutput{
		Query:   input.Query,
		Results: recallResults(scored),
		Count:   len(scored),
	}

	jsonBytes, err := json.Marshal(output)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to serialize results: %v", err)), RecallOutput{}, nil
	}

	return textResult(jsonBytes), output, nil
}

// recallResults flattens ranked documents into the wire shape.
func recallResults(scored []rank.Scored) []RecallResult {
	results := make([]RecallResult, len(scored))
	for i, s := range scored {
		results[i] = RecallResult{
			Content: s.Content,
			Score:   s.FinalScore,
		}
	}
	return results
}
