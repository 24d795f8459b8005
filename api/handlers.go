package api

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/engramco/engram/pkg/engine"
	"github.com/engramco/engram/pkg/llm"
	"github.com/engramco/engram/pkg/vector"
)

// ErrorResponse is the structured error body for non-2xx responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse reports a mutation outcome.
type StatusResponse struct {
	Status string `json:"status"`
}

// AddDocumentRequest is the body of POST /v1/documents.
type AddDocumentRequest struct {
	Content string `json:"content"`
}

// SearchResponse is the body of GET /v1/search responses.
type SearchResponse struct {
	Query   string   `json:"query"`
	Results []string `json:"results"`
	Count   int      `json:"count"`
}

// AskRequest is the body of POST /v1/ask. Zero budget fields take the
// engine defaults.
type AskRequest struct {
	Question           string `json:"question"`
	Mode               string `json:"mode"`
	MaxShortTermTokens int    `json:"max_short_term_tokens"`
	MaxLongTermTokens  int    `json:"max_long_term_tokens"`
	SystemPrompt       string `json:"system_prompt"`
}

// AskResponse is the body of POST /v1/ask responses.
type AskResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Mode     string `json:"mode"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleAddDocument stores a document in the long-term store.
func (s *Server) handleAddDocument(c *fiber.Ctx) error {
	var req AddDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	result, err := s.engine.AddDocument(c.Context(), req.Content)
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(result)
}

// handleClearStore removes every document from the long-term store.
func (s *Server) handleClearStore(c *fiber.Ctx) error {
	if err := s.engine.ClearStore(c.Context()); err != nil {
		return s.fail(c, err)
	}

	return c.JSON(StatusResponse{Status: "success"})
}

// handleSearch handles GET /v1/search requests.
// Query parameters:
//   - query (required): the search query text
//   - top_k (optional, default 3): number of results to return
func (s *Server) handleSearch(c *fiber.Ctx) error {
	query := c.Query("query")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "query parameter is required",
		})
	}

	topK := 0
	if topKStr := c.Query("top_k"); topKStr != "" {
		parsed, err := strconv.Atoi(topKStr)
		if err != nil || parsed <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Error: "top_k must be a positive integer",
			})
		}
		topK = parsed
	}

	results, err := s.engine.RetrieveTopK(c.Context(), query, topK)
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(SearchResponse{
		Query:   query,
		Results: results,
		Count:   len(results),
	})
}

// handleStats returns long-term store statistics.
func (s *Server) handleStats(c *fiber.Ctx) error {
	stats, err := s.engine.Stats(c.Context())
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(stats)
}

// handleAsk answers a question from memory.
func (s *Server) handleAsk(c *fiber.Ctx) error {
	var req AskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	if strings.TrimSpace(req.Question) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "question is required"})
	}

	mode, err := engine.ParseMode(req.Mode)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	answer, err := s.engine.Ask(c.Context(), req.Question, mode, engine.AskOptions{
		MaxShortTermTokens: req.MaxShortTermTokens,
		MaxLongTermTokens:  req.MaxLongTermTokens,
		SystemPrompt:       req.SystemPrompt,
	})
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(AskResponse{
		Question: req.Question,
		Answer:   answer,
		Mode:     string(mode),
	})
}

// handleExportMemory returns a read-only snapshot of both memory tiers.
func (s *Server) handleExportMemory(c *fiber.Ctx) error {
	export, err := s.engine.ExportMemory(c.Context())
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(export)
}

// handleResetMemory clears the short-term buffer and the long-term store.
func (s *Server) handleResetMemory(c *fiber.Ctx) error {
	if err := s.engine.ResetAllMemory(c.Context()); err != nil {
		return s.fail(c, err)
	}

	return c.JSON(StatusResponse{Status: "success"})
}

// fail maps an engine error to its HTTP status with a structured body.
// Validation rejections are the caller's fault (400), an empty knowledge
// base is a distinguishable miss (404), and provider unavailability is
// retryable (503); everything else is a 500.
func (s *Server) fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError

	switch {
	case errors.Is(err, vector.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, engine.ErrEmptyKnowledge):
		status = fiber.StatusNotFound
	case errors.Is(err, vector.ErrEmbedding), errors.Is(err, llm.ErrProvider):
		status = fiber.StatusServiceUnavailable
	}

	if status == fiber.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}

	return c.Status(status).JSON(ErrorResponse{Error: err.Error()})
}
