// Package memory provides the short-term conversation memory for the engram
// engine.
//
// Memory is a bounded, ordered buffer of conversation turns. The buffer is
// capped by turn count and rendered under a token budget: rendering walks
// from the most recent turn backwards and keeps whole turns until the budget
// is spent, so prompts always prefer recent context and never exceed their
// budget.
//
// Token costs are estimated at four bytes per token. The estimate is crude
// on purpose; it bounds prompt size without a tokenizer dependency.
package memory

import (
	"strings"
	"sync"
)

// Turn roles. Stored as-is; Render upper-cases them.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// DefaultMaxTurns caps the buffer when no explicit ceiling is configured.
const DefaultMaxTurns = 50

// bytesPerToken is the byte cost assumed per token when budgeting.
const bytesPerToken = 4

// Turn is a single entry in the conversation buffer.
type Turn struct {
	// Role identifies the speaker: user, assistant, or system.
	Role string `json:"role"`

	// Content is the turn's text.
	Content string `json:"content"`
}

// Buffer is a bounded, ordered short-term conversation memory. Appending
// past the ceiling evicts the oldest turns first. All methods are safe for
// concurrent use.
type Buffer struct {
	mu sync.RWMutex

	turns    []Turn
	maxTurns int
}

// NewBuffer creates a buffer holding at most maxTurns turns.
// A ceiling of zero or less falls back to DefaultMaxTurns.
func NewBuffer(maxTurns int) *Buffer {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}

	return &Buffer{maxTurns: maxTurns}
}

// Append records a turn at the end of the buffer, evicting oldest turns once
// the ceiling is exceeded.
func (b *Buffer) Append(role, content string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.turns = append(b.turns, Turn{Role: role, Content: content})
	if len(b.turns) > b.maxTurns {
		overflow := len(b.turns) - b.maxTurns
		b.turns = append(b.turns[:0], b.turns[overflow:]...)
	}
}

// Render produces the chronological conversation block that fits within
// budget tokens. Turns are selected newest first; the first turn that would
// push the running total past the budget stops selection, so the block never
// contains partial turns and always favors recent context. Returns the empty
// string when nothing fits.
func (b *Buffer) Render(budget int) string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if budget <= 0 || len(b.turns) == 0 {
		return ""
	}

	lines := make([]string, 0, len(b.turns))
	total := 0
	for i := len(b.turns) - 1; i >= 0; i-- {
		line := formatTurn(b.turns[i])
		cost := EstimateTokens(line)
		if total+cost > budget {
			break
		}
		total += cost
		lines = append(lines, line)
	}

	// Lines were collected newest first; reverse into chronological order.
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}

	return strings.Join(lines, "\n")
}

// TokenCount reports the estimated cost of rendering every buffered turn,
// ignoring any budget.
func (b *Buffer) TokenCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	total := 0
	for _, t := range b.turns {
		total += EstimateTokens(formatTurn(t))
	}

	return total
}

// Snapshot returns a copy of the buffered turns in chronological order.
func (b *Buffer) Snapshot() []Turn {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Turn, len(b.turns))
	copy(out, b.turns)

	return out
}

// Len reports the number of buffered turns.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.turns)
}

// Clear drops all buffered turns.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.turns = nil
}

// EstimateTokens estimates the token cost of s at four bytes per token,
// rounding up.
func EstimateTokens(s string) int {
	return (len(s) + bytesPerToken - 1) / bytesPerToken
}

func formatTurn(t Turn) string {
	return strings.ToUpper(t.Role) + ": " + t.Content
}
