package engine

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/engramco/engram/pkg/memory"
)

// Mode selects which memory tiers an ask reads and whether the exchange is
// written back into short-term memory.
type Mode string

const (
	// ModeBoth reads the short-term render and the best long-term match,
	// and appends the exchange to short-term memory.
	ModeBoth Mode = "both"

	// ModeShortTermOnly reads only the short-term render and appends the
	// exchange to short-term memory.
	ModeShortTermOnly Mode = "short-term-only"

	// ModeLongTermOnly reads only the best long-term match and never
	// writes short-term memory, so knowledge lookups cannot pollute the
	// conversational history.
	ModeLongTermOnly Mode = "long-term-only"
)

// ParseMode validates a wire-format mode string. The empty string selects
// ModeBoth.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return ModeBoth, nil
	case ModeBoth, ModeShortTermOnly, ModeLongTermOnly:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown mode %q (available: %s, %s, %s)",
			s, ModeBoth, ModeShortTermOnly, ModeLongTermOnly)
	}
}

// Ask option defaults.
const (
	DefaultMaxShortTermTokens = 1000
	DefaultMaxLongTermTokens  = 300

	// DefaultSystemPrompt frames short-term-bearing prompts when the
	// caller does not supply one.
	DefaultSystemPrompt = "You are a helpful assistant. Answer using the conversation context when it is relevant."
)

// AskOptions are the per-call prompt budgets. Zero fields take the package
// defaults (or the engine-level overrides configured at construction).
type AskOptions struct {
	// MaxShortTermTokens caps the rendered conversation block, in
	// estimated tokens.
	MaxShortTermTokens int `json:"max_short_term_tokens"`

	// MaxLongTermTokens caps the retrieved document before it enters the
	// prompt. The cap is applied as a character count.
	MaxLongTermTokens int `json:"max_long_term_tokens"`

	// SystemPrompt frames short-term-bearing prompts.
	SystemPrompt string `json:"system_prompt"`
}

func (o AskOptions) withDefaults() AskOptions {
	if o.MaxShortTermTokens <= 0 {
		o.MaxShortTermTokens = DefaultMaxShortTermTokens
	}
	if o.MaxLongTermTokens <= 0 {
		o.MaxLongTermTokens = DefaultMaxLongTermTokens
	}
	if o.SystemPrompt == "" {
		o.SystemPrompt = DefaultSystemPrompt
	}
	return o
}

// or fills zero fields from the engine-level defaults.
func (o AskOptions) or(defaults AskOptions) AskOptions {
	if o.MaxShortTermTokens <= 0 {
		o.MaxShortTermTokens = defaults.MaxShortTermTokens
	}
	if o.MaxLongTermTokens <= 0 {
		o.MaxLongTermTokens = defaults.MaxLongTermTokens
	}
	if o.SystemPrompt == "" {
		o.SystemPrompt = defaults.SystemPrompt
	}
	return o
}

// AskWithMemory answers the question with both memory tiers: the
// token-budgeted short-term render plus the best long-term match. The
// completed exchange is appended to short-term memory.
func (e *Engine) AskWithMemory(ctx context.Context, question string, opts AskOptions) (string, error) {
	return e.Ask(ctx, question, ModeBoth, opts)
}

// AskWithShortTermOnly answers the question from recent conversation alone.
// The completed exchange is appended to short-term memory.
func (e *Engine) AskWithShortTermOnly(ctx context.Context, question string, opts AskOptions) (string, error) {
	return e.Ask(ctx, question, ModeShortTermOnly, opts)
}

// AskWithLongTermOnly answers the question from stored knowledge alone,
// leaving short-term memory untouched.
func (e *Engine) AskWithLongTermOnly(ctx context.Context, question string, opts AskOptions) (string, error) {
	return e.Ask(ctx, question, ModeLongTermOnly, opts)
}

// Ask assembles the prompt for the given mode, generates a completion, and
// applies the mode's write-back rule. Budgets are enforced before the prompt
// is built, so the generator never sees over-budget context. Short-term
// memory is written only after the generator succeeds; a generation fault
// leaves both tiers exactly as they were.
func (e *Engine) Ask(ctx context.Context, question string, mode Mode, opts AskOptions) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("question is required")
	}
	if _, err := ParseMode(string(mode)); err != nil {
		return "", err
	}
	if mode == "" {
		mode = ModeBoth
	}

	opts = opts.or(e.defaults)

	prompt, err := e.assemblePrompt(ctx, question, mode, opts)
	if err != nil {
		return "", err
	}

	generator, err := e.generatorInstance()
	if err != nil {
		return "", err
	}

	e.logger.Debug("asking",
		zap.String("mode", string(mode)),
		zap.Int("prompt_length", len(prompt)),
	)

	answer, err := generator.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generating answer: %w", err)
	}

	if mode != ModeLongTermOnly {
		e.buffer.Append(memory.RoleUser, question)
		e.buffer.Append(memory.RoleAssistant, answer)
	}

	return answer, nil
}

// assemblePrompt builds the mode's prompt from the budgeted memory tiers.
func (e *Engine) assemblePrompt(ctx context.Context, question string, mode Mode, opts AskOptions) (string, error) {
	var doc string
	if mode == ModeBoth || mode == ModeLongTermOnly {
		best, err := e.bestMatch(ctx, question)
		if err != nil {
			return "", err
		}
		// Truncate before the document enters the prompt so the result
		// can never exceed the long-term budget.
		doc = truncate(best, opts.MaxLongTermTokens)
	}

	switch mode {
	case ModeLongTermOnly:
		return knowledgeBlock(doc, question), nil

	case ModeShortTermOnly:
		prompt := opts.SystemPrompt +
			conversationSection(e.buffer.Render(opts.MaxShortTermTokens)) +
			"\n\nQuestion: " + question
		return strings.TrimSpace(prompt), nil

	default: // ModeBoth
		prompt := opts.SystemPrompt +
			conversationSection(e.buffer.Render(opts.MaxShortTermTokens)) +
			"\n\n" + knowledgeBlock(doc, question)
		return strings.TrimSpace(prompt), nil
	}
}

// bestMatch retrieves the single best-ranked document for the question.
// An empty store is a distinguishable ErrEmptyKnowledge outcome.
func (e *Engine) bestMatch(ctx context.Context, question string) (string, error) {
	scored, err := e.retrieve(ctx, question, 1)
	if err != nil {
		return "", err
	}
	if len(scored) == 0 {
		return "", ErrEmptyKnowledge
	}

	return scored[0].Content, nil
}

// knowledgeBlock formats the retrieved document and question for
// long-term-bearing modes.
func knowledgeBlock(doc, question string) string {
	return "Context: " + doc + "\n\nQuestion: " + question + "\n\nAnswer:"
}

// conversationSection wraps a non-empty short-term render in its header.
// An empty render contributes nothing, so prompts never carry a dangling
// "Recent conversation:" label.
func conversationSection(block string) string {
	if block == "" {
		return ""
	}
	return "\nRecent conversation:\n" + block
}

// truncate caps s at max bytes. No ellipsis: the cap is a hard prompt
// budget, not a display nicety.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
