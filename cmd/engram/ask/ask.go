// Package askcmder provides the ask command for one-shot question answering
// against memory.
package askcmder

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/engramco/engram/cmd/engram/wiring"
	"github.com/engramco/engram/pkg/cliui"
	"github.com/engramco/engram/pkg/config"
	"github.com/engramco/engram/pkg/engine"
	"github.com/engramco/engram/pkg/logger"
)

type askCommander struct {
	question string
	mode     string
	raw      bool

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

const askLongDesc string = `Answer a question from memory.

Retrieves the most relevant stored knowledge, assembles a budget-bounded
prompt, and generates an answer with the configured generation provider.
The answer is rendered as markdown unless --raw is set.

The mode selects which memory tiers feed the prompt:
  both              conversation history and stored knowledge (default)
  short-term-only   conversation history only
  long-term-only    stored knowledge only, without touching the conversation

Examples:
  engram ask "What is the capital of France?"
  engram ask "Summarize what you know about deploys" --mode long-term-only
  engram ask "What did I just say?" --mode short-term-only
  engram ask "Remind me of the runbook" --long-term-budget 600`

const askShortDesc string = "Answer a question from memory"

var askFlagKeys = func() []string {
	keys := append([]string{}, wiring.StoreFlagKeys...)
	keys = append(keys, wiring.EmbeddingFlagKeys...)
	keys = append(keys, wiring.GenerationFlagKeys...)
	return append(keys,
		config.FlagSystemPrompt,
		config.FlagShortTermBudget,
		config.FlagLongTermBudget,
	)
}()

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := wiring.ResolveConfig(cmd, askFlagKeys)
			if err != nil {
				return err
			}
			cmder.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.question = args[0]

			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}

			return cmder.run(cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.mode, "mode", "m", string(engine.ModeBoth), "Memory mode (both, short-term-only, long-term-only)")
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print the raw answer without markdown rendering")

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

func (c *askCommander) run(cmd *cobra.Command) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	mode, err := engine.ParseMode(c.mode)
	if err != nil {
		return err
	}

	rt, err := wiring.NewRuntime(cmd.Context(), c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	// Zero options defer to the engine defaults, which carry the resolved
	// config's budgets and system prompt.
	answer, err := rt.Engine.Ask(cmd.Context(), c.question, mode, engine.AskOptions{})
	if err != nil {
		return err
	}

	if c.raw {
		fmt.Println(answer)
		return nil
	}

	rendered, err := cliui.RenderMarkdown(answer)
	if err != nil {
		fmt.Println(answer)
		return nil
	}

	fmt.Print(rendered)
	return nil
}
