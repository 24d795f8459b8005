// Package searchcmder provides the search command for ranked retrieval over
// the long-term store.
package searchcmder

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/engramco/engram/cmd/engram/wiring"
	"github.com/engramco/engram/pkg/config"
	"github.com/engramco/engram/pkg/logger"
	"github.com/engramco/engram/pkg/rank"
)

var (
	rankStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	scoreStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	queryStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	contentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

type searchCommander struct {
	query string
	topK  int
	quiet bool

	storageDriver    string
	dbPath           string
	dsn              string
	embeddingProv    string
	embeddingBaseURL string
	embeddingModel   string
	embeddingDims    uint

	debug  bool
	cfg    *config.Config
	logger *zap.Logger
}

const searchLongDesc string = `Retrieve the best-ranked documents for a query.

Every stored document is scored against the query by cosine similarity with
a lexical boost for shared keywords, and the top matches are printed best
first with their scores.

Use --quiet to print only the matched contents, one per line, for piping
into other tools.

Examples:
  engram search "capital of France"
  engram search "error handling" --top-k 5
  engram search "deploy steps" --quiet`

const searchShortDesc string = "Retrieve ranked matches for a query"

var searchFlagKeys = append(wiring.StoreFlagKeys, wiring.EmbeddingFlagKeys...)

func NewSearchCmd() *cobra.Command {
	cmder := &searchCommander{}

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: searchShortDesc,
		Long:  searchLongDesc,
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := wiring.ResolveConfig(cmd, searchFlagKeys)
			if err != nil {
				return err
			}
			cmder.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.query = args[0]

			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}

			return cmder.run(cmd)
		},
	}

	cmd.Flags().IntVarP(&cmder.topK, "top-k", "k", rank.DefaultTopK, "Number of results to return")
	cmd.Flags().BoolVarP(&cmder.quiet, "quiet", "q", false, "Output only matched contents, one per line (for piping)")

	config.AddStringFlag(cmd, wiring.Flags, config.FlagStorageDriver, &cmder.storageDriver)
	config.AddStringFlag(cmd, wiring.Flags, config.FlagDBPath, &cmder.dbPath)
	config.AddStringFlag(cmd, wiring.Flags, config.FlagStorageDSN, &cmder.dsn)
	config.AddStringFlag(cmd, wiring.Flags, config.FlagEmbeddingProv, &cmder.embeddingProv)
	config.AddStringFlag(cmd, wiring.Flags, config.FlagEmbeddingBaseURL, &cmder.embeddingBaseURL)
	config.AddStringFlag(cmd, wiring.Flags, config.FlagEmbeddingModel, &cmder.embeddingModel)
	config.AddUintFlag(cmd, wiring.Flags, config.FlagEmbeddingDims, &cmder.embeddingDims)

	return cmd
}

func (c *searchCommander) run(cmd *cobra.Command) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	rt, err := wiring.NewRuntime(cmd.Context(), c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	scored, err := rt.Engine.RetrieveScored(cmd.Context(), c.query, c.topK)
	if err != nil {
		return err
	}

	if len(scored) == 0 {
		if !c.quiet {
			fmt.Println("No results found.")
		}
		return nil
	}

	if c.quiet {
		for _, s := range scored {
			fmt.Println(s.Content)
		}
		return nil
	}

	fmt.Printf("\n%s %s\n\n",
		headerStyle.Render("Results for:"),
		queryStyle.Render(fmt.Sprintf("%q", c.query)),
	)

	for i, s := range scored {
		printResult(i+1, s)
	}

	return nil
}

func printResult(position int, s rank.Scored) {
	content := strings.ReplaceAll(s.Content, "\n", " ")
	if len(content) > 80 {
		content = content[:77] + "..."
	}

	fmt.Printf("  %s  %s\n",
		rankStyle.Render(fmt.Sprintf("#%d", position)),
		scoreStyle.Render(fmt.Sprintf("score: %.4f (cosine %.4f, boost %.2f)", s.FinalScore, s.Cosine, s.LexicalBoost)),
	)
	fmt.Printf("  %s\n\n", contentStyle.Render(content))
}
