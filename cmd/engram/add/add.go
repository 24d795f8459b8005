// Package addcmder provides the add command for storing knowledge in the
// long-term store.
package addcmder

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/engramco/engram/cmd/engram/wiring"
	"github.com/engramco/engram/pkg/cliui"
	"github.com/engramco/engram/pkg/config"
	"github.com/engramco/engram/pkg/logger"
	"github.com/engramco/engram/pkg/utils"
	"github.com/engramco/engram/pkg/vector"
)

type addCommander struct {
	filePath string

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

const addLongDesc string = `Store knowledge in the long-term store.

Text arguments are joined into a single document. With --file, every
non-blank line of the file becomes its own document, so a notes file can be
ingested in one pass.

Documents are embedded with the configured embedding provider before they
are stored, so the provider must be reachable.

Examples:
  engram add "The capital of France is Paris"
  engram add --file ./notes.txt
  engram add "ephemeral fact" --storage-driver inmemory`

const addShortDesc string = "Store knowledge in the long-term store"

var addFlagKeys = append(wiring.StoreFlagKeys, wiring.EmbeddingFlagKeys...)

func NewAddCmd() *cobra.Command {
	cmder := &addCommander{}

	cmd := &cobra.Command{
		Use:   "add [text...]",
		Short: addShortDesc,
		Long:  addLongDesc,
		Args:  cobra.ArbitraryArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := wiring.ResolveConfig(cmd, addFlagKeys)
			if err != nil {
				return err
			}
			cmder.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			return cmder.run(cmd, args)
		},
	}

	cmd.Flags().StringVarP(&cmder.filePath, "file", "f", "", "Read documents from a file, one per non-blank line")

	config.AddStringFlag(cmd, wiring.Flags, config.FlagStorageDriver, &cmder.storageDriver)
	config.AddStringFlag(cmd, wiring.Flags, config.FlagDBPath, &cmder.dbPath)
	config.AddStringFlag(cmd, wiring.Flags, config.FlagStorageDSN, &cmder.dsn)
	config.AddStringFlag(cmd, wiring.Flags, config.FlagEmbeddingProv, &cmder.embeddingProv)
	config.AddStringFlag(cmd, wiring.Flags, config.FlagEmbeddingBaseURL, &cmder.embeddingBaseURL)
	config.AddStringFlag(cmd, wiring.Flags, config.FlagEmbeddingModel, &cmder.embeddingModel)
	config.AddUintFlag(cmd, wiring.Flags, config.FlagEmbeddingDims, &cmder.embeddingDims)

	return cmd
}

func (c *addCommander) run(cmd *cobra.Command, args []string) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	contents, err := c.collect(args)
	if err != nil {
		return err
	}
	if len(contents) == 0 {
		return errors.New("nothing to add: pass text arguments or --file")
	}

	rt, err := wiring.NewRuntime(cmd.Context(), c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	stored, rejected, total := 0, 0, 0
	for _, content := range contents {
		result, err := rt.Engine.AddDocument(cmd.Context(), content)
		if err != nil {
			if errors.Is(err, vector.ErrValidation) {
				rejected++
				fmt.Printf("  %s rejected: %s\n", cliui.FailMark, cliui.DimStyle.Render(utils.Truncate(content, 60)))
				continue
			}
			return err
		}
		stored++
		total = result.TotalDocuments
	}

	fmt.Printf("\n  %s Stored %s document(s)",
		cliui.SuccessMark,
		cliui.NameStyle.Render(strconv.Itoa(stored)),
	)
	if rejected > 0 {
		fmt.Printf(" %s", cliui.DimStyle.Render(fmt.Sprintf("(%d rejected)", rejected)))
	}
	fmt.Printf(" %s\n\n", cliui.DimStyle.Render(fmt.Sprintf("(%d in store)", total)))

	return nil
}

// collect gathers document contents from positional args or --file. Args
// form a single document; a file yields one document per non-blank line.
func (c *addCommander) collect(args []string) ([]string, error) {
	if c.filePath == "" {
		text := strings.TrimSpace(strings.Join(args, " "))
		if text == "" {
			return nil, nil
		}
		return []string{text}, nil
	}

	f, err := os.Open(c.filePath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", c.filePath, err)
	}
	defer f.Close()

	var contents []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		contents = append(contents, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", c.filePath, err)
	}

	return contents, nil
}
