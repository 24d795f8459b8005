// Package statuscmder provides the status command for displaying the
// configured stack and the state of the long-term store.
package statuscmder

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/engramco/engram/cmd/engram/wiring"
	"github.com/engramco/engram/pkg/cliui"
	"github.com/engramco/engram/pkg/config"
	"github.com/engramco/engram/pkg/logger"
)

type statusCommander struct {
	storageDriver string
	dbPath        string
	dsn           string

	debug  bool
	cfg    *config.Config
	logger *zap.Logger
}

const statusLongDesc string = `Show the engram configuration and store state.

Displays the resolved config file, the configured providers, and the number
of documents held in the long-term store.

Examples:
  engram status
  engram status --db ./engram.db`

const statusShortDesc string = "Show store and configuration state"

func NewStatusCmd() *cobra.Command {
	cmder := &statusCommander{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: statusShortDesc,
		Long:  statusLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := wiring.ResolveConfig(cmd, wiring.StoreFlagKeys)
			if err != nil {
				return err
			}
			cmder.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, wiring.Flags, config.FlagStorageDriver, &cmder.storageDriver)
	config.AddStringFlag(cmd, wiring.Flags, config.FlagDBPath, &cmder.dbPath)
	config.AddStringFlag(cmd, wiring.Flags, config.FlagStorageDSN, &cmder.dsn)

	return cmd
}

func (c *statusCommander) run(cmd *cobra.Command) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	configDir, _ := cmd.Flags().GetString("config")
	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	fmt.Println()
	if target := cfger.GetTarget(); target != "" {
		fmt.Printf("  %s  %s\n", cliui.KeyStyle.Render("Config file:"), cliui.DimStyle.Render(target))
	} else {
		fmt.Printf("  %s  %s\n", cliui.KeyStyle.Render("Config file:"), cliui.DimStyle.Render("none (using defaults)"))
	}

	storage := c.cfg.Storage.Driver
	if path, err := wiring.StorePath(c.cfg); err == nil && path != "" {
		storage = fmt.Sprintf("%s %s", storage, cliui.DimStyle.Render(path))
	}
	fmt.Printf("  %s  %s\n", cliui.KeyStyle.Render("Storage:    "), cliui.ValueStyle.Render(storage))

	fmt.Printf("  %s  %s\n",
		cliui.KeyStyle.Render("Embedding:  "),
		cliui.ValueStyle.Render(fmt.Sprintf("%s %s (%d dims)",
			c.cfg.Embedding.Provider, c.cfg.Embedding.Model, c.cfg.Embedding.Dimensions)),
	)
	fmt.Printf("  %s  %s\n",
		cliui.KeyStyle.Render("Generation: "),
		cliui.ValueStyle.Render(fmt.Sprintf("%s %s", c.cfg.Generation.Provider, c.cfg.Generation.Model)),
	)

	store, err := wiring.NewStore(cmd.Context(), c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	count, err := store.Count(cmd.Context())
	if err != nil {
		return fmt.Errorf("counting documents: %w", err)
	}

	fmt.Printf("  %s  %s\n\n", cliui.KeyStyle.Render("Documents:  "), cliui.NameStyle.Render(strconv.Itoa(count)))

	return nil
}
