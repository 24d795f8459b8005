// Package resetcmder provides the reset command for clearing memory.
package resetcmder

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/engramco/engram/cmd/engram/wiring"
	"github.com/engramco/engram/pkg/cliui"
	"github.com/engramco/engram/pkg/config"
	"github.com/engramco/engram/pkg/logger"
)

type resetCommander struct {
	storeOnly bool

	storageDriver string
	dbPath        string
	dsn           string

	debug  bool
	cfg    *config.Config
	logger *zap.Logger
}

const resetLongDesc string = `Clear engram memory.

Removes every document from the long-term store. Without --store-only the
short-term buffer is cleared too, though for a one-shot CLI process that
buffer is empty by construction; the flag matters when this command is
wired into a longer-lived host.

Examples:
  engram reset
  engram reset --store-only
  engram reset --db ./engram.db`

const resetShortDesc string = "Clear memory"

func NewResetCmd() *cobra.Command {
	cmder := &resetCommander{}

	cmd := &cobra.Command{
		Use:   "reset",
		Short: resetShortDesc,
		Long:  resetLongDesc,
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

	cmd.Flags().BoolVar(&cmder.storeOnly, "store-only", false, "Clear only the long-term store")

	config.AddStringFlag(cmd, wiring.Flags, config.FlagStorageDriver, &cmder.storageDriver)
	config.AddStringFlag(cmd, wiring.Flags, config.FlagDBPath, &cmder.dbPath)
	config.AddStringFlag(cmd, wiring.Flags, config.FlagStorageDSN, &cmder.dsn)

	return cmd
}

func (c *resetCommander) run(cmd *cobra.Command) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	rt, err := wiring.NewRuntime(cmd.Context(), c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	if c.storeOnly {
		if err := rt.Engine.ClearStore(cmd.Context()); err != nil {
			return err
		}
		fmt.Printf("\n  %s Cleared the long-term store\n\n", cliui.SuccessMark)
		return nil
	}

	if err := rt.Engine.ResetAllMemory(cmd.Context()); err != nil {
		return err
	}

	fmt.Printf("\n  %s Reset all memory\n\n", cliui.SuccessMark)
	return nil
}
