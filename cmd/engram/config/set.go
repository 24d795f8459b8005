package configcmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/engramco/engram/pkg/cliui"
	"github.com/engramco/engram/pkg/config"
)

const setLongDesc string = `Set a configuration value in engram.toml.

Writes the value for the given key to the resolved config file, creating the
.engram/ directory and the file if they do not exist yet. Numeric and boolean
keys validate the value before saving.

Examples:
  engram config set storage.driver postgres
  engram config set embedding.model nomic-embed-text
  engram config set memory.max_turns 80
  engram config set api.enable_mcp false`

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long:  setLongDesc,
		Args:  cobra.ExactArgs(2),
		RunE:  runSet,
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) != 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
		},
	}

	return cmd
}

func runSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s", key, strings.Join(config.ValidConfigKeys(), ", "))
	}

	configDir, _ := cmd.Flags().GetString("config")
	configer, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := configer.SetConfigValue(key, value); err != nil {
		return err
	}

	fmt.Printf("%s Set %s = %s\n",
		cliui.SuccessMark,
		cliui.KeyStyle.Render(key),
		cliui.ValueStyle.Render(value),
	)
	fmt.Printf("  %s\n", cliui.DimStyle.Render(configer.GetTarget()))

	return nil
}
