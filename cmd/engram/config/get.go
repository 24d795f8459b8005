package configcmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/engramco/engram/pkg/cliui"
	"github.com/engramco/engram/pkg/config"
)

const getLongDesc string = `Get a configuration value from engram.toml.

Reads the value for the given key from the resolved config file. Keys that
are not set in the file report <not set>; commands fall back to built-in
defaults for those.

Examples:
  engram config get storage.driver
  engram config get embedding.model
  engram config get memory.max_turns`

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long:  getLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE:  runGet,
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) != 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
		},
	}

	return cmd
}

func runGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s", key, strings.Join(config.ValidConfigKeys(), ", "))
	}

	configDir, _ := cmd.Flags().GetString("config")
	configer, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if target := configer.GetTarget(); target != "" {
		fmt.Printf("%s %s\n", cliui.KeyStyle.Render("Config file:"), cliui.DimStyle.Render(target))
	} else {
		fmt.Printf("%s %s\n", cliui.KeyStyle.Render("Config file:"), cliui.DimStyle.Render("none (using defaults)"))
	}

	value, err := configer.GetConfigValue(key)
	if err != nil {
		return err
	}

	if value == "" {
		fmt.Printf("%s %s\n", cliui.KeyStyle.Render(key+":"), cliui.DimStyle.Render("<not set>"))
		return nil
	}

	fmt.Printf("%s %s\n", cliui.KeyStyle.Render(key+":"), cliui.ValueStyle.Render(value))

	return nil
}
