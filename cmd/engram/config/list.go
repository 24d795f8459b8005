package configcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/engramco/engram/pkg/cliui"
	"github.com/engramco/engram/pkg/config"
)

const listLongDesc string = `List all configuration values.

Shows the effective value for every supported key, merging engram.toml with
built-in defaults. Keys without a value show <not set>.

Examples:
  engram config list`

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long:  listLongDesc,
		Args:  cobra.NoArgs,
		RunE:  runList,
	}

	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
	configDir, _ := cmd.Flags().GetString("config")
	configer, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if target := configer.GetTarget(); target != "" {
		fmt.Printf("%s %s\n\n", cliui.KeyStyle.Render("Config file:"), cliui.DimStyle.Render(target))
	} else {
		fmt.Printf("%s %s\n\n", cliui.KeyStyle.Render("Config file:"), cliui.DimStyle.Render("none (using defaults)"))
	}

	keys := config.ValidConfigKeys()

	width := 0
	for _, key := range keys {
		if len(key) > width {
			width = len(key)
		}
	}

	for _, key := range keys {
		value, err := configer.GetConfigValue(key)
		if err != nil {
			return err
		}

		if value == "" {
			fmt.Printf("%-*s = %s\n", width, key, cliui.DimStyle.Render("<not set>"))
			continue
		}

		fmt.Printf("%-*s = %q\n", width, key, value)
	}

	return nil
}
