// Package configcmder provides the config command for managing persistent
// engram configuration stored in the .engram/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent engram configuration.

Configuration is stored as engram.toml in the .engram/ directory and
provides default values for command flags. CLI flags and ENGRAM_
environment variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  storage.driver, storage.path, storage.dsn,
  embedding.provider, embedding.base_url, embedding.model,
  embedding.dimensions, embedding.api_key, embedding.cache_size,
  generation.provider, generation.base_url, generation.model,
  generation.max_tokens, generation.api_key,
  memory.max_turns, memory.max_short_term_tokens,
  memory.max_long_term_tokens, memory.system_prompt,
  api.listen_addr, api.enable_mcp,
  events.enabled, events.brokers, events.topic

Use subcommands to get, set, or list configuration values:
  engram config set <key> <value>   Set a configuration value
  engram config get <key>           Get a configuration value
  engram config list                List all configuration values

Examples:
  engram config set embedding.model nomic-embed-text
  engram config set memory.max_turns 80
  engram config get storage.driver
  engram config list`

const configShortDesc string = "Manage persistent engram configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
