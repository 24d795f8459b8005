// Package initcmder provides the init command for creating a project-local
// .engram/ directory.
package initcmder

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/engramco/engram/pkg/cliui"
	"github.com/engramco/engram/pkg/config"
)

const dirName = ".engram"

type initCommander struct {
	preset string
}

const initLongDesc string = `Initialize a project-local .engram/ directory.

Creates ./.engram/ in the current directory and writes an engram.toml seeded
with defaults. When a local .engram/ directory exists, engram commands use it
instead of ~/.engram, so the project gets its own config and SQLite store.

The --preset flag seeds the config from a known provider stack (ollama,
openai, anthropic) or from a URL serving a TOML config. Re-running with
--preset overwrites the existing engram.toml.

Examples:
  engram init
  engram init --preset openai
  engram init --preset https://example.com/team-engram.toml`

const initShortDesc string = "Initialize a project-local .engram/ directory"

func NewInitCmd() *cobra.Command {
	cmder := &initCommander{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmder.run()
		},
	}

	cmd.Flags().StringVarP(&cmder.preset, "preset", "p", "",
		fmt.Sprintf("Seed the config from a provider preset (%s) or a URL serving TOML", strings.Join(config.ValidPresetNames(), ", ")))

	return cmd
}

func (c *initCommander) run() error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dirName)
	cfgPath := filepath.Join(dir, "engram.toml")

	if _, err := os.Stat(cfgPath); err == nil && c.preset == "" {
		fmt.Printf("%s Already initialized %s\n", cliui.SuccessMark, cliui.DimStyle.Render(cfgPath))
		return nil
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", cfgPath, err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s directory: %w", dirName, err)
	}

	cfg, err := c.resolvePreset()
	if err != nil {
		return err
	}

	configer, err := config.NewConfiger(dir)
	if err != nil {
		return err
	}

	if err := configer.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Printf("%s Initialized %s\n", cliui.SuccessMark, cliui.DimStyle.Render(cfgPath))

	return nil
}

// resolvePreset turns the --preset value into a Config. Empty means built-in
// defaults, a known name means a provider preset, and an http(s) URL means a
// remote TOML config.
func (c *initCommander) resolvePreset() (*config.Config, error) {
	if c.preset == "" {
		return config.NewDefaultConfig(), nil
	}

	if strings.HasPrefix(c.preset, "http://") || strings.HasPrefix(c.preset, "https://") {
		return fetchRemoteConfig(c.preset)
	}

	return config.PresetConfig(c.preset)
}

func fetchRemoteConfig(url string) (*config.Config, error) {
	client := &http.Client{Timeout: 30 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching remote config: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading remote config: %w", err)
	}

	return config.ParseConfigTOML(data)
}
