package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/engramco/engram/pkg/dotdir"
)

const (
	configFile = "engram.toml"

	// v0 is the alpha version of the config
	v0 = 0

	// CurrentV is the currently supported version, points to v0
	CurrentV = v0
)

type Configer struct {
	ddm        *dotdir.Manager
	targetPath string
}

func NewConfiger(override string) (*Configer, error) {
	cfger := &Configer{}

	cfger.ddm = dotdir.NewManager()
	target, err := cfger.ddm.Target(override)
	if err != nil {
		return nil, err
	}

	// If no .engram/ directory was resolved, targetPath stays empty;
	// LoadConfig will return defaults and SaveConfig will error clearly.
	if target == "" {
		return cfger, nil
	}

	path := filepath.Join(target, configFile)
	_, err = os.Stat(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Always set targetPath when the directory exists so SaveConfig
	// can create or overwrite the file.
	cfger.targetPath = path

	return cfger, nil
}

// ValidConfigKeys returns the sorted list of all supported configuration key names.
func ValidConfigKeys() []string {
	keys := make([]string, 0, len(configKeys))
	for k := range configKeys {
		keys = append(keys, k)
	}

	// Return in a stable, logical order matching the TOML section layout.
	ordered := []string{
		"storage.driver",
		"storage.path",
		"storage.dsn",
		"embedding.provider",
		"embedding.base_url",
		"embedding.model",
		"embedding.dimensions",
		"embedding.api_key",
		"embedding.cache_size",
		"generation.provider",
		"generation.base_url",
		"generation.model",
		"generation.max_tokens",
		"generation.api_key",
		"memory.max_turns",
		"memory.max_short_term_tokens",
		"memory.max_long_term_tokens",
		"memory.system_prompt",
		"api.listen_addr",
		"api.enable_mcp",
		"events.enabled",
		"events.brokers",
		"events.topic",
	}

	// Sanity: only return keys that actually exist in the map.
	result := make([]string, 0, len(ordered))
	for _, k := range ordered {
		if _, ok := configKeys[k]; ok {
			result = append(result, k)
		}
	}

	// Append any keys in the map that we missed in the ordered list.
	seen := make(map[string]bool, len(result))
	for _, k := range result {
		seen[k] = true
	}
	for _, k := range keys {
		if !seen[k] {
			result = append(result, k)
		}
	}

	return result
}

// IsValidConfigKey returns true if the given key is a supported configuration key.
func IsValidConfigKey(key string) bool {
	_, ok := configKeys[key]
	return ok
}

func (c *Configer) GetTarget() string {
	return c.targetPath
}

// LoadConfig loads the configuration from engram.toml in the target .engram/
// directory. If the file does not exist, returns NewDefaultConfig() so callers
// always receive a fully-populated Config with sane defaults. Fields explicitly
// set in the file override the defaults.
func (c *Configer) LoadConfig() (*Config, error) {
	if c.targetPath == "" {
		return NewDefaultConfig(), nil
	}

	data, err := os.ReadFile(c.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewDefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := ParseConfigTOML(data)
	if err != nil {
		return nil, err
	}

	// Merge in defaults: fill in any zero-value fields from the loaded config
	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults fills zero-value fields in cfg with values from NewDefaultConfig().
func applyDefaults(cfg *Config) {
	defaults := NewDefaultConfig()

	if cfg.Version == 0 {
		cfg.Version = defaults.Version
	}

	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = defaults.Storage.Driver
	}

	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = defaults.Embedding.Provider
	}
	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = defaults.Embedding.BaseURL
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = defaults.Embedding.Model
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = defaults.Embedding.Dimensions
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = defaults.Embedding.CacheSize
	}

	if cfg.Generation.Provider == "" {
		cfg.Generation.Provider = defaults.Generation.Provider
	}
	if cfg.Generation.BaseURL == "" {
		cfg.Generation.BaseURL = defaults.Generation.BaseURL
	}
	if cfg.Generation.Model == "" {
		cfg.Generation.Model = defaults.Generation.Model
	}
	if cfg.Generation.MaxTokens == 0 {
		cfg.Generation.MaxTokens = defaults.Generation.MaxTokens
	}

	if cfg.Memory.MaxTurns == 0 {
		cfg.Memory.MaxTurns = defaults.Memory.MaxTurns
	}
	if cfg.Memory.MaxShortTermTokens == 0 {
		cfg.Memory.MaxShortTermTokens = defaults.Memory.MaxShortTermTokens
	}
	if cfg.Memory.MaxLongTermTokens == 0 {
		cfg.Memory.MaxLongTermTokens = defaults.Memory.MaxLongTermTokens
	}
	if cfg.Memory.SystemPrompt == "" {
		cfg.Memory.SystemPrompt = defaults.Memory.SystemPrompt
	}

	if cfg.API.ListenAddr == "" {
		cfg.API.ListenAddr = defaults.API.ListenAddr
	}

	if cfg.Events.Topic == "" {
		cfg.Events.Topic = defaults.Events.Topic
	}
}

// SaveConfig persists the configuration to engram.toml in the target .engram/ directory.
func (c *Configer) SaveConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("cannot save nil config")
	}

	if c.targetPath == "" {
		return errors.New("cannot save empty target path")
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(c.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// SetConfigValue loads the config, sets the given key to the given value, and saves it.
// Returns an error if the key is not a valid config key.
func (c *Configer) SetConfigValue(key string, value string) error {
	info, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return err
	}

	if err := info.set(cfg, value); err != nil {
		return err
	}

	return c.SaveConfig(cfg)
}

// GetConfigValue loads the config and returns the string representation of the given key.
// Returns an error if the key is not a valid config key.
func (c *Configer) GetConfigValue(key string) (string, error) {
	info, ok := configKeys[key]
	if !ok {
		return "", fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return "", err
	}

	return info.get(cfg), nil
}

// PresetConfig returns a Config with sane defaults for the named provider preset.
// Supported presets: "ollama", "openai", "anthropic".
// Returns an error if the preset name is not recognized.
func PresetConfig(name string) (*Config, error) {
	switch strings.ToLower(name) {
	case "ollama":
		return &Config{
			Version: CurrentV,
			Storage: StorageConfig{
				Driver: "sqlite",
			},
			Embedding: EmbeddingConfig{
				Provider:   "ollama",
				BaseURL:    "http://localhost:11434",
				Model:      "nomic-embed-text",
				Dimensions: 768,
			},
			Generation: GenerationConfig{
				Provider: "ollama",
				BaseURL:  "http://localhost:11434",
				Model:    "gemma3:latest",
			},
		}, nil

	case "openai":
		return &Config{
			Version: CurrentV,
			Storage: StorageConfig{
				Driver: "sqlite",
			},
			Embedding: EmbeddingConfig{
				Provider:   "openai",
				Model:      "text-embedding-3-small",
				Dimensions: 1536,
			},
			Generation: GenerationConfig{
				Provider:  "openai",
				Model:     "gpt-4o-mini",
				MaxTokens: 1024,
			},
		}, nil

	case "anthropic":
		return &Config{
			Version: CurrentV,
			Storage: StorageConfig{
				Driver: "sqlite",
			},
			Embedding: EmbeddingConfig{
				Provider:   "ollama",
				BaseURL:    "http://localhost:11434",
				Model:      "nomic-embed-text",
				Dimensions: 768,
			},
			Generation: GenerationConfig{
				Provider:  "anthropic",
				MaxTokens: 1024,
			},
		}, nil

	default:
		return nil, fmt.Errorf("unknown preset: %q (available: ollama, openai, anthropic)", name)
	}
}

// ValidPresetNames returns the list of recognized preset names.
func ValidPresetNames() []string {
	return []string{"ollama", "openai", "anthropic"}
}

// ParseConfigTOML parses raw TOML bytes into a Config.
// Returns an error if the version field is present and not equal to CurrentV.
func ParseConfigTOML(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config TOML: %w", err)
	}

	if cfg.Version != 0 && cfg.Version != CurrentV {
		return nil, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentV)
	}

	return cfg, nil
}
