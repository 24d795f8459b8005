package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/engramco/engram/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the engram.toml file
// (if found via dotdir resolution), and binds environment variables
// with the ENGRAM_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (ENGRAM_STORAGE_DRIVER, ENGRAM_API_LISTEN_ADDR, etc.)
//  3. engram.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("engram")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: ENGRAM_STORAGE_DRIVER, ENGRAM_EMBEDDING_MODEL, etc.
	v.SetEnvPrefix("ENGRAM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// FromViper materializes a typed Config from the viper precedence chain
// (flag > env > file > default). The inverse of setViperDefaults.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Version: v.GetInt("version"),
		Storage: StorageConfig{
			Driver: v.GetString("storage.driver"),
			Path:   v.GetString("storage.path"),
			DSN:    v.GetString("storage.dsn"),
		},
		Embedding: EmbeddingConfig{
			Provider:   v.GetString("embedding.provider"),
			BaseURL:    v.GetString("embedding.base_url"),
			Model:      v.GetString("embedding.model"),
			Dimensions: v.GetUint("embedding.dimensions"),
			APIKey:     v.GetString("embedding.api_key"),
			CacheSize:  v.GetInt64("embedding.cache_size"),
		},
		Generation: GenerationConfig{
			Provider:  v.GetString("generation.provider"),
			BaseURL:   v.GetString("generation.base_url"),
			Model:     v.GetString("generation.model"),
			MaxTokens: v.GetInt("generation.max_tokens"),
			APIKey:    v.GetString("generation.api_key"),
		},
		Memory: MemoryConfig{
			MaxTurns:           v.GetInt("memory.max_turns"),
			MaxShortTermTokens: v.GetInt("memory.max_short_term_tokens"),
			MaxLongTermTokens:  v.GetInt("memory.max_long_term_tokens"),
			SystemPrompt:       v.GetString("memory.system_prompt"),
		},
		API: APIConfig{
			ListenAddr: v.GetString("api.listen_addr"),
			EnableMCP:  v.GetBool("api.enable_mcp"),
		},
		Events: EventsConfig{
			Enabled: v.GetBool("events.enabled"),
			Brokers: v.GetStringSlice("events.brokers"),
			Topic:   v.GetString("events.topic"),
		},
	}
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Storage
	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("storage.dsn", d.Storage.DSN)

	// Embedding
	v.SetDefault("embedding.provider", d.Embedding.Provider)
	v.SetDefault("embedding.base_url", d.Embedding.BaseURL)
	v.SetDefault("embedding.model", d.Embedding.Model)
	v.SetDefault("embedding.dimensions", d.Embedding.Dimensions)
	v.SetDefault("embedding.api_key", d.Embedding.APIKey)
	v.SetDefault("embedding.cache_size", d.Embedding.CacheSize)

	// Generation
	v.SetDefault("generation.provider", d.Generation.Provider)
	v.SetDefault("generation.base_url", d.Generation.BaseURL)
	v.SetDefault("generation.model", d.Generation.Model)
	v.SetDefault("generation.max_tokens", d.Generation.MaxTokens)
	v.SetDefault("generation.api_key", d.Generation.APIKey)

	// Memory
	v.SetDefault("memory.max_turns", d.Memory.MaxTurns)
	v.SetDefault("memory.max_short_term_tokens", d.Memory.MaxShortTermTokens)
	v.SetDefault("memory.max_long_term_tokens", d.Memory.MaxLongTermTokens)
	v.SetDefault("memory.system_prompt", d.Memory.SystemPrompt)

	// API
	v.SetDefault("api.listen_addr", d.API.ListenAddr)
	v.SetDefault("api.enable_mcp", d.API.EnableMCP)

	// Events
	v.SetDefault("events.enabled", d.Events.Enabled)
	v.SetDefault("events.brokers", d.Events.Brokers)
	v.SetDefault("events.topic", d.Events.Topic)
}
