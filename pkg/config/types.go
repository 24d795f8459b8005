package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Config represents the persistent engram configuration stored as engram.toml
// in the .engram/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version    int              `toml:"version"`
	Storage    StorageConfig    `toml:"storage"`
	Embedding  EmbeddingConfig  `toml:"embedding"`
	Generation GenerationConfig `toml:"generation"`
	Memory     MemoryConfig     `toml:"memory"`
	API        APIConfig        `toml:"api"`
	Events     EventsConfig     `toml:"events"`
}

// StorageConfig holds long-term store settings.
type StorageConfig struct {
	// Driver selects the store backend: sqlite, postgres, or inmemory.
	Driver string `toml:"driver,omitempty"`

	// Path is the sqlite database file path. Empty means dotdir resolution.
	Path string `toml:"path,omitempty"`

	// DSN is the postgres connection string.
	DSN string `toml:"dsn,omitempty"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `toml:"provider,omitempty"`
	BaseURL    string `toml:"base_url,omitempty"`
	Model      string `toml:"model,omitempty"`
	Dimensions uint   `toml:"dimensions,omitempty"`
	APIKey     string `toml:"api_key,omitempty"`

	// CacheSize is the embedding cache budget in bytes. Zero disables caching.
	CacheSize int64 `toml:"cache_size,omitempty"`
}

// GenerationConfig holds text generation provider settings.
type GenerationConfig struct {
	Provider  string `toml:"provider,omitempty"`
	BaseURL   string `toml:"base_url,omitempty"`
	Model     string `toml:"model,omitempty"`
	MaxTokens int    `toml:"max_tokens,omitempty"`
	APIKey    string `toml:"api_key,omitempty"`
}

// MemoryConfig holds short-term memory and prompt budget settings.
type MemoryConfig struct {
	MaxTurns           int    `toml:"max_turns,omitempty"`
	MaxShortTermTokens int    `toml:"max_short_term_tokens,omitempty"`
	MaxLongTermTokens  int    `toml:"max_long_term_tokens,omitempty"`
	SystemPrompt       string `toml:"system_prompt,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	ListenAddr string `toml:"listen_addr,omitempty"`
	EnableMCP  bool   `toml:"enable_mcp"`
}

// EventsConfig holds event stream settings.
type EventsConfig struct {
	Enabled bool     `toml:"enabled"`
	Brokers []string `toml:"brokers,omitempty"`
	Topic   string   `toml:"topic,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"storage.driver": {
		get: func(c *Config) string { return c.Storage.Driver },
		set: func(c *Config, v string) error { c.Storage.Driver = v; return nil },
	},
	"storage.path": {
		get: func(c *Config) string { return c.Storage.Path },
		set: func(c *Config, v string) error { c.Storage.Path = v; return nil },
	},
	"storage.dsn": {
		get: func(c *Config) string { return c.Storage.DSN },
		set: func(c *Config, v string) error { c.Storage.DSN = v; return nil },
	},
	"embedding.provider": {
		get: func(c *Config) string { return c.Embedding.Provider },
		set: func(c *Config, v string) error { c.Embedding.Provider = v; return nil },
	},
	"embedding.base_url": {
		get: func(c *Config) string { return c.Embedding.BaseURL },
		set: func(c *Config, v string) error { c.Embedding.BaseURL = v; return nil },
	},
	"embedding.model": {
		get: func(c *Config) string { return c.Embedding.Model },
		set: func(c *Config, v string) error { c.Embedding.Model = v; return nil },
	},
	"embedding.dimensions": {
		get: func(c *Config) string {
			if c.Embedding.Dimensions == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Embedding.Dimensions), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for embedding.dimensions: %w", err)
			}
			c.Embedding.Dimensions = uint(n)
			return nil
		},
	},
	"embedding.api_key": {
		get: func(c *Config) string { return c.Embedding.APIKey },
		set: func(c *Config, v string) error { c.Embedding.APIKey = v; return nil },
	},
	"embedding.cache_size": {
		get: func(c *Config) string {
			if c.Embedding.CacheSize == 0 {
				return ""
			}
			return strconv.FormatInt(c.Embedding.CacheSize, 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for embedding.cache_size: %w", err)
			}
			c.Embedding.CacheSize = n
			return nil
		},
	},
	"generation.provider": {
		get: func(c *Config) string { return c.Generation.Provider },
		set: func(c *Config, v string) error { c.Generation.Provider = v; return nil },
	},
	"generation.base_url": {
		get: func(c *Config) string { return c.Generation.BaseURL },
		set: func(c *Config, v string) error { c.Generation.BaseURL = v; return nil },
	},
	"generation.model": {
		get: func(c *Config) string { return c.Generation.Model },
		set: func(c *Config, v string) error { c.Generation.Model = v; return nil },
	},
	"generation.max_tokens": {
		get: func(c *Config) string {
			if c.Generation.MaxTokens == 0 {
				return ""
			}
			return strconv.Itoa(c.Generation.MaxTokens)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for generation.max_tokens: %w", err)
			}
			c.Generation.MaxTokens = n
			return nil
		},
	},
	"generation.api_key": {
		get: func(c *Config) string { return c.Generation.APIKey },
		set: func(c *Config, v string) error { c.Generation.APIKey = v; return nil },
	},
	"memory.max_turns": {
		get: func(c *Config) string {
			if c.Memory.MaxTurns == 0 {
				return ""
			}
			return strconv.Itoa(c.Memory.MaxTurns)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for memory.max_turns: %w", err)
			}
			c.Memory.MaxTurns = n
			return nil
		},
	},
	"memory.max_short_term_tokens": {
		get: func(c *Config) string {
			if c.Memory.MaxShortTermTokens == 0 {
				return ""
			}
			return strconv.Itoa(c.Memory.MaxShortTermTokens)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for memory.max_short_term_tokens: %w", err)
			}
			c.Memory.MaxShortTermTokens = n
			return nil
		},
	},
	"memory.max_long_term_tokens": {
		get: func(c *Config) string {
			if c.Memory.MaxLongTermTokens == 0 {
				return ""
			}
			return strconv.Itoa(c.Memory.MaxLongTermTokens)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for memory.max_long_term_tokens: %w", err)
			}
			c.Memory.MaxLongTermTokens = n
			return nil
		},
	},
	"memory.system_prompt": {
		get: func(c *Config) string { return c.Memory.SystemPrompt },
		set: func(c *Config, v string) error { c.Memory.SystemPrompt = v; return nil },
	},
	"api.listen_addr": {
		get: func(c *Config) string { return c.API.ListenAddr },
		set: func(c *Config, v string) error { c.API.ListenAddr = v; return nil },
	},
	"api.enable_mcp": {
		get: func(c *Config) string { return strconv.FormatBool(c.API.EnableMCP) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for api.enable_mcp: %w", err)
			}
			c.API.EnableMCP = b
			return nil
		},
	},
	"events.enabled": {
		get: func(c *Config) string { return strconv.FormatBool(c.Events.Enabled) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for events.enabled: %w", err)
			}
			c.Events.Enabled = b
			return nil
		},
	},
	"events.brokers": {
		get: func(c *Config) string { return strings.Join(c.Events.Brokers, ",") },
		set: func(c *Config, v string) error {
			c.Events.Brokers = splitBrokers(v)
			return nil
		},
	},
	"events.topic": {
		get: func(c *Config) string { return c.Events.Topic },
		set: func(c *Config, v string) error { c.Events.Topic = v; return nil },
	},
}

// splitBrokers parses a comma-separated broker list, dropping empty entries.
func splitBrokers(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
