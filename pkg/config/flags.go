package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --db on
// "engram serve", "engram add", and "engram search").
type Flag struct {
	// Name is the long flag name (e.g. "embedding-model").
	Name string

	// Shorthand is the one-letter short flag (e.g. "l"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "embedding.model").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddUintFlag, AddIntFlag,
// AddBoolFlag, and BindRegisteredFlags to avoid typos or drift from one
// command to another.
const (
	FlagListen            = "listen"
	FlagEnableMCP         = "mcp"
	FlagStorageDriver     = "storage-driver"
	FlagDBPath            = "db"
	FlagStorageDSN        = "dsn"
	FlagEmbeddingProv     = "embedding-provider"
	FlagEmbeddingBaseURL  = "embedding-base-url"
	FlagEmbeddingModel    = "embedding-model"
	FlagEmbeddingDims     = "embedding-dimensions"
	FlagGenerationProv    = "generation-provider"
	FlagGenerationBaseURL = "generation-base-url"
	FlagGenerationModel   = "generation-model"
	FlagSystemPrompt      = "system-prompt"
	FlagShortTermBudget   = "short-term-budget"
	FlagLongTermBudget    = "long-term-budget"
)

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddIntFlag registers an int flag on cmd from the given FlagSet.
func AddIntFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *int) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultInt(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().IntVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().IntVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddBoolFlag registers a bool flag on cmd from the given FlagSet.
func AddBoolFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *bool) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultBool(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().BoolVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().BoolVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	v := viper.New()
	setViperDefaults(v)
	return v.GetUint(viperKey)
}

// defaultInt returns the default int value for a viper key from NewDefaultConfig.
func defaultInt(viperKey string) int {
	v := viper.New()
	setViperDefaults(v)
	return v.GetInt(viperKey)
}

// defaultBool returns the default bool value for a viper key from NewDefaultConfig.
func defaultBool(viperKey string) bool {
	v := viper.New()
	setViperDefaults(v)
	return v.GetBool(viperKey)
}
