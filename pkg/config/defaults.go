package config

const (
	defaultStorageDriver = "sqlite"

	defaultEmbeddingProvider   = "ollama"
	defaultEmbeddingBaseURL    = "http://localhost:11434"
	defaultEmbeddingModel      = "nomic-embed-text"
	defaultEmbeddingDimensions = 768
	defaultEmbeddingCacheSize  = 1 << 20

	defaultGenerationProvider  = "ollama"
	defaultGenerationBaseURL   = "http://localhost:11434"
	defaultGenerationModel     = "gemma3:latest"
	defaultGenerationMaxTokens = 1024

	defaultMaxTurns           = 50
	defaultMaxShortTermTokens = 1000
	defaultMaxLongTermTokens  = 300
	defaultSystemPrompt       = "You are a helpful assistant. Answer using the conversation context when it is relevant."

	defaultListenAddr = ":8080"

	defaultEventsTopic = "engram-events"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			Driver: defaultStorageDriver,
		},
		Embedding: EmbeddingConfig{
			Provider:   defaultEmbeddingProvider,
			BaseURL:    defaultEmbeddingBaseURL,
			Model:      defaultEmbeddingModel,
			Dimensions: defaultEmbeddingDimensions,
			CacheSize:  defaultEmbeddingCacheSize,
		},
		Generation: GenerationConfig{
			Provider:  defaultGenerationProvider,
			BaseURL:   defaultGenerationBaseURL,
			Model:     defaultGenerationModel,
			MaxTokens: defaultGenerationMaxTokens,
		},
		Memory: MemoryConfig{
			MaxTurns:           defaultMaxTurns,
			MaxShortTermTokens: defaultMaxShortTermTokens,
			MaxLongTermTokens:  defaultMaxLongTermTokens,
			SystemPrompt:       defaultSystemPrompt,
		},
		API: APIConfig{
			ListenAddr: defaultListenAddr,
			EnableMCP:  true,
		},
		Events: EventsConfig{
			Topic: defaultEventsTopic,
		},
	}
}
