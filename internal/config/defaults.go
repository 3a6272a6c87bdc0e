package config

const (
	defaultDataDir             = "~/.local/share/quadvoice"
	defaultLogDir              = "~/.local/share/quadvoice/logs"
	defaultAPIBind             = "127.0.0.1:8780"
	defaultAnthropicBaseURL    = "https://api.anthropic.com"
	defaultAnthropicModel      = "claude-3-5-sonnet-20241022"
	defaultAnthropicMaxTokens  = 800
	defaultAnthropicTimeout    = 60
	defaultEmbeddingDimensions = 1536
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Anthropic: Anthropic{
			BaseURL:        defaultAnthropicBaseURL,
			Model:          defaultAnthropicModel,
			MaxTokens:      defaultAnthropicMaxTokens,
			TimeoutSeconds: defaultAnthropicTimeout,
		},
		Embedding: Embedding{
			Dimensions: defaultEmbeddingDimensions,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
