// =============================================================================
// Default configuration
// =============================================================================
package config

import (
	"os"
	"time"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server:  DefaultServerConfig(),
		OpenAI:  DefaultOpenAIConfig(),
		Storage: DefaultStorageConfig(),
		Log:     DefaultLogConfig(),
	}
}

// DefaultServerConfig returns the default HTTP listener configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Enabled:         false,
		HTTPPort:        8080,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 15 * time.Second,
	}
}

// DefaultOpenAIConfig returns the default OpenAI image configuration.
func DefaultOpenAIConfig() OpenAIConfig {
	return OpenAIConfig{
		BaseURL: "https://api.openai.com",
		Model:   "dall-e-3",
		Timeout: 120 * time.Second,
	}
}

// DefaultStorageConfig returns the default storage configuration.
// Root defaults to the process working directory so relative save paths
// resolve against wherever the server was launched.
func DefaultStorageConfig() StorageConfig {
	root, err := os.Getwd()
	if err != nil {
		root = "."
	}
	return StorageConfig{
		Root:       root,
		DefaultDir: "generated_images",
	}
}

// DefaultLogConfig returns the default logging configuration.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:        "info",
		Format:       "json",
		EnableCaller: false,
	}
}
