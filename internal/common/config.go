// Package common provides shared utilities for the advisor
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for the advisor
type Config struct {
	Environment string         `toml:"environment"`
	Server      ServerConfig   `toml:"server"`
	Storage     StorageConfig  `toml:"storage"`
	Clients     ClientsConfig  `toml:"clients"`
	Analysis    AnalysisConfig `toml:"analysis"`
	Logging     LoggingConfig  `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds the key-value store location.
type StorageConfig struct {
	Path string `toml:"path"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Feed   FeedConfig   `toml:"feed"`
	Claude ClaudeConfig `toml:"claude"`
	Gemini GeminiConfig `toml:"gemini"`
}

// FeedConfig holds the asset feed endpoint configuration
type FeedConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"` // requests per second
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *FeedConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// ClaudeConfig holds the Claude messages API configuration.
// BaseURL normally points at the CORS proxy that attaches provider headers.
type ClaudeConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	Model     string `toml:"model"`
	MaxTokens int    `toml:"max_tokens"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *ClaudeConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// AnalysisConfig controls the allocation engines.
type AnalysisConfig struct {
	Provider  string `toml:"provider"`   // "claude", "gemini", or "" (rule-based only)
	AITimeout string `toml:"ai_timeout"` // deadline for the AI call before rule-based fallback
}

// GetAITimeout parses and returns the AI deadline duration
func (c *AnalysisConfig) GetAITimeout() time.Duration {
	d, err := time.ParseDuration(c.AITimeout)
	if err != nil {
		return 45 * time.Second
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8090,
		},
		Storage: StorageConfig{
			Path: "data/advisor",
		},
		Clients: ClientsConfig{
			Feed: FeedConfig{
				RateLimit: 5,
				Timeout:   "30s",
			},
			Claude: ClaudeConfig{
				BaseURL:   "https://api.anthropic.com/v1/messages",
				Model:     "claude-sonnet-4-20250514",
				MaxTokens: 4000,
				Timeout:   "60s",
			},
			Gemini: GeminiConfig{
				Model: "gemini-2.0-flash",
			},
		},
		Analysis: AnalysisConfig{
			Provider:  "claude",
			AITimeout: "45s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("WWA_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("WWA_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("WWA_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("WWA_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("WWA_DATA_PATH"); path != "" {
		config.Storage.Path = path
	}

	if url := os.Getenv("WWA_FEED_URL"); url != "" {
		config.Clients.Feed.BaseURL = url
	}

	if provider := os.Getenv("WWA_AI_PROVIDER"); provider != "" {
		config.Analysis.Provider = strings.ToLower(provider)
	}
}

// ResolveAPIKey resolves an API key from environment variables with a config fallback
func ResolveAPIKey(name, fallback string) (string, error) {
	keyToEnvMapping := map[string][]string{
		"claude_api_key": {"ANTHROPIC_API_KEY", "WWA_CLAUDE_API_KEY"},
		"gemini_api_key": {"GEMINI_API_KEY", "WWA_GEMINI_API_KEY", "GOOGLE_API_KEY"},
	}

	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	if fallback != "" {
		return fallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment or config", name)
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
