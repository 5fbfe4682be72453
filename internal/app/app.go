// Package app wires configuration, storage, clients and services into the
// shared core used by cmd/advisor-server.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mtasci89/weekly-wealth-advisor/internal/clients/claude"
	"github.com/mtasci89/weekly-wealth-advisor/internal/clients/feed"
	"github.com/mtasci89/weekly-wealth-advisor/internal/clients/gemini"
	"github.com/mtasci89/weekly-wealth-advisor/internal/common"
	"github.com/mtasci89/weekly-wealth-advisor/internal/interfaces"
	"github.com/mtasci89/weekly-wealth-advisor/internal/services/analysis"
	"github.com/mtasci89/weekly-wealth-advisor/internal/services/diff"
	"github.com/mtasci89/weekly-wealth-advisor/internal/services/tracker"
	"github.com/mtasci89/weekly-wealth-advisor/internal/storage"
)

// App holds all initialized services and clients.
type App struct {
	Config          *common.Config
	Logger          *common.Logger
	Storage         *storage.Manager
	FeedClient      interfaces.AssetFeed // nil when no feed endpoint is configured
	AIClient        interfaces.AIClient  // nil when no provider credential resolves
	AnalysisService interfaces.AnalysisService
	SnapshotService interfaces.SnapshotService
	DiffService     interfaces.DiffService
	StartupTime     time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage, clients and services.
// configPath may be empty, in which case WWA_CONFIG and the binary
// directory are consulted.
func NewApp(configPath string) (*App, error) {
	common.LoadVersionFromFile()

	binDir := getBinaryDir()

	if configPath == "" {
		configPath = os.Getenv("WWA_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "advisor.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/advisor.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}

	logger := common.NewLogger(config.Logging.Level)

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	var feedClient interfaces.AssetFeed
	if config.Clients.Feed.BaseURL != "" {
		feedClient = feed.NewClient(config.Clients.Feed.BaseURL,
			feed.WithTimeout(config.Clients.Feed.GetTimeout()),
			feed.WithRateLimit(config.Clients.Feed.RateLimit),
			feed.WithLogger(logger),
		)
	} else {
		logger.Warn().Msg("No asset feed endpoint configured - analysis endpoints will be unavailable")
	}

	aiClient := buildAIClient(config, logger)

	analysisOpts := []analysis.ServiceOption{
		analysis.WithAITimeout(config.Analysis.GetAITimeout()),
	}
	if aiClient != nil {
		analysisOpts = append(analysisOpts, analysis.WithAIClient(aiClient))
	}

	kv := storageManager.KeyValueStore()

	app := &App{
		Config:          config,
		Logger:          logger,
		Storage:         storageManager,
		FeedClient:      feedClient,
		AIClient:        aiClient,
		AnalysisService: analysis.NewService(logger, analysisOpts...),
		SnapshotService: tracker.NewService(kv, logger),
		DiffService:     diff.NewService(kv, logger),
		StartupTime:     time.Now(),
	}

	logger.Info().
		Str("provider", config.Analysis.Provider).
		Bool("ai_enabled", aiClient != nil).
		Msg("Application initialized")

	return app, nil
}

// buildAIClient constructs the configured provider's client, or nil when
// no credential resolves. A missing credential is never fatal; the engine
// degrades to rule-based analysis.
func buildAIClient(config *common.Config, logger *common.Logger) interfaces.AIClient {
	switch config.Analysis.Provider {
	case "claude":
		key, err := common.ResolveAPIKey("claude_api_key", config.Clients.Claude.APIKey)
		if err != nil {
			logger.Warn().Msg("Claude API key not configured - AI analysis will be unavailable")
			return nil
		}
		return claude.NewClient(key,
			claude.WithBaseURL(config.Clients.Claude.BaseURL),
			claude.WithModel(config.Clients.Claude.Model),
			claude.WithMaxTokens(config.Clients.Claude.MaxTokens),
			claude.WithTimeout(config.Clients.Claude.GetTimeout()),
			claude.WithLogger(logger),
		)

	case "gemini":
		key, err := common.ResolveAPIKey("gemini_api_key", config.Clients.Gemini.APIKey)
		if err != nil {
			logger.Warn().Msg("Gemini API key not configured - AI analysis will be unavailable")
			return nil
		}
		client, err := gemini.NewClient(context.Background(), key,
			gemini.WithModel(config.Clients.Gemini.Model),
			gemini.WithLogger(logger),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("Gemini client initialization failed - AI analysis will be unavailable")
			return nil
		}
		return client

	case "":
		logger.Info().Msg("No AI provider configured, running rule-based only")
		return nil

	default:
		logger.Warn().Str("provider", config.Analysis.Provider).Msg("Unknown AI provider, running rule-based only")
		return nil
	}
}

// Close releases all resources held by the app.
func (a *App) Close() {
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("Failed to close storage")
		}
	}
}
