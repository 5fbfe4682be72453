package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	assert.Equal(t, 8090, config.Server.Port)
	assert.Equal(t, "claude", config.Analysis.Provider)
	assert.Equal(t, "data/advisor", config.Storage.Path)
	assert.False(t, config.IsProduction())
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "advisor.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
environment = "production"

[server]
port = 9999

[analysis]
provider = "gemini"
ai_timeout = "10s"
`), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, config.Server.Port)
	assert.Equal(t, "gemini", config.Analysis.Provider)
	assert.True(t, config.IsProduction())
	// Untouched sections keep their defaults.
	assert.Equal(t, "0.0.0.0", config.Server.Host)
}

func TestLoadConfig_MissingFileIsSkipped(t *testing.T) {
	config, err := LoadConfig("/nonexistent/advisor.toml")
	require.NoError(t, err)
	assert.Equal(t, 8090, config.Server.Port)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("WWA_PORT", "7070")
	t.Setenv("WWA_LOG_LEVEL", "debug")
	t.Setenv("WWA_AI_PROVIDER", "Gemini")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 7070, config.Server.Port)
	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, "gemini", config.Analysis.Provider)
}

func TestResolveAPIKey(t *testing.T) {
	t.Run("environment wins over fallback", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "env-key")

		key, err := ResolveAPIKey("claude_api_key", "config-key")
		require.NoError(t, err)
		assert.Equal(t, "env-key", key)
	})

	t.Run("config fallback", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "")
		t.Setenv("WWA_CLAUDE_API_KEY", "")

		key, err := ResolveAPIKey("claude_api_key", "config-key")
		require.NoError(t, err)
		assert.Equal(t, "config-key", key)
	})

	t.Run("missing everywhere", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "")
		t.Setenv("WWA_CLAUDE_API_KEY", "")

		_, err := ResolveAPIKey("claude_api_key", "")
		assert.Error(t, err)
	})
}

func TestTimeoutParsing(t *testing.T) {
	feed := FeedConfig{Timeout: "5s"}
	assert.Equal(t, "5s", feed.GetTimeout().String())

	broken := FeedConfig{Timeout: "not-a-duration"}
	assert.Equal(t, "30s", broken.GetTimeout().String())

	analysis := AnalysisConfig{AITimeout: "90s"}
	assert.Equal(t, "1m30s", analysis.GetAITimeout().String())
}
