package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresFeedURL(t *testing.T) {
	t.Setenv("FEED_URL", "")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FEED_URL")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("FEED_URL", "https://feed.example.it/export")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, []string{"car"}, cfg.FeedEngineTypes)
	assert.True(t, cfg.FeedVisibleOnly)
	assert.Equal(t, 10*time.Second, cfg.FeedTimeout)
	assert.Equal(t, 12, cfg.DefaultPageSize)
	assert.Equal(t, 100, cfg.MaxPageSize)
	assert.False(t, cfg.RedisEnabled)
	assert.Nil(t, cfg.RateLimitWhitelist)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("FEED_URL", "https://feed.example.it/export")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "Pretty")
	t.Setenv("FEED_ENGINE_TYPES", "car, van ,,")
	t.Setenv("FEED_VISIBLE_ONLY", "false")
	t.Setenv("FEED_TIMEOUT", "3s")
	t.Setenv("POLL_INTERVAL", "not-a-duration")
	t.Setenv("DEFAULT_PAGE_SIZE", "24")
	t.Setenv("MAX_PAGE_SIZE", "10")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1, 10.0.0.2")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "pretty", cfg.LogFormat)
	assert.Equal(t, []string{"car", "van"}, cfg.FeedEngineTypes)
	assert.False(t, cfg.FeedVisibleOnly)
	assert.Equal(t, 3*time.Second, cfg.FeedTimeout)
	assert.Equal(t, 5*time.Minute, cfg.PollInterval)
	assert.Equal(t, 24, cfg.DefaultPageSize)
	assert.Equal(t, 24, cfg.MaxPageSize)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.RateLimitWhitelist)
}

func TestLoad_EnvFileDoesNotOverrideEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("FEED_URL=https://from-file\nFEED_API_KEY=filekey\nHTTP_ADDR=:9000\n"), 0o644))

	t.Setenv("HTTP_ADDR", ":7000")
	// Registered so t.Setenv restores them; Load fills them from the file.
	t.Setenv("FEED_URL", "")
	t.Setenv("FEED_API_KEY", "")
	require.NoError(t, os.Unsetenv("FEED_URL"))
	require.NoError(t, os.Unsetenv("FEED_API_KEY"))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://from-file", cfg.FeedURL)
	assert.Equal(t, "filekey", cfg.FeedAPIKey)
	assert.Equal(t, ":7000", cfg.HTTPAddr)
}
