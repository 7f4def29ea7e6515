package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/choosedb/internal/questionnaire"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	want := DefaultConfig()
	assert.Equal(t, want.BaseURL, cfg.BaseURL)
	assert.Equal(t, want.RequestName, cfg.RequestName)
	assert.Equal(t, want.Timeout, cfg.Timeout)
	assert.Equal(t, want.Retry, cfg.Retry)
	assert.True(t, cfg.History)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_UnsetVariablesKeepDefaults(t *testing.T) {
	t.Setenv("CHOOSEDB_TIMEOUT", "3s")
	t.Setenv("CHOOSEDB_RETRY_MAX_WAIT", "1s")

	cfg, err := Load("")
	require.NoError(t, err)

	want := DefaultConfig()
	want.Timeout = 3 * time.Second
	want.Retry.MaxWait = time.Second
	assert.Equal(t, want, cfg)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CHOOSEDB_BASE_URL", "http://localhost:8089")
	t.Setenv("CHOOSEDB_DEFAULT_MODE", "multi")
	t.Setenv("CHOOSEDB_TIMEOUT", "2s")
	t.Setenv("CHOOSEDB_RETRY_MAX_ATTEMPTS", "5")
	t.Setenv("CHOOSEDB_HISTORY", "false")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8089", cfg.BaseURL)
	assert.Equal(t, questionnaire.ModeMulti, cfg.Mode())
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.False(t, cfg.History)
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("CHOOSEDB_REQUEST_NAME=From File\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("CHOOSEDB_REQUEST_NAME") })

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, "From File", cfg.RequestName)
}

func TestLoad_MissingEnvFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.env"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"relative url", func(c *Config) { c.BaseURL = "/api" }, true},
		{"bad scheme", func(c *Config) { c.BaseURL = "ftp://example.com" }, true},
		{"bad mode", func(c *Config) { c.DefaultMode = "text" }, true},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, true},
		{"zero attempts", func(c *Config) { c.Retry.MaxAttempts = 0 }, true},
		{"shrinking backoff", func(c *Config) { c.Retry.Multiplier = 0.5 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEndpointURLs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseURL = "http://localhost:8089/"
	cfg.QuestionsPath = "questions"

	assert.Equal(t, "http://localhost:8089/questions", cfg.QuestionsURL())
	assert.Equal(t, "http://localhost:8089/recommend", cfg.RecommendURL())
}

func TestDefaultPaths_UseXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))

	dbPath, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "data", "choosedb", "choosedb.db"), dbPath)
	assert.DirExists(t, filepath.Dir(dbPath))

	logPath, err := DefaultLogPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "state", "choosedb", "choosedb.log"), logPath)
}

func TestCallTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timeout = 2 * time.Second
	cfg.Retry.MaxAttempts = 3
	cfg.Retry.MaxWait = time.Second

	assert.Equal(t, 8*time.Second, cfg.CallTimeout())

	cfg.Retry.MaxAttempts = 0
	assert.Equal(t, 2*time.Second, cfg.CallTimeout())
}
