package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir moves into a fresh temporary directory so a config.yaml in the
// repository root cannot leak into the test.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(orig)
	})
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdir(t)
	t.Setenv("REVISIO_DATABASE_URL", "postgres://localhost:5432/revisio")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "postgres://localhost:5432/revisio", cfg.Database.URL)
	assert.False(t, cfg.Progress.AutoCompleteActive)
	assert.Equal(t, 3, cfg.Progress.SaveRetries)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	chdir(t)
	t.Setenv("REVISIO_DATABASE_URL", "postgres://localhost:5432/revisio")
	t.Setenv("REVISIO_SERVER_PORT", "9090")
	t.Setenv("REVISIO_SERVER_LOG_LEVEL", "debug")
	t.Setenv("REVISIO_PROGRESS_AUTO_COMPLETE_ACTIVE", "true")
	t.Setenv("REVISIO_PROGRESS_SAVE_RETRIES", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.True(t, cfg.Progress.AutoCompleteActive)
	assert.Equal(t, 5, cfg.Progress.SaveRetries)
}

func TestLoadConfigFile(t *testing.T) {
	dir := chdir(t)

	content := []byte(`
server:
  port: 3000
  log_level: warn
database:
  url: postgres://filehost:5432/revisio
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Server.LogLevel)
	assert.Equal(t, "postgres://filehost:5432/revisio", cfg.Database.URL)

	// Environment still wins over the file
	t.Setenv("REVISIO_SERVER_PORT", "4000")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Server.Port)
}

func TestLoadValidation(t *testing.T) {
	chdir(t)

	// Missing database URL
	t.Setenv("REVISIO_DATABASE_URL", "")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")

	// Out-of-range log level
	t.Setenv("REVISIO_DATABASE_URL", "postgres://localhost:5432/revisio")
	t.Setenv("REVISIO_SERVER_LOG_LEVEL", "verbose")
	_, err = Load()
	require.Error(t, err)

	// Retry bound
	t.Setenv("REVISIO_SERVER_LOG_LEVEL", "info")
	t.Setenv("REVISIO_PROGRESS_SAVE_RETRIES", "0")
	_, err = Load()
	require.Error(t, err)
}
