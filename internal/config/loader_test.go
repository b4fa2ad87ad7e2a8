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

func clearSchedulerEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"FIELDOPS_CONFIG_FILE",
		"FIELDOPS_HTTP_PORT",
		"FIELDOPS_SQLITE_DSN",
		"FIELDOPS_SHUTDOWN_TIMEOUT",
		"FIELDOPS_LOG_LEVEL",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadDefaults(t *testing.T) {
	clearSchedulerEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "file:fieldops.db?_foreign_keys=on", cfg.SQLiteDSN)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	clearSchedulerEnv(t)
	t.Setenv("FIELDOPS_HTTP_PORT", "9090")
	t.Setenv("FIELDOPS_SQLITE_DSN", "file:/tmp/fieldops.db")
	t.Setenv("FIELDOPS_SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("FIELDOPS_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, "file:/tmp/fieldops.db", cfg.SQLiteDSN)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoadRejectsInvalidEnvironment(t *testing.T) {
	clearSchedulerEnv(t)
	t.Setenv("FIELDOPS_HTTP_PORT", "not-a-port")
	t.Setenv("FIELDOPS_SHUTDOWN_TIMEOUT", "-5s")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FIELDOPS_HTTP_PORT")
	assert.Contains(t, err.Error(), "FIELDOPS_SHUTDOWN_TIMEOUT")
}

func TestLoadConfigFile(t *testing.T) {
	clearSchedulerEnv(t)

	path := filepath.Join(t.TempDir(), "fieldops.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"http_port: 7070\n"+
			"sqlite_dsn: file:/var/lib/fieldops.db\n"+
			"shutdown_timeout: 15s\n"+
			"log_level: warn\n",
	), 0o600))
	t.Setenv("FIELDOPS_CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.HTTPPort)
	assert.Equal(t, "file:/var/lib/fieldops.db", cfg.SQLiteDSN)
	assert.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
}

func TestLoadEnvironmentWinsOverFile(t *testing.T) {
	clearSchedulerEnv(t)

	path := filepath.Join(t.TempDir(), "fieldops.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http_port: 7070\n"), 0o600))
	t.Setenv("FIELDOPS_CONFIG_FILE", path)
	t.Setenv("FIELDOPS_HTTP_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTPPort)
}

func TestLoadMissingConfigFile(t *testing.T) {
	clearSchedulerEnv(t)
	t.Setenv("FIELDOPS_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestLoadRejectsInvalidFileValues(t *testing.T) {
	clearSchedulerEnv(t)

	path := filepath.Join(t.TempDir(), "fieldops.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http_port: -1\n"), 0o600))
	t.Setenv("FIELDOPS_CONFIG_FILE", path)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http_port")
}
