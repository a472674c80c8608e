package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 24*time.Hour, cfg.Redis.GameTTL)
	assert.Equal(t, "./master.db", cfg.SQLite.Path)
	assert.Equal(t, 72*time.Hour, cfg.Auth.TokenTTL)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("REDIS_CONNSTRING", "redis:6380")
	t.Setenv("REDIS_GAME_TTL", "30m")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "redis:6380", cfg.Redis.Addr)
	assert.Equal(t, 30*time.Minute, cfg.Redis.GameTTL)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `
log-level: warn
http:
  addr: ":9090"
sqlite:
  path: /tmp/users.db
auth:
  jwt-secret: from-file
telemetry:
  enabled: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "/tmp/users.db", cfg.SQLite.Path)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	// untouched sections keep their defaults
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestMustLoad_PanicsOnMissingFile(t *testing.T) {
	assert.Panics(t, func() {
		MustLoad(filepath.Join(t.TempDir(), "missing.yml"))
	})
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	if prev, ok := os.LookupEnv("JWT_SECRET"); ok {
		require.NoError(t, os.Unsetenv("JWT_SECRET"))
		t.Cleanup(func() { os.Setenv("JWT_SECRET", prev) })
	}

	_, err := Load("")
	assert.Error(t, err, "missing secret")

	t.Setenv("JWT_SECRET", "")
	_, err = Load("")
	assert.Error(t, err, "empty secret")
}
