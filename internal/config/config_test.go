package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "ecotrack", cfg.Database.DBName)
	assert.Equal(t, "http://localhost:11434", cfg.Advisory.URL)
	assert.Equal(t, "llama3.1", cfg.Advisory.Model)
	assert.Equal(t, 60, cfg.Advisory.TimeoutSeconds)
	assert.Equal(t, 10.0, cfg.Valuation.UnitPrice)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("ECOTRACK_SERVER_PORT", "9090")
	t.Setenv("ECOTRACK_DATABASE_HOST", "db.internal")
	t.Setenv("ECOTRACK_ADVISORY_MODEL", "qwen2")
	t.Setenv("ECOTRACK_AUTH_JWT_SECRET", "test-secret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "qwen2", cfg.Advisory.Model)
	assert.Equal(t, "test-secret", cfg.Auth.JWTSecret)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
env: production
server:
  port: 8443
valuation:
  unit_price: 12.5
log:
  output: both
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, 8443, cfg.Server.Port)
	assert.Equal(t, 12.5, cfg.Valuation.UnitPrice)
	assert.Equal(t, "both", cfg.Log.Output)
	// 未覆盖的键保留默认值
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestProductionDefaults(t *testing.T) {
	t.Setenv("ECOTRACK_ENV", "production")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.True(t, IsProduction(cfg))
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 200, cfg.Database.MaxOpenConns)
}

func TestIsProduction(t *testing.T) {
	assert.False(t, IsProduction(nil))
	assert.False(t, IsProduction(&Config{Env: "development"}))
	assert.True(t, IsProduction(&Config{Env: "production"}))
}
