package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMergesDefaults(t *testing.T) {
	path := writeConfig(t, `
[server]
port = "9090"

[llm]
provider = "openai"
model = "gpt-4o-mini"

[cache]
catalog_ttl_seconds = 30
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 30*time.Second, cfg.Cache.CatalogTTL())
	// untouched sections keep their defaults
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, time.Minute, cfg.Cache.DownloadsTTL())
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	require.NotNil(t, cfg)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoadInvalidTOML(t *testing.T) {
	_, err := Load(writeConfig(t, "[server\nport = "))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("CLAUDE_API_KEY", "sk-ant-test")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/vault")
	t.Setenv("CATALOG_CACHE_TTL_SECONDS", "5")

	cfg := Default()
	cfg.ApplyEnv()

	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, "sk-ant-test", cfg.LLM.APIKey)
	assert.Equal(t, "sk_test_123", cfg.Billing.StripeSecretKey)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/vault", cfg.Store.DSN)
	assert.Equal(t, 5*time.Second, cfg.Cache.CatalogTTL())
}

func TestLLMAPIKeyPrefersGenericVariable(t *testing.T) {
	t.Setenv("LLM_API_KEY", "generic")
	t.Setenv("CLAUDE_API_KEY", "claude")

	cfg := Default()
	cfg.ApplyEnv()
	assert.Equal(t, "generic", cfg.LLM.APIKey)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Store.Driver = "mysql"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.LLM.Provider = "cohere"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Cache.Backend = "redis"
	assert.Error(t, cfg.Validate())
	cfg.Redis.URL = "redis://localhost:6379/0"
	assert.NoError(t, cfg.Validate())
}
