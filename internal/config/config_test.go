package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storeConfig "github.com/iurnickita/aquamanager/internal/store/config"
)

func TestGetConfigDefaults(t *testing.T) {
	cfg := GetConfig()

	assert.Equal(t, "localhost:8080", cfg.Handler.ServerAddr)
	assert.Equal(t, 5*time.Second, cfg.Handler.ShutdownTimeout)
	assert.Equal(t, "info", cfg.Logger.LogLevel)
	assert.Equal(t, storeConfig.BackendFile, cfg.Store.Backend)
	assert.Equal(t, time.Hour, cfg.Service.DigestInterval)
	assert.Empty(t, cfg.Auth.Secret)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aqua.yaml")
	yaml := []byte(`
handler:
  addr: ":9090"
  assistant_rate: 5
store:
  backend: memory
service:
  assistant_timeout: 3s
`)
	require.NoError(t, os.WriteFile(path, yaml, 0o600))

	t.Setenv("AQUA_LOGGER_LEVEL", "debug")
	t.Setenv("AQUA_AUTH_SECRET", "s3cret")
	t.Setenv("GEMINI_API_KEY", "key-from-gemini-env")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Handler.ServerAddr)
	assert.Equal(t, 5, cfg.Handler.AssistantRate)
	assert.Equal(t, storeConfig.BackendMemory, cfg.Store.Backend)
	assert.Equal(t, 3*time.Second, cfg.Service.AssistantTimeout)
	assert.Equal(t, "debug", cfg.Logger.LogLevel)
	assert.Equal(t, "s3cret", cfg.Auth.Secret)
	assert.Equal(t, "key-from-gemini-env", cfg.Service.AssistantKey)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
