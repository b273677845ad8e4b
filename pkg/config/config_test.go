package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no config file in reach

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000", cfg.Endpoint.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Endpoint.Timeout)
	assert.False(t, cfg.Endpoint.Retry.Enabled)
	assert.Equal(t, 3, cfg.Endpoint.Retry.MaxRetries)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "pgrest.yaml")
	content := `
endpoint:
  baseURL: https://db.example.com
  token: secret
  timeout: 10s
  retry:
    enabled: true
    maxRetries: 7
metrics:
  enabled: true
  addr: ":9200"
`
	require.NoError(t, os.WriteFile(cfgFile, []byte(content), 0o600))

	cfg, err := Load(cfgFile)
	require.NoError(t, err)

	assert.Equal(t, "https://db.example.com", cfg.Endpoint.BaseURL)
	assert.Equal(t, "secret", cfg.Endpoint.Token)
	assert.Equal(t, 10*time.Second, cfg.Endpoint.Timeout)
	assert.True(t, cfg.Endpoint.Retry.Enabled)
	assert.Equal(t, 7, cfg.Endpoint.Retry.MaxRetries)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, ":9200", cfg.Metrics.Addr)
}
