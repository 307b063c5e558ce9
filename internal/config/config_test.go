package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "quax", cfg.Relay.DefaultProvider)
	assert.Equal(t, int64(20*1024*1024), cfg.Relay.MaxBodyBytes)
	assert.Equal(t, "bucket", cfg.Storage.Provider)
	assert.Equal(t, 10*time.Minute, cfg.Relay.ScratchSweepInterval)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, `
server:
  port: 8081
  env: development
relay:
  default_provider: tmpfiles
  max_dimension: 1600
  scratch_max_age: 30m
providers:
  - name: ikram
    stage: false
    timeout: 5s
  - name: mirror
    endpoint: http://mirror.local/upload
    response: tmpfiles
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host, "defaults survive partial files")
	assert.Equal(t, "tmpfiles", cfg.Relay.DefaultProvider)
	assert.Equal(t, 1600, cfg.Relay.MaxDimension)
	assert.Equal(t, 30*time.Minute, cfg.Relay.ScratchMaxAge)

	require.Len(t, cfg.Providers, 2)
	require.NotNil(t, cfg.Providers[0].Stage)
	assert.False(t, *cfg.Providers[0].Stage)
	assert.Equal(t, 5*time.Second, cfg.Providers[0].Timeout)
	assert.Nil(t, cfg.Providers[1].Stage)
	assert.Equal(t, "http://mirror.local/upload", cfg.Providers[1].Endpoint)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeFile(t, "server:\n  port: 8081\nrelay:\n  default_provider: ikram\n")

	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("RELAY_DEFAULT_PROVIDER", "tmpfiles")
	t.Setenv("RELAY_MAX_BODY_BYTES", "1024")
	t.Setenv("STORAGE_TYPE", "s3")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "tmpfiles", cfg.Relay.DefaultProvider)
	assert.Equal(t, int64(1024), cfg.Relay.MaxBodyBytes)
	assert.Equal(t, "s3", cfg.Storage.Type)
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "eighty")
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_BrokenYAML(t *testing.T) {
	path := writeFile(t, "server: [port")
	_, err := Load(path)
	assert.Error(t, err)
}
