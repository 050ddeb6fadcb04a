package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(viper.New(), dir)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Build.Mode)
	assert.Equal(t, "http://localhost:5000/api", cfg.API.DefaultURL)
	assert.Empty(t, cfg.Deploy.Origin)
	assert.Equal(t, "/config.json", cfg.Deploy.ManifestPath)
	assert.Equal(t, 30*time.Second, cfg.Gateway.Timeout)
	assert.False(t, cfg.Gateway.StrictFingerprint)
	assert.Equal(t, BackendTOML, cfg.Storage.Backend)
	assert.Equal(t, dir, cfg.Storage.Path)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[build]
mode = "production"

[deploy]
origin = "https://school.example.com"

[gateway]
timeout = "5s"
strict_fingerprint = true

[storage]
backend = "file"
path = "state"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o600))

	cfg, err := Load(viper.New(), dir)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Build.Mode)
	assert.Equal(t, "https://school.example.com", cfg.Deploy.Origin)
	assert.Equal(t, 5*time.Second, cfg.Gateway.Timeout)
	assert.True(t, cfg.Gateway.StrictFingerprint)
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, filepath.Join(dir, "state"), cfg.Storage.Path)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[log]\nlevel = \"info\"\n"), 0o600))
	t.Setenv("SGA_LOG_LEVEL", "debug")
	t.Setenv("SGA_API_DEFAULT_URL", "https://api.example.com/api")

	cfg, err := Load(viper.New(), dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "https://api.example.com/api", cfg.API.DefaultURL)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "mode", key: "SGA_BUILD_MODE", val: "staging"},
		{name: "backend", key: "SGA_STORAGE_BACKEND", val: "s3"},
		{name: "level", key: "SGA_LOG_LEVEL", val: "loud"},
		{name: "default url", key: "SGA_API_DEFAULT_URL", val: "not a url"},
		{name: "manifest path", key: "SGA_DEPLOY_MANIFEST_PATH", val: "config.json"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.val)

			_, err := Load(viper.New(), t.TempDir())
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid config")
		})
	}
}

func TestLoadRejectsBrokenConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[build\n"), 0o600))

	_, err := Load(viper.New(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestLoadDotEnvSkipsMissingFilesAndKeepsExistingVariables(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("SGA_DOTENV_PROBE=from-file\nSGA_DOTENV_KEEP=from-file\n"), 0o600))
	t.Setenv("SGA_DOTENV_KEEP", "from-env")
	t.Setenv("SGA_DOTENV_PROBE", "")
	require.NoError(t, os.Unsetenv("SGA_DOTENV_PROBE"))

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), path))

	assert.Equal(t, "from-file", os.Getenv("SGA_DOTENV_PROBE"))
	assert.Equal(t, "from-env", os.Getenv("SGA_DOTENV_KEEP"))
}
