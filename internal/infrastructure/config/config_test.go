package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "https://www.familysearch.org", cfg.Source.BaseURL)
	assert.Equal(t, 60*time.Second, cfg.Source.Timeout())
	assert.Equal(t, 4, cfg.Fetch.Ancestors)
	assert.Zero(t, cfg.Fetch.Descendants)
	assert.Equal(t, 200, cfg.Fetch.BatchSize)
	assert.Equal(t, 10*time.Minute, cfg.Cache.MemoryTTL())
	assert.Zero(t, cfg.Cache.TTL())
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestConfigDir(t *testing.T) {
	result := ConfigDir("/home/user/project")
	assert.Equal(t, "/home/user/project/.famgraph", result)
}

func TestConfigFilePath(t *testing.T) {
	result := ConfigFilePath("/home/user/project")
	assert.Equal(t, "/home/user/project/.famgraph/config.yaml", result)
}

func TestLoad_MissingDefaultFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir(), "")

	require.NoError(t, err)
	assert.Empty(t, cfg.File)
	assert.Equal(t, Default().Source, cfg.Source)
	assert.Equal(t, Default().Fetch, cfg.Fetch)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(t.TempDir(), filepath.Join(t.TempDir(), "nope.yaml"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(ConfigDir(base), 0755))
	content := `
source:
  timeout_seconds: 30
fetch:
  ancestors: 2
  spouses: true
cache:
  ttl_hours: 24
`
	require.NoError(t, os.WriteFile(ConfigFilePath(base), []byte(content), 0644))
	t.Setenv("FAMGRAPH_SOURCE_SESSION_ID", "abc123")
	t.Setenv("FAMGRAPH_FETCH_ANCESTORS", "7")

	cfg, err := Load(base, "")

	require.NoError(t, err)
	assert.Equal(t, ConfigFilePath(base), cfg.File)
	assert.Equal(t, 30*time.Second, cfg.Source.Timeout())
	assert.Equal(t, "abc123", cfg.Source.SessionID)
	assert.Equal(t, 7, cfg.Fetch.Ancestors, "environment wins over the file")
	assert.True(t, cfg.Fetch.Spouses)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL())
	assert.Equal(t, "https://www.familysearch.org", cfg.Source.BaseURL, "unset keys keep defaults")
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fetch:\n  batch_size: 500\nlog:\n  level: loud\n"), 0644))

	_, err := Load(t.TempDir(), path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch_size")
	assert.Contains(t, err.Error(), "loud")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{name: "empty base url", mutate: func(c *Config) { c.Source.BaseURL = "" }, errMsg: "base_url"},
		{name: "zero timeout", mutate: func(c *Config) { c.Source.TimeoutSeconds = 0 }, errMsg: "timeout_seconds"},
		{name: "negative generations", mutate: func(c *Config) { c.Fetch.Descendants = -1 }, errMsg: "generations"},
		{name: "no workers", mutate: func(c *Config) { c.Fetch.Workers = 0 }, errMsg: "workers"},
		{name: "cache without path", mutate: func(c *Config) { c.Cache.Path = "" }, errMsg: "cache.path"},
		{name: "disabled cache without path", mutate: func(c *Config) { c.Cache.Enabled = false; c.Cache.Path = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()

			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestWriteDefault(t *testing.T) {
	base := t.TempDir()

	path, err := WriteDefault(base)
	require.NoError(t, err)
	assert.Equal(t, ConfigFilePath(base), path)
	assert.True(t, Exists(base))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var written Config
	require.NoError(t, yaml.Unmarshal(data, &written))
	assert.Equal(t, Default().Fetch, written.Fetch)

	cfg, err := Load(base, "")
	require.NoError(t, err)
	assert.Equal(t, Default().Cache, cfg.Cache)

	_, err = WriteDefault(base)
	assert.Error(t, err, "an existing file is not overwritten")
}

func TestMarshal_MasksSessionID(t *testing.T) {
	cfg := Default()
	cfg.Source.SessionID = "secret-session"

	data, err := Marshal(cfg)

	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret-session")
	assert.Contains(t, string(data), "session_id:")
	assert.Equal(t, "secret-session", cfg.Source.SessionID, "the input is not modified")
}
