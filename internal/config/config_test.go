package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NissesSenap/gridplane/internal/plane"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 256, cfg.Server.MaxSessions)
	assert.Equal(t, 50.0, cfg.RateLimits.EventsPerSecond)
	assert.Equal(t, 100, cfg.RateLimits.Burst)
	assert.Equal(t, 5, cfg.RateLimits.MaxConcurrent)
	assert.Contains(t, cfg.Storage.Path, filepath.Join("gridplane", "presets.db"))
	assert.Equal(t, plane.DefaultConfig(), cfg.Graph)
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("GRIDPLANE_CONFIG", filepath.Join(t.TempDir(), "nonexistent.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 500.0, cfg.Graph.Width)
}

func TestLoadConfig_FromFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	yamlContent := `
server:
  addr: "127.0.0.1:9000"
  max_sessions: 10
storage:
  path: "/var/lib/gridplane/presets.db"
rate_limits:
  events_per_second: 5.0
  burst: 8
graph:
  title: "Lines"
  grid_type: "oneQuadrant"
  point_rules:
    maximum_points: 4
`

	err := os.WriteFile(configPath, []byte(yamlContent), 0644)
	require.NoError(t, err)

	t.Setenv("GRIDPLANE_CONFIG", configPath)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 10, cfg.Server.MaxSessions)
	assert.Equal(t, "/var/lib/gridplane/presets.db", cfg.Storage.Path)
	assert.Equal(t, 5.0, cfg.RateLimits.EventsPerSecond)
	assert.Equal(t, 8, cfg.RateLimits.Burst)
	assert.Equal(t, "Lines", cfg.Graph.Title)
	assert.Equal(t, plane.GridOneQuadrant, cfg.Graph.GridType)
	assert.Equal(t, 4, cfg.Graph.PointRules.MaximumPoints)

	// the file merges onto the graph defaults field by field
	assert.Equal(t, 1, cfg.Graph.PointRules.MinimumPoints)
	assert.Equal(t, 500.0, cfg.Graph.Width)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	yamlContent := `
server:
  addr: ":7000"
rate_limits:
  events_per_second: 10.0
  max_concurrent: 2
`

	err := os.WriteFile(configPath, []byte(yamlContent), 0644)
	require.NoError(t, err)

	t.Setenv("GRIDPLANE_CONFIG", configPath)
	t.Setenv("GRIDPLANE_ADDR", ":7500")
	t.Setenv("GRIDPLANE_EVENTS_PER_SECOND", "20.0")
	t.Setenv("GRIDPLANE_STORAGE_PATH", "/tmp/presets.db")

	cfg, err := Load()
	require.NoError(t, err)

	// Environment variable should override YAML
	assert.Equal(t, ":7500", cfg.Server.Addr)
	assert.Equal(t, 20.0, cfg.RateLimits.EventsPerSecond)
	assert.Equal(t, "/tmp/presets.db", cfg.Storage.Path)

	// Values not overridden by env should come from YAML
	assert.Equal(t, 2, cfg.RateLimits.MaxConcurrent)
}

func TestConfigPath_Default(t *testing.T) {
	t.Setenv("GRIDPLANE_CONFIG", "")

	path := ConfigPath()
	assert.Contains(t, path, filepath.Join(".config", "gridplane", "config.yaml"))
}

func TestConfigPath_CustomEnv(t *testing.T) {
	customPath := "/custom/path/config.yaml"
	t.Setenv("GRIDPLANE_CONFIG", customPath)

	assert.Equal(t, customPath, ConfigPath())
}

func TestConfigSave(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "dir", "config.yaml")
	t.Setenv("GRIDPLANE_CONFIG", configPath)

	cfg := DefaultConfig()
	cfg.Server.Addr = ":9999"
	cfg.Graph.Title = "Saved"

	require.NoError(t, cfg.Save())

	_, err := os.Stat(configPath)
	require.NoError(t, err)

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9999", loaded.Server.Addr)
	assert.Equal(t, "Saved", loaded.Graph.Title)
	assert.Equal(t, cfg.Graph, loaded.Graph)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")

	invalidYAML := `
this is not: valid: yaml: content
  bad indentation
`

	require.NoError(t, os.WriteFile(configPath, []byte(invalidYAML), 0644))
	t.Setenv("GRIDPLANE_CONFIG", configPath)

	_, err := Load()
	require.Error(t, err)
}
