package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "auto", cfg.Pipeline.CoordinateSystem)
	assert.Equal(t, "N", cfg.Pipeline.UTMHemisphere)
	assert.Equal(t, 2, cfg.Pipeline.NClusters)
	assert.False(t, cfg.Pipeline.AllowDefaultUTMZone)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Empty(t, cfg.Cache.Path)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	contents := `
pipeline:
  coordinate_system: utm
  utm_zone: 44
  n_clusters: 3
cache:
  path: results.db
server:
  port: 9000
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(contents), 0o644))
	chdir(t, dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "utm", cfg.Pipeline.CoordinateSystem)
	assert.Equal(t, 44, cfg.Pipeline.UTMZone)
	assert.Equal(t, 3, cfg.Pipeline.NClusters)
	assert.Equal(t, "results.db", cfg.Cache.Path)
	assert.Equal(t, 9000, cfg.Server.Port)
	// Unset keys keep their defaults.
	assert.Equal(t, "N", cfg.Pipeline.UTMHemisphere)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("WATERBRAKES_PIPELINE_UTM_ZONE", "45")
	t.Setenv("WATERBRAKES_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 45, cfg.Pipeline.UTMZone)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	err := InitLogger(LogConfig{Level: "shouting", Format: "json"})
	assert.Error(t, err)
}
