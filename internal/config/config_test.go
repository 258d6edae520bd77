package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polyfield-edm/internal/calibration"
	"polyfield-edm/internal/config"
)

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "polyfield.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
demoMode: true
defaultCircleType: DISCUS
serialBaud: 19200
dbPath: /tmp/cal.db
logFormat: json
`), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.DemoMode)
	assert.Equal(t, "DISCUS", cfg.DefaultCircleType)
	assert.Equal(t, 19200, cfg.SerialBaud)
	assert.Equal(t, "/tmp/cal.db", cfg.DBPath)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, calibration.Discus, cfg.CircleType())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("POLYFIELD_DEMO_MODE", "1")
	t.Setenv("POLYFIELD_DB_PATH", "/tmp/override.db")
	t.Setenv("POLYFIELD_LOG_FORMAT", "json")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.True(t, cfg.DemoMode)
	assert.Equal(t, "/tmp/override.db", cfg.DBPath)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestConfig_CircleTypeFallsBackToShot(t *testing.T) {
	cfg := config.Default()
	cfg.DefaultCircleType = "NOT_A_CIRCLE"
	assert.Equal(t, calibration.Shot, cfg.CircleType())
}
