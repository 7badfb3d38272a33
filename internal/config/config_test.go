package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "csv", cfg.Data.Source)
	assert.Equal(t, ".", cfg.Data.Dir)
	assert.Equal(t, "orders.csv", cfg.Data.OrdersFile)
	assert.Equal(t, "segments.csv", cfg.Data.SegmentsFile)
	assert.Equal(t, "impact.csv", cfg.Data.ImpactFile)
	assert.Equal(t, "policy_log.csv", cfg.Data.PolicyFile)
	assert.Equal(t, "incidents.csv", cfg.Data.IncidentsFile)
	assert.Equal(t, int64(1), cfg.Data.DemoSeed)
	assert.Equal(t, 90, cfg.Window.Days)
	assert.Equal(t, 4, cfg.Window.RollingWeeks)
	assert.Equal(t, 7, cfg.Window.PolicyDays)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.InDelta(t, 20.0, cfg.Server.RateLimitRPS, 0.001)
	assert.Equal(t, 40, cfg.Server.RateBurst)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
data:
  source: sqlite
  sqlite_path: /var/lib/opsboard/tables.db
window:
  days: 30
log:
  level: debug
  format: console
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Data.Source)
	assert.Equal(t, "/var/lib/opsboard/tables.db", cfg.Data.SQLitePath)
	assert.Equal(t, 30, cfg.Window.Days)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Defaults still apply for unset values
	assert.Equal(t, 4, cfg.Window.RollingWeeks)
	assert.Equal(t, "orders.csv", cfg.Data.OrdersFile)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
window:
  days: 30
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))
	t.Setenv("OPSBOARD_WINDOW_DAYS", "60")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.Window.Days)
}

func TestInitLoggerBadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "shout", Format: "json"})
	assert.Error(t, err)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	assert.NoError(t, err)
}
