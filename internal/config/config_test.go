package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	t.Setenv("TEST_API_KEY", "secreto")

	content := `
server:
  port: 9000
  api_key: ${TEST_API_KEY}
database:
  path: ` + filepath.Join(dir, "data", "test.db") + `
grid:
  open_hour: 8
  close_hour: 22
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "secreto", cfg.Server.APIKey, "env placeholder expanded")
	assert.Equal(t, 8, cfg.Grid.OpenHour)
	assert.Equal(t, 22, cfg.Grid.CloseHour)

	// Defaults fill the rest
	assert.Equal(t, 20, cfg.Server.RateLimitRPS)
	assert.Equal(t, 8090, cfg.Monitoring.HealthCheckPort)
	assert.Equal(t, 30, cfg.Booking.MaxAdvanceDays)

	// Data directory created for sqlite
	_, err = os.Stat(filepath.Join(dir, "data"))
	assert.NoError(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
