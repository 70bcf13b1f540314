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
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, time.Second, cfg.Server.ClockTick)
	assert.Equal(t, 30*time.Second, cfg.Game.TurnTimeLimit)
	assert.Zero(t, cfg.Game.TurnActionLimit)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  address: ":9999"
game:
  turn_time_limit: 45s
  turn_action_limit: 1
database:
  enabled: true
  url: postgres://localhost/bornes
logging:
  level: debug
  format: json
`)
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Address)
	assert.Equal(t, 45*time.Second, cfg.Game.TurnTimeLimit)
	assert.Equal(t, 1, cfg.Game.TurnActionLimit)
	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, "postgres://localhost/bornes", cfg.Database.URL)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}
