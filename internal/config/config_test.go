package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[gameplay]
wave_delay = "8s"
respawn_retry = "2500ms"

[logging]
format = "json"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8*time.Second, cfg.Gameplay.WaveDelay)
	assert.Equal(t, 2500*time.Millisecond, cfg.Gameplay.RespawnRetry)
	assert.Equal(t, "json", cfg.Logging.Format)
	// untouched values keep their defaults
	assert.Equal(t, 1500*time.Millisecond, cfg.Gameplay.PlayerCooldown)
	assert.Equal(t, 500*time.Millisecond, cfg.Simulation.AIInterval)
	assert.NotZero(t, cfg.Server.StartTime)
}

func TestLoadRejectsBadCadence(t *testing.T) {
	path := writeConfig(t, `
[simulation]
tick_rate = "1s"
ai_interval = "500ms"
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "ai_interval")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.ErrorContains(t, err, "read config")
}
