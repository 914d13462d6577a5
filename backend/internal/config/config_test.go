package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"penalty-kick/backend/internal/game"
	"penalty-kick/backend/internal/physics"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, time.Second, cfg.Server.CommandTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.PingInterval)
	assert.Equal(t, game.DefaultTPS, cfg.Game.TPS)
	assert.Equal(t, 50*time.Millisecond, cfg.Game.BroadcastInterval)
	assert.Equal(t, game.DefaultKeeperConfig(), cfg.Game.Keeper)
	assert.Equal(t, game.DefaultParameters(), cfg.Game.Defaults)
	assert.Equal(t, physics.DefaultConfig(), cfg.Physics)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Influx.Enabled)
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, physics.DefaultConfig(), cfg.Physics)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "penalty.yaml")
	content := `
server:
  addr: ":9090"
  command_timeout: 250ms
  ping_interval: 5s
game:
  tps: 30
  broadcast_interval: 100ms
  defaults:
    planet: moon
physics:
  live_friction: 0.5
  predict_samples: 80
influx:
  enabled: true
  url: http://influx:8086
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 250*time.Millisecond, cfg.Server.CommandTimeout)
	assert.Equal(t, 5*time.Second, cfg.Server.PingInterval)
	assert.Equal(t, 30, cfg.Game.TPS)
	assert.Equal(t, 100*time.Millisecond, cfg.Game.BroadcastInterval)
	assert.Equal(t, "moon", cfg.Game.Defaults.Planet)
	assert.Equal(t, 25.0, cfg.Game.Defaults.Speed, "незаданные ключи берутся из значений по умолчанию")
	assert.Equal(t, 0.5, cfg.Physics.LiveFriction)
	assert.Equal(t, 2.5, cfg.Physics.PredictFriction)
	assert.Equal(t, 80, cfg.Physics.PredictSamples)
	assert.True(t, cfg.Influx.Enabled)
	assert.Equal(t, "http://influx:8086", cfg.Influx.URL)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("PENALTY_SERVER_ADDR", ":7070")
	t.Setenv("PENALTY_GAME_TPS", "120")
	t.Setenv("PENALTY_PHYSICS_PREDICT_FRICTION", "3")
	t.Setenv("PENALTY_LOG_FORMAT", "json")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, 120, cfg.Game.TPS)
	assert.Equal(t, 3.0, cfg.Physics.PredictFriction)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "tps", env: map[string]string{"PENALTY_GAME_TPS": "0"}},
		{name: "radius", env: map[string]string{"PENALTY_PHYSICS_BALL_RADIUS": "-1"}},
		{name: "mass", env: map[string]string{"PENALTY_PHYSICS_MASS": "0"}},
		{name: "ping", env: map[string]string{"PENALTY_SERVER_PING_INTERVAL": "0s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoad_BrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
