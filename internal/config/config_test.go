package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/fleetline")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, 30*time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, 5*time.Second, cfg.SnapshotInterval)
	assert.Equal(t, 5*time.Minute, cfg.IdleTimeout)
	assert.Equal(t, int64(10000), cfg.MaxConnections)
	assert.Equal(t, 50, cfg.MaxConnectionsPerIP)
	assert.Empty(t, cfg.RedisURL)
	assert.Empty(t, cfg.JWTSecret)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/fleetline")
	t.Setenv("HEARTBEAT_INTERVAL", "10s")
	t.Setenv("SNAPSHOT_INTERVAL", "1s")
	t.Setenv("MAX_CONNECTIONS", "100")
	t.Setenv("CONNECTION_RATE", "2.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, time.Second, cfg.SnapshotInterval)
	assert.Equal(t, int64(100), cfg.MaxConnections)
	assert.Equal(t, 2.5, cfg.ConnectionRate)
}

func TestLoad_RejectsBadDuration(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/fleetline")
	t.Setenv("HEARTBEAT_INTERVAL", "banana")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HEARTBEAT_INTERVAL")
}

func TestLoad_RejectsNonPositiveInterval(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/fleetline")
	t.Setenv("SNAPSHOT_INTERVAL", "-5s")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SNAPSHOT_INTERVAL")
}
