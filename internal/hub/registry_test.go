package hub

import (
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmachado/fleetline/internal/domain"
)

func TestRegistry_RegisterIndexesConnection(t *testing.T) {
	registry := NewRegistry(clockwork.NewRealClock())

	conn := registry.Register("drivers/7", "user-7", newFakeTransport())

	require.NotEmpty(t, conn.ID())
	assert.Equal(t, "drivers/7", conn.Channel())
	assert.Equal(t, domain.Identity("user-7"), conn.Identity())

	snapshot := registry.ConnectionsOf("drivers/7")
	require.Len(t, snapshot, 1)
	assert.Equal(t, conn.ID(), snapshot[0].ID())

	indexed, ok := registry.Lookup("user-7", "drivers/7")
	require.True(t, ok)
	assert.Equal(t, conn.ID(), indexed.ID())
}

func TestRegistry_AnonymousConnectionSkipsUserIndex(t *testing.T) {
	registry := NewRegistry(clockwork.NewRealClock())

	registry.Register("dashboard", domain.Anonymous, newFakeTransport())

	stats := registry.Stats()
	assert.Equal(t, 1, stats.TotalConnections)
	assert.Equal(t, 0, stats.ActiveUsers)
}

func TestRegistry_UnregisterRemovesEveryIndex(t *testing.T) {
	registry := NewRegistry(clockwork.NewRealClock())
	conn := registry.Register("drivers/7", "user-7", newFakeTransport())

	registry.Unregister(conn.ID())

	assert.Empty(t, registry.ConnectionsOf("drivers/7"))
	assert.Empty(t, registry.Channels())
	_, ok := registry.Lookup("user-7", "drivers/7")
	assert.False(t, ok)

	// Second unregister is a no-op: the heartbeat monitor and the
	// multiplexer may race to clean up the same connection.
	assert.NotPanics(t, func() { registry.Unregister(conn.ID()) })
}

func TestRegistry_ChannelDisappearsWithLastConnection(t *testing.T) {
	registry := NewRegistry(clockwork.NewRealClock())
	c1 := registry.Register("vehicles/42", domain.Anonymous, newFakeTransport())
	c2 := registry.Register("vehicles/42", domain.Anonymous, newFakeTransport())

	registry.Unregister(c1.ID())
	assert.Equal(t, []string{"vehicles/42"}, registry.Channels())

	registry.Unregister(c2.ID())
	assert.Empty(t, registry.Channels())
	assert.Equal(t, 0, registry.Stats().Channels)
}

func TestRegistry_SnapshotIsIsolatedFromMutation(t *testing.T) {
	registry := NewRegistry(clockwork.NewRealClock())
	registry.Register("dashboard", domain.Anonymous, newFakeTransport())

	snapshot := registry.ConnectionsOf("dashboard")
	require.Len(t, snapshot, 1)

	// A register issued after the snapshot must not appear in it,
	// and must appear in the next one.
	registry.Register("dashboard", domain.Anonymous, newFakeTransport())
	assert.Len(t, snapshot, 1)
	assert.Len(t, registry.ConnectionsOf("dashboard"), 2)
}

func TestRegistry_ReconnectCreatesFreshConnection(t *testing.T) {
	registry := NewRegistry(clockwork.NewRealClock())

	first := registry.Register("drivers/7", "user-7", newFakeTransport())
	second := registry.Register("drivers/7", "user-7", newFakeTransport())

	assert.NotEqual(t, first.ID(), second.ID())

	// The user index points at the most recent connection.
	indexed, ok := registry.Lookup("user-7", "drivers/7")
	require.True(t, ok)
	assert.Equal(t, second.ID(), indexed.ID())
}

func TestRegistry_Stats(t *testing.T) {
	registry := NewRegistry(clockwork.NewRealClock())
	registry.Register("dashboard", domain.Anonymous, newFakeTransport())
	registry.Register("dashboard", "user-1", newFakeTransport())
	registry.Register("alerts", "user-2", newFakeTransport())

	stats := registry.Stats()
	assert.Equal(t, 3, stats.TotalConnections)
	assert.Equal(t, 2, stats.Channels)
	assert.Equal(t, 2, stats.ActiveUsers)
	assert.Equal(t, map[string]int{"dashboard": 2, "alerts": 1}, stats.ConnectionsPerChannel)
}
