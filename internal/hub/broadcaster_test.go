package hub

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmachado/fleetline/internal/domain"
)

func TestBroadcaster_DeliversToChannel(t *testing.T) {
	registry := NewRegistry(clockwork.NewRealClock())
	broadcaster := NewBroadcaster(registry)

	transport := newFakeTransport()
	registry.Register("alerts", domain.Anonymous, transport)

	payload := []byte(`{"type":"alert","severity":"critical"}`)
	broadcaster.BroadcastToChannel("alerts", payload)

	sent := transport.sent()
	require.Len(t, sent, 1)
	assert.JSONEq(t, string(payload), string(sent[0]))
}

func TestBroadcaster_FailedSendEvictsOnlyThatConnection(t *testing.T) {
	registry := NewRegistry(clockwork.NewRealClock())
	broadcaster := NewBroadcaster(registry)

	failing := newFakeTransport()
	failing.failWrites(errors.New("broken pipe"))
	registry.Register("dashboard", domain.Anonymous, failing)

	healthy := newFakeTransport()
	c2 := registry.Register("dashboard", domain.Anonymous, healthy)

	broadcaster.BroadcastToChannel("dashboard", []byte(`{"type":"dashboard_update"}`))

	require.Len(t, healthy.sent(), 1)

	remaining := registry.ConnectionsOf("dashboard")
	require.Len(t, remaining, 1)
	assert.Equal(t, c2.ID(), remaining[0].ID())
	assert.True(t, failing.isClosed())
}

func TestBroadcaster_SendToUser(t *testing.T) {
	registry := NewRegistry(clockwork.NewRealClock())
	broadcaster := NewBroadcaster(registry)

	transport := newFakeTransport()
	registry.Register("drivers/7", "user-7", transport)

	payload := []byte(`{"type":"dispatch_update"}`)
	broadcaster.SendToUser("user-7", "drivers/7", payload)

	sent := transport.sent()
	require.Len(t, sent, 1)
	assert.JSONEq(t, string(payload), string(sent[0]))
}

func TestBroadcaster_SendToAbsentUserIsSilentNoop(t *testing.T) {
	registry := NewRegistry(clockwork.NewRealClock())
	broadcaster := NewBroadcaster(registry)

	transport := newFakeTransport()
	registry.Register("drivers/7", "user-7", transport)

	assert.NotPanics(t, func() {
		broadcaster.SendToUser("user-8", "drivers/7", []byte(`{"type":"dispatch_update"}`))
	})
	assert.Empty(t, transport.sent())
}

func TestBroadcaster_SendToUserEvictsOnFailure(t *testing.T) {
	registry := NewRegistry(clockwork.NewRealClock())
	broadcaster := NewBroadcaster(registry)

	failing := newFakeTransport()
	failing.failWrites(errors.New("broken pipe"))
	registry.Register("drivers/7", "user-7", failing)

	broadcaster.SendToUser("user-7", "drivers/7", []byte(`{}`))

	_, ok := registry.Lookup("user-7", "drivers/7")
	assert.False(t, ok)
	assert.Empty(t, registry.ConnectionsOf("drivers/7"))
}

func TestBroadcaster_BroadcastToAllSkipsExcludedChannel(t *testing.T) {
	registry := NewRegistry(clockwork.NewRealClock())
	broadcaster := NewBroadcaster(registry)

	dashboard := newFakeTransport()
	registry.Register("dashboard", domain.Anonymous, dashboard)
	alerts := newFakeTransport()
	registry.Register("alerts", domain.Anonymous, alerts)

	broadcaster.BroadcastToAll([]byte(`{"type":"keepalive"}`), "alerts")

	assert.Len(t, dashboard.sent(), 1)
	assert.Empty(t, alerts.sent())
}

func TestBroadcaster_EveryLiveConnectionGetsExactlyOneAttempt(t *testing.T) {
	registry := NewRegistry(clockwork.NewRealClock())
	broadcaster := NewBroadcaster(registry)

	transports := make([]*fakeTransport, 5)
	for i := range transports {
		transports[i] = newFakeTransport()
		registry.Register("dashboard", domain.Anonymous, transports[i])
	}

	broadcaster.BroadcastToChannel("dashboard", mustMarshal(t, domain.NewKeepalive(clockwork.NewRealClock().Now())))

	for _, transport := range transports {
		assert.Len(t, transport.sent(), 1)
	}
}

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}
