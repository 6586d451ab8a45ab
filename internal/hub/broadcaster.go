package hub

import (
	"log/slog"

	"github.com/tmachado/fleetline/internal/domain"
	"github.com/tmachado/fleetline/internal/metrics"
)

// Broadcaster delivers messages to locally registered connections.
// Delivery is best effort: one failing peer never blocks the rest of a
// pass, and failed connections are evicted after the pass completes.
type Broadcaster struct {
	registry *Registry
}

func NewBroadcaster(registry *Registry) *Broadcaster {
	return &Broadcaster{registry: registry}
}

// BroadcastToChannel attempts one delivery of payload to every
// connection registered under channel at snapshot time.
func (b *Broadcaster) BroadcastToChannel(channel string, payload []byte) {
	var failed []*Conn
	for _, conn := range b.registry.ConnectionsOf(channel) {
		if err := conn.Send(payload); err != nil {
			failed = append(failed, conn)
			continue
		}
		metrics.HubMessagesSent.Inc()
	}
	b.evict(failed)
}

// SendToUser delivers payload to the connection identity holds on
// channel. A user who is not connected there is a silent no-op.
func (b *Broadcaster) SendToUser(identity domain.Identity, channel string, payload []byte) {
	conn, ok := b.registry.Lookup(identity, channel)
	if !ok {
		return
	}
	if err := conn.Send(payload); err != nil {
		b.evict([]*Conn{conn})
		return
	}
	metrics.HubMessagesSent.Inc()
}

// BroadcastToAll delivers payload to every known channel except exclude.
// Used sparingly for cross-cutting system announcements.
func (b *Broadcaster) BroadcastToAll(payload []byte, exclude string) {
	for _, channel := range b.registry.Channels() {
		if channel == exclude {
			continue
		}
		b.BroadcastToChannel(channel, payload)
	}
}

func (b *Broadcaster) evict(failed []*Conn) {
	for _, conn := range failed {
		metrics.HubSendFailures.Inc()
		slog.Warn("Evicting connection after failed send",
			"connection_id", conn.ID(),
			"channel", conn.Channel(),
		)
		b.registry.Unregister(conn.ID())
		_ = conn.Close()
	}
}
