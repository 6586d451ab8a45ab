package hub

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/tmachado/fleetline/internal/domain"
	"github.com/tmachado/fleetline/internal/logging"
)

// Mux is the entry point for establishing a connection on a named
// channel and running its receive loop.
type Mux struct {
	registry    *Registry
	clock       clockwork.Clock
	idleTimeout time.Duration
}

func NewMux(registry *Registry, clock clockwork.Clock, idleTimeout time.Duration) *Mux {
	return &Mux{registry: registry, clock: clock, idleTimeout: idleTimeout}
}

// Accept registers transport under channel, sends the connected
// acknowledgement, and runs the receive loop until disconnect. The
// connection is unregistered and the transport released on every exit
// path; this is the hub's resource-safety contract.
func (m *Mux) Accept(transport Transport, channel string, identity domain.Identity) string {
	conn := m.registry.Register(channel, identity, transport)
	defer func() {
		m.registry.Unregister(conn.ID())
		_ = conn.Close()
	}()

	logger := logging.WithConnection(conn.ID())

	ack := domain.NewConnected(conn.ID(), channel, m.clock.Now())
	if err := conn.SendJSON(ack); err != nil {
		logger.Warn("Failed to send connected ack", "error", err)
		return conn.ID()
	}

	logger.Info("Connection accepted", "channel", channel, "identity", identity.String())

	m.receiveLoop(conn)

	logger.Info("Connection closed", "channel", channel)
	return conn.ID()
}

// receiveLoop blocks on inbound client frames with a bounded idle
// timeout. On timeout it sends a keepalive rather than closing, so
// idle-but-healthy connections are not mistaken for dead ones.
func (m *Mux) receiveLoop(conn *Conn) {
	frames := make(chan []byte)
	stop := make(chan struct{})
	defer close(stop)

	go func() {
		defer close(frames)
		for {
			_, data, err := conn.transport.ReadMessage()
			if err != nil {
				return
			}
			select {
			case frames <- data:
			case <-stop:
				return
			}
		}
	}()

	idle := m.clock.NewTimer(m.idleTimeout)
	defer idle.Stop()

	for {
		select {
		case data, ok := <-frames:
			if !ok {
				return
			}
			idle.Reset(m.idleTimeout)
			if !m.handleFrame(conn, data) {
				return
			}
		case <-idle.Chan():
			if err := conn.SendJSON(domain.NewKeepalive(m.clock.Now())); err != nil {
				return
			}
			idle.Reset(m.idleTimeout)
		}
	}
}

// handleFrame processes one inbound frame. It reports false when the
// connection should be torn down.
func (m *Mux) handleFrame(conn *Conn, data []byte) bool {
	var frame domain.InboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		slog.Warn("Malformed inbound frame, closing connection",
			"connection_id", conn.ID(),
			"error", err,
		)
		return false
	}

	switch frame.Type {
	case domain.TypePong:
		conn.markPing(m.clock.Now())
	case domain.TypeEcho:
		if err := conn.SendJSON(domain.NewEcho(frame.Data, m.clock.Now())); err != nil {
			return false
		}
	default:
		// Channel-specific client signaling; not interpreted and never rebroadcast.
		slog.Debug("Ignoring client frame", "connection_id", conn.ID(), "type", frame.Type)
	}
	return true
}
