package hub

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/tmachado/fleetline/internal/domain"
)

const writeDeadline = 5 * time.Second

// Transport is the duplex frame channel underlying a connection.
// *websocket.Conn satisfies it; tests substitute fakes.
type Transport interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// textMessage mirrors websocket.TextMessage without importing gorilla here.
const textMessage = 1

// Conn is one live connection registered under exactly one channel.
// The transport handle is touched only by the connection's own receive
// loop and by broadcast/heartbeat sends; writes are serialized by a
// per-connection mutex so a heartbeat ping racing a broadcast cannot
// interleave frames.
type Conn struct {
	id          string
	channel     string
	identity    domain.Identity
	connectedAt time.Time
	transport   Transport
	clock       clockwork.Clock

	writeMu sync.Mutex

	pingMu   sync.Mutex
	lastPing time.Time
}

func newConn(channel string, identity domain.Identity, transport Transport, clock clockwork.Clock) *Conn {
	now := clock.Now()
	return &Conn{
		id:          fmt.Sprintf("%s:%s:%d", channel, identity, now.UnixNano()),
		channel:     channel,
		identity:    identity,
		connectedAt: now,
		lastPing:    now,
		transport:   transport,
		clock:       clock,
	}
}

// ID returns the generated connection identifier.
func (c *Conn) ID() string { return c.id }

// Channel returns the channel the connection is registered under.
func (c *Conn) Channel() string { return c.channel }

// Identity returns the caller identity, or domain.Anonymous.
func (c *Conn) Identity() domain.Identity { return c.identity }

// ConnectedAt returns the registration timestamp.
func (c *Conn) ConnectedAt() time.Time { return c.connectedAt }

// LastPing returns the timestamp of the last successful liveness probe.
func (c *Conn) LastPing() time.Time {
	c.pingMu.Lock()
	defer c.pingMu.Unlock()
	return c.lastPing
}

func (c *Conn) markPing(now time.Time) {
	c.pingMu.Lock()
	c.lastPing = now
	c.pingMu.Unlock()
}

// Send writes one text frame under the per-connection write mutex.
func (c *Conn) Send(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = c.transport.SetWriteDeadline(c.clock.Now().Add(writeDeadline))
	return c.transport.WriteMessage(textMessage, data)
}

// SendJSON marshals v and sends it as one text frame.
func (c *Conn) SendJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal outbound message: %w", err)
	}
	return c.Send(data)
}

// Close releases the underlying transport handle.
func (c *Conn) Close() error {
	return c.transport.Close()
}
