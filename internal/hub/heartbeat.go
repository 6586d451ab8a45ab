package hub

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/tmachado/fleetline/internal/domain"
	"github.com/tmachado/fleetline/internal/metrics"
)

// Monitor periodically probes every open connection and evicts the ones
// whose peer has stopped responding. A send to a half-open socket
// surfaces the error much faster than waiting for an OS-level timeout.
type Monitor struct {
	registry *Registry
	clock    clockwork.Clock
	interval time.Duration
}

func NewMonitor(registry *Registry, clock clockwork.Clock, interval time.Duration) *Monitor {
	return &Monitor{registry: registry, clock: clock, interval: interval}
}

// Run starts the sweep loop. It blocks until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := m.clock.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			m.sweep()
		}
	}
}

// sweep probes every registered connection once. Failures are isolated
// per connection and accumulated; eviction happens after the pass.
func (m *Monitor) sweep() {
	now := m.clock.Now()
	ping := domain.NewPing(now)

	var evict []*Conn
	for _, conn := range m.registry.All() {
		if err := conn.SendJSON(ping); err != nil {
			evict = append(evict, conn)
			continue
		}
		conn.markPing(now)
	}

	for _, conn := range evict {
		metrics.HubHeartbeatEvictions.Inc()
		slog.Info("Evicting unresponsive connection",
			"connection_id", conn.ID(),
			"channel", conn.Channel(),
			"last_ping", conn.LastPing(),
		)
		m.registry.Unregister(conn.ID())
		_ = conn.Close()
	}
}
