// Package push produces outbound broadcasts: periodic metric snapshots
// and imperative event-driven pushes. It knows nothing about WebSocket
// mechanics; delivery goes through the hub and the relay.
package push

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/tmachado/fleetline/internal/hub"
	"github.com/tmachado/fleetline/internal/relay"
)

// MessagePublisher publishes one message to a channel: locally, and
// across the relay when one is configured.
type MessagePublisher interface {
	Publish(ctx context.Context, channel string, message any) error
}

// Publisher fans one logical broadcast event out: local delivery to this
// process's subscribers first, then a relay publish for the benefit of
// the other processes' subscribers. A nil relay means single-process mode.
type Publisher struct {
	local *hub.Broadcaster
	relay *relay.Relay
}

func NewPublisher(local *hub.Broadcaster, relay *relay.Relay) *Publisher {
	return &Publisher{local: local, relay: relay}
}

// Publish marshals message once and delivers it to channel. Relay
// errors are logged and swallowed: local delivery must not be affected
// by bus unavailability.
func (p *Publisher) Publish(ctx context.Context, channel string, message any) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return err
	}

	p.local.BroadcastToChannel(channel, payload)

	if p.relay != nil {
		if err := p.relay.Publish(ctx, channel, payload); err != nil {
			slog.Warn("Relay publish failed, delivered locally only",
				"channel", channel,
				"error", err,
			)
		}
	}
	return nil
}
