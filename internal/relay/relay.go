// Package relay fans broadcast messages out across server processes via
// a shared pub/sub bus. Each process holds a disjoint subset of the
// connections; the relay makes every event reach every subscriber
// regardless of which process it is attached to.
package relay

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"github.com/tmachado/fleetline/internal/metrics"
)

// LocalBroadcaster is the only capability the subscriber loop gets.
// Received bus messages are delivered locally and never republished,
// which is what prevents a publish loop across processes.
type LocalBroadcaster interface {
	BroadcastToChannel(channel string, payload []byte)
}

// Relay publishes outbound messages to the bus and feeds received bus
// messages back into the local broadcaster.
type Relay struct {
	bus     Bus
	local   LocalBroadcaster
	breaker *gobreaker.CircuitBreaker
}

func New(bus Bus, local LocalBroadcaster) *Relay {
	settings := gobreaker.Settings{
		Name:    "relay-publish",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(_ string, _ gobreaker.State, to gobreaker.State) {
			metrics.RelayCircuitState.Set(float64(to))
			slog.Warn("Relay publish circuit state changed", "state", to.String())
		},
	}
	return &Relay{
		bus:     bus,
		local:   local,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Publish sends payload to the bus under the topic derived from
// channel. It is called in addition to local delivery, never instead of
// it; callers log and swallow the returned error so bus unavailability
// cannot affect local delivery.
func (r *Relay) Publish(ctx context.Context, channel string, payload []byte) error {
	_, err := r.breaker.Execute(func() (any, error) {
		return nil, r.bus.Publish(ctx, Topic(channel), payload)
	})
	if err != nil {
		metrics.RelayPublishes.WithLabelValues("error").Inc()
		return fmt.Errorf("relay publish to %q: %w", Topic(channel), err)
	}
	metrics.RelayPublishes.WithLabelValues("ok").Inc()
	return nil
}

// Run subscribes to the wildcard pattern covering every relay topic and
// delivers received messages locally. It blocks until ctx is cancelled
// or the subscription closes. A failed subscribe leaves the hub in
// single-process mode: degraded but correct for one instance.
func (r *Relay) Run(ctx context.Context) error {
	sub, err := r.bus.PSubscribe(ctx, wildcardPattern)
	if err != nil {
		return fmt.Errorf("relay subscribe %q: %w", wildcardPattern, err)
	}
	defer func() { _ = sub.Close() }()

	slog.Info("Relay subscriber started", "pattern", wildcardPattern)

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-sub.Messages():
			if !ok {
				return nil
			}
			channel, ok := ChannelFromTopic(msg.Topic)
			if !ok {
				slog.Warn("Dropping bus message with foreign topic", "topic", msg.Topic)
				continue
			}
			metrics.RelayMessagesReceived.Inc()
			r.local.BroadcastToChannel(channel, msg.Payload)
		}
	}
}
