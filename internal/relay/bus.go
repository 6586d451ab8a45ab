package relay

import (
	"context"

	goredis "github.com/redis/go-redis/v9"
)

// Message is one frame received from the shared bus.
type Message struct {
	Topic   string
	Payload []byte
}

// Subscription is an active wildcard subscription on the bus.
type Subscription interface {
	Messages() <-chan Message
	Close() error
}

// Bus is the shared pub/sub transport the relay runs on.
type Bus interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	PSubscribe(ctx context.Context, pattern string) (Subscription, error)
}

// RedisBus implements Bus on Redis pub/sub.
type RedisBus struct {
	rdb *goredis.Client
}

func NewRedisBus(rdb *goredis.Client) *RedisBus {
	return &RedisBus{rdb: rdb}
}

func (b *RedisBus) Publish(ctx context.Context, topic string, payload []byte) error {
	return b.rdb.Publish(ctx, topic, payload).Err()
}

func (b *RedisBus) PSubscribe(ctx context.Context, pattern string) (Subscription, error) {
	sub := b.rdb.PSubscribe(ctx, pattern)

	// Receive forces the SUBSCRIBE round trip so a dead bus surfaces
	// here instead of as a silent, message-less subscription.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	out := make(chan Message, 64)
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			select {
			case out <- Message{Topic: msg.Channel, Payload: []byte(msg.Payload)}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return &redisSubscription{sub: sub, out: out}, nil
}

type redisSubscription struct {
	sub *goredis.PubSub
	out chan Message
}

func (s *redisSubscription) Messages() <-chan Message { return s.out }

func (s *redisSubscription) Close() error { return s.sub.Close() }
