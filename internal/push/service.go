package push

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/tmachado/fleetline/internal/domain"
	"github.com/tmachado/fleetline/internal/metrics"
)

// Snapshotter computes one periodic metric snapshot. Implementations
// query the platform's data store.
type Snapshotter interface {
	// Name identifies the source in logs and metrics.
	Name() string
	// Channel is the broadcast channel the snapshot is published on.
	Channel() string
	// EnvelopeType is the canonical envelope type of the published message.
	EnvelopeType() string
	// Snapshot computes the current payload.
	Snapshot(ctx context.Context) (any, error)
}

// Service drives the periodic snapshot loop. stopped -> running on
// Start, running -> stopped on Stop; Stop waits for in-flight work to
// finish before returning.
type Service struct {
	publisher MessagePublisher
	sources   []Snapshotter
	clock     clockwork.Clock
	interval  time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

func NewService(publisher MessagePublisher, sources []Snapshotter, clock clockwork.Clock, interval time.Duration) *Service {
	return &Service{
		publisher: publisher,
		sources:   sources,
		clock:     clock,
		interval:  interval,
	}
}

// Start spawns the periodic loop. Starting a running service is a no-op.
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		slog.Warn("Snapshot service already running, ignoring start")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	go s.run(ctx, s.done)
	slog.Info("Snapshot service started", "interval", s.interval, "sources", len(s.sources))
}

// Stop cancels the loop and waits for it to terminate. Stopping a
// stopped service is a no-op.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.running = false
	s.mu.Unlock()

	cancel()
	<-done
	slog.Info("Snapshot service stopped")
}

func (s *Service) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.tick(ctx)
		}
	}
}

// tick computes and publishes every source once. One source's failure
// is logged and skipped; it never cancels the loop or blocks the other
// sources in the same tick.
func (s *Service) tick(ctx context.Context) {
	for _, src := range s.sources {
		data, err := src.Snapshot(ctx)
		if err != nil {
			metrics.PushSnapshots.WithLabelValues(src.Name(), "error").Inc()
			slog.Warn("Snapshot source failed, skipping tick", "source", src.Name(), "error", err)
			continue
		}

		update := domain.NewSnapshotUpdate(src.EnvelopeType(), data, s.clock.Now())
		if err := s.publisher.Publish(ctx, src.Channel(), update); err != nil {
			metrics.PushSnapshots.WithLabelValues(src.Name(), "error").Inc()
			slog.Warn("Snapshot publish failed", "source", src.Name(), "error", err)
			continue
		}
		metrics.PushSnapshots.WithLabelValues(src.Name(), "ok").Inc()
	}
}
