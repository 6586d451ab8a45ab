package push

import (
	"context"

	"github.com/tmachado/fleetline/internal/domain"
	"github.com/tmachado/fleetline/internal/store"
)

// DashboardSource publishes operations counts to the dashboard channel.
type DashboardSource struct {
	store *store.Store
}

func NewDashboardSource(s *store.Store) *DashboardSource {
	return &DashboardSource{store: s}
}

func (d *DashboardSource) Name() string         { return "dashboard" }
func (d *DashboardSource) Channel() string      { return "dashboard" }
func (d *DashboardSource) EnvelopeType() string { return domain.TypeDashboardUpdate }

func (d *DashboardSource) Snapshot(ctx context.Context) (any, error) {
	return d.store.DashboardSnapshot(ctx)
}

// AnalyticsSource publishes delivery aggregates to the analytics channel.
type AnalyticsSource struct {
	store *store.Store
}

func NewAnalyticsSource(s *store.Store) *AnalyticsSource {
	return &AnalyticsSource{store: s}
}

func (a *AnalyticsSource) Name() string         { return "analytics" }
func (a *AnalyticsSource) Channel() string      { return "analytics" }
func (a *AnalyticsSource) EnvelopeType() string { return domain.TypeAnalyticsUpdate }

func (a *AnalyticsSource) Snapshot(ctx context.Context) (any, error) {
	return a.store.AnalyticsSnapshot(ctx)
}
