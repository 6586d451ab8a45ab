// Package store provides the point-in-time aggregate queries the
// periodic snapshot sources read. Failures here are logged and skipped
// by the push loop, never fatal to connection handling.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store reads aggregate counts from the dispatch platform's database.
type Store struct {
	pool *pgxpool.Pool
}

// Connect opens a pgx pool and verifies connectivity.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MaxConnLifetime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Ping verifies database connectivity for readiness checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// DashboardSnapshot is the periodic operations-dashboard payload.
type DashboardSnapshot struct {
	ActiveDispatches  int `json:"active_dispatches"`
	PendingOrders     int `json:"pending_orders"`
	VehiclesInTransit int `json:"vehicles_in_transit"`
	AvailableDrivers  int `json:"available_drivers"`
	OpenAlerts        int `json:"open_alerts"`
}

// DashboardSnapshot computes the current operations counts.
func (s *Store) DashboardSnapshot(ctx context.Context) (DashboardSnapshot, error) {
	var snap DashboardSnapshot

	const query = `
		SELECT
			(SELECT count(*) FROM dispatches WHERE status = 'active'),
			(SELECT count(*) FROM orders WHERE status = 'pending'),
			(SELECT count(*) FROM vehicles WHERE status = 'in_transit'),
			(SELECT count(*) FROM drivers WHERE status = 'available'),
			(SELECT count(*) FROM alerts WHERE resolved_at IS NULL)`

	err := s.pool.QueryRow(ctx, query).Scan(
		&snap.ActiveDispatches,
		&snap.PendingOrders,
		&snap.VehiclesInTransit,
		&snap.AvailableDrivers,
		&snap.OpenAlerts,
	)
	if err != nil {
		return DashboardSnapshot{}, fmt.Errorf("dashboard snapshot: %w", err)
	}
	return snap, nil
}

// AnalyticsSnapshot is the periodic analytics payload.
type AnalyticsSnapshot struct {
	OrdersCompletedToday int     `json:"orders_completed_today"`
	OrdersCancelledToday int     `json:"orders_cancelled_today"`
	AvgDeliveryMinutes   float64 `json:"avg_delivery_minutes"`
	OnTimeRate           float64 `json:"on_time_rate"`
}

// AnalyticsSnapshot computes today's delivery aggregates.
func (s *Store) AnalyticsSnapshot(ctx context.Context) (AnalyticsSnapshot, error) {
	var snap AnalyticsSnapshot

	const query = `
		SELECT
			count(*) FILTER (WHERE status = 'completed'),
			count(*) FILTER (WHERE status = 'cancelled'),
			coalesce(avg(EXTRACT(EPOCH FROM delivered_at - picked_up_at) / 60)
				FILTER (WHERE status = 'completed'), 0),
			coalesce(avg(CASE WHEN delivered_at <= promised_at THEN 1.0 ELSE 0.0 END)
				FILTER (WHERE status = 'completed'), 0)
		FROM orders
		WHERE created_at >= date_trunc('day', now())`

	err := s.pool.QueryRow(ctx, query).Scan(
		&snap.OrdersCompletedToday,
		&snap.OrdersCancelledToday,
		&snap.AvgDeliveryMinutes,
		&snap.OnTimeRate,
	)
	if err != nil {
		return AnalyticsSnapshot{}, fmt.Errorf("analytics snapshot: %w", err)
	}
	return snap, nil
}
