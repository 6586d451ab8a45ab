package push

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/tmachado/fleetline/internal/domain"
	"github.com/tmachado/fleetline/internal/hub"
	"github.com/tmachado/fleetline/internal/metrics"
)

// Events is the imperative "broadcast now" API for event-driven pushes.
// Call sites are the platform's business logic: dispatch optimization,
// order state machines, GPS ingestion, alerting.
type Events struct {
	publisher MessagePublisher
	local     *hub.Broadcaster
	clock     clockwork.Clock
}

func NewEvents(publisher MessagePublisher, local *hub.Broadcaster, clock clockwork.Clock) *Events {
	return &Events{publisher: publisher, local: local, clock: clock}
}

// DispatchUpdated pushes a dispatch state transition to its entity
// channel and the dashboard, and directly to the assigned driver's
// connection when one is present.
func (e *Events) DispatchUpdated(ctx context.Context, dispatchID string, data any, driver domain.Identity) {
	metrics.PushEvents.WithLabelValues(domain.TypeDispatchUpdate).Inc()
	update := domain.NewDispatchUpdate(dispatchID, data, e.clock.Now())

	_ = e.publisher.Publish(ctx, "dispatches/"+dispatchID, update)
	_ = e.publisher.Publish(ctx, "dashboard", update)

	if !driver.IsAnonymous() {
		if payload, err := json.Marshal(update); err == nil {
			e.local.SendToUser(driver, "drivers/"+string(driver), payload)
		}
	}
}

// OrderUpdated pushes an order state transition to its entity channel
// and the dashboard.
func (e *Events) OrderUpdated(ctx context.Context, orderID string, data any) {
	metrics.PushEvents.WithLabelValues(domain.TypeOrderUpdate).Inc()
	update := domain.NewOrderUpdate(orderID, data, e.clock.Now())

	_ = e.publisher.Publish(ctx, "orders/"+orderID, update)
	_ = e.publisher.Publish(ctx, "dashboard", update)
}

// VehicleMoved pushes a GPS ping to the vehicle's tracker channel.
func (e *Events) VehicleMoved(ctx context.Context, vehicleID string, data any) {
	metrics.PushEvents.WithLabelValues(domain.TypeVehicleLocation).Inc()
	update := domain.NewVehicleLocation(vehicleID, data, e.clock.Now())

	_ = e.publisher.Publish(ctx, "vehicles/"+vehicleID, update)
}

// AlertRaised pushes an operator alert to the alerts channel and
// returns the generated alert id.
func (e *Events) AlertRaised(ctx context.Context, severity, message string, data any) string {
	metrics.PushEvents.WithLabelValues(domain.TypeAlert).Inc()
	alert := domain.NewAlert(uuid.NewString(), severity, message, data, e.clock.Now())

	_ = e.publisher.Publish(ctx, "alerts", alert)
	return alert.AlertID
}
