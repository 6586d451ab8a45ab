package domain

import (
	"encoding/json"
	"time"
)

// Canonical envelope types. Clients must tolerate unknown types; the
// server only ever produces the values listed here.
const (
	TypeConnected       = "connected"
	TypePing            = "ping"
	TypePong            = "pong"
	TypeKeepalive       = "keepalive"
	TypeEcho            = "echo"
	TypeDashboardUpdate = "dashboard_update"
	TypeDispatchUpdate  = "dispatch_update"
	TypeOrderUpdate     = "order_update"
	TypeVehicleLocation = "vehicle_location"
	TypeAlert           = "alert"
	TypeAnalyticsUpdate = "analytics_update"
)

// Stamp renders a timestamp in the wire format (ISO-8601, UTC).
func Stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Connected acknowledges a successful registration. It is the first
// message every client receives.
type Connected struct {
	Type         string `json:"type"`
	ConnectionID string `json:"connection_id"`
	Channel      string `json:"channel"`
	Timestamp    string `json:"timestamp"`
}

func NewConnected(connectionID, channel string, now time.Time) Connected {
	return Connected{Type: TypeConnected, ConnectionID: connectionID, Channel: channel, Timestamp: Stamp(now)}
}

// Ping is the heartbeat probe sent to every live connection.
type Ping struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

func NewPing(now time.Time) Ping {
	return Ping{Type: TypePing, Timestamp: Stamp(now)}
}

// Keepalive is sent when a receive loop times out waiting for inbound
// frames, so idle-but-healthy connections are not closed.
type Keepalive struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

func NewKeepalive(now time.Time) Keepalive {
	return Keepalive{Type: TypeKeepalive, Timestamp: Stamp(now)}
}

// Echo mirrors a client echo frame back with a server timestamp.
type Echo struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp string          `json:"timestamp"`
}

func NewEcho(data json.RawMessage, now time.Time) Echo {
	return Echo{Type: TypeEcho, Data: data, Timestamp: Stamp(now)}
}

// SnapshotUpdate carries a periodic metric snapshot. The concrete type
// is dashboard_update or analytics_update depending on the source.
type SnapshotUpdate struct {
	Type      string `json:"type"`
	Data      any    `json:"data"`
	Timestamp string `json:"timestamp"`
}

func NewSnapshotUpdate(typ string, data any, now time.Time) SnapshotUpdate {
	return SnapshotUpdate{Type: typ, Data: data, Timestamp: Stamp(now)}
}

// EntityUpdate carries an event-driven push about one entity
// (dispatch_update, order_update, vehicle_location).
type EntityUpdate struct {
	Type      string `json:"type"`
	EntityID  string `json:"entity_id"`
	Data      any    `json:"data"`
	Timestamp string `json:"timestamp"`
}

func NewDispatchUpdate(dispatchID string, data any, now time.Time) EntityUpdate {
	return EntityUpdate{Type: TypeDispatchUpdate, EntityID: dispatchID, Data: data, Timestamp: Stamp(now)}
}

func NewOrderUpdate(orderID string, data any, now time.Time) EntityUpdate {
	return EntityUpdate{Type: TypeOrderUpdate, EntityID: orderID, Data: data, Timestamp: Stamp(now)}
}

func NewVehicleLocation(vehicleID string, data any, now time.Time) EntityUpdate {
	return EntityUpdate{Type: TypeVehicleLocation, EntityID: vehicleID, Data: data, Timestamp: Stamp(now)}
}

// Alert is a cross-cutting operator notification.
type Alert struct {
	Type      string `json:"type"`
	AlertID   string `json:"alert_id"`
	Severity  string `json:"severity"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	Timestamp string `json:"timestamp"`
}

func NewAlert(alertID, severity, message string, data any, now time.Time) Alert {
	return Alert{Type: TypeAlert, AlertID: alertID, Severity: severity, Message: message, Data: data, Timestamp: Stamp(now)}
}

// InboundFrame is the decoded shape of a client frame. Only the type is
// interpreted; everything else is channel-specific client signaling.
type InboundFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}
