package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Hub metrics
var (
	// HubActiveConnections tracks currently registered connections
	HubActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hub_active_connections",
			Help: "Number of currently registered WebSocket connections",
		},
	)

	// HubActiveChannels tracks channels with at least one connection
	HubActiveChannels = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hub_active_channels",
			Help: "Number of channels with at least one registered connection",
		},
	)

	// HubMessagesSent tracks successful message deliveries
	HubMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_messages_sent_total",
			Help: "Total messages delivered to local connections",
		},
	)

	// HubSendFailures tracks failed deliveries (connection evicted afterwards)
	HubSendFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_send_failures_total",
			Help: "Total failed message deliveries",
		},
	)

	// HubHeartbeatEvictions tracks connections evicted by the heartbeat monitor
	HubHeartbeatEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_heartbeat_evictions_total",
			Help: "Total connections evicted after a failed heartbeat probe",
		},
	)

	// HubConnectionsRejected tracks upgrade requests rejected by connection limits
	HubConnectionsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_connections_rejected_total",
			Help: "Total upgrade requests rejected by connection limits, by reason",
		},
		[]string{"reason"},
	)
)

// Relay metrics
var (
	// RelayPublishes tracks bus publishes by status
	RelayPublishes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_publishes_total",
			Help: "Total relay bus publishes by status",
		},
		[]string{"status"},
	)

	// RelayMessagesReceived tracks messages received from the bus subscriber
	RelayMessagesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_messages_received_total",
			Help: "Total messages received from the relay bus",
		},
	)

	// RelayCircuitState tracks the publish circuit breaker state (0=closed, 1=half-open, 2=open)
	RelayCircuitState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_circuit_state",
			Help: "Relay publish circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)
)

// Push metrics
var (
	// PushSnapshots tracks periodic snapshot computations by source and status
	PushSnapshots = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_snapshots_total",
			Help: "Total periodic snapshot computations by source and status",
		},
		[]string{"source", "status"},
	)

	// PushEvents tracks event-driven broadcasts by type
	PushEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_events_total",
			Help: "Total event-driven broadcasts by envelope type",
		},
		[]string{"type"},
	)
)
