package hub

import (
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/tmachado/fleetline/internal/domain"
	"github.com/tmachado/fleetline/internal/metrics"
)

// Registry is the single source of truth for which connections are
// currently listening on which channels. All mutation happens under one
// mutex; reads hand out snapshots so broadcast iteration never observes
// a mutation mid-pass.
type Registry struct {
	clock clockwork.Clock

	mu          sync.RWMutex
	byID        map[string]*Conn
	connections map[string]map[string]*Conn           // channel -> connection id -> conn
	userIndex   map[domain.Identity]map[string]string // identity -> channel -> connection id
}

func NewRegistry(clock clockwork.Clock) *Registry {
	return &Registry{
		clock:       clock,
		byID:        make(map[string]*Conn),
		connections: make(map[string]map[string]*Conn),
		userIndex:   make(map[domain.Identity]map[string]string),
	}
}

// Register creates a new connection entry under channel and returns it.
// Every call creates a fresh entry; a reconnect never resurrects an old one.
func (r *Registry) Register(channel string, identity domain.Identity, transport Transport) *Conn {
	conn := newConn(channel, identity, transport, r.clock)

	r.mu.Lock()
	defer r.mu.Unlock()

	chans, ok := r.connections[channel]
	if !ok {
		chans = make(map[string]*Conn)
		r.connections[channel] = chans
	}
	chans[conn.id] = conn
	r.byID[conn.id] = conn

	if !identity.IsAnonymous() {
		userChans, ok := r.userIndex[identity]
		if !ok {
			userChans = make(map[string]string)
			r.userIndex[identity] = userChans
		}
		userChans[channel] = conn.id
	}

	metrics.HubActiveConnections.Set(float64(len(r.byID)))
	metrics.HubActiveChannels.Set(float64(len(r.connections)))
	return conn
}

// Unregister removes the connection from every index. Calling it again
// for the same id is a no-op; the heartbeat monitor and the multiplexer's
// disconnect handler may race to clean up the same connection.
func (r *Registry) Unregister(connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.byID[connectionID]
	if !ok {
		return
	}
	delete(r.byID, connectionID)

	if chans, ok := r.connections[conn.channel]; ok {
		delete(chans, connectionID)
		if len(chans) == 0 {
			delete(r.connections, conn.channel)
		}
	}

	if !conn.identity.IsAnonymous() {
		if userChans, ok := r.userIndex[conn.identity]; ok {
			if userChans[conn.channel] == connectionID {
				delete(userChans, conn.channel)
			}
			if len(userChans) == 0 {
				delete(r.userIndex, conn.identity)
			}
		}
	}

	metrics.HubActiveConnections.Set(float64(len(r.byID)))
	metrics.HubActiveChannels.Set(float64(len(r.connections)))
}

// ConnectionsOf returns a snapshot of the connections registered under
// channel. Callers iterate the copy without holding the registry lock.
func (r *Registry) ConnectionsOf(channel string) []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chans := r.connections[channel]
	snapshot := make([]*Conn, 0, len(chans))
	for _, conn := range chans {
		snapshot = append(snapshot, conn)
	}
	return snapshot
}

// All returns a snapshot of every registered connection.
func (r *Registry) All() []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make([]*Conn, 0, len(r.byID))
	for _, conn := range r.byID {
		snapshot = append(snapshot, conn)
	}
	return snapshot
}

// Channels returns a snapshot of every channel with at least one connection.
func (r *Registry) Channels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	channels := make([]string, 0, len(r.connections))
	for channel := range r.connections {
		channels = append(channels, channel)
	}
	return channels
}

// Lookup resolves the connection a user holds on a channel, if any.
func (r *Registry) Lookup(identity domain.Identity, channel string) (*Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	userChans, ok := r.userIndex[identity]
	if !ok {
		return nil, false
	}
	id, ok := userChans[channel]
	if !ok {
		return nil, false
	}
	conn, ok := r.byID[id]
	return conn, ok
}

// Stats is the operator-facing health snapshot.
type Stats struct {
	TotalConnections      int            `json:"total_connections"`
	Channels              int            `json:"channels"`
	ActiveUsers           int            `json:"active_users"`
	ConnectionsPerChannel map[string]int `json:"connections_per_channel"`
}

// Stats computes the health snapshot from the live registry state.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	perChannel := make(map[string]int, len(r.connections))
	for channel, chans := range r.connections {
		perChannel[channel] = len(chans)
	}
	return Stats{
		TotalConnections:      len(r.byID),
		Channels:              len(r.connections),
		ActiveUsers:           len(r.userIndex),
		ConnectionsPerChannel: perChannel,
	}
}
