package runtime

import (
	"direct-chat/contract"
	"direct-chat/domain"
	"sync"
)

type Set map[string]struct{}

type connection struct {
	userID domain.UserID
	sink   contract.EventSink
}

// Registry is the subscription table of the fan-out: which live connection
// listens on which channel. It knows nothing about permissions.
type Registry struct {
	mu          sync.RWMutex
	connections map[string]connection // connection id -> owner and sink
	channels    map[string]Set        // channel -> connection ids
	memberships map[string]Set        // connection id -> channels
}

func NewRegistry() *Registry {
	return &Registry{
		connections: make(map[string]connection),
		channels:    make(map[string]Set),
		memberships: make(map[string]Set),
	}
}

// GetSinksForChannel retrieves the sinks subscribed to a channel, skipping every
// connection owned by exclude. A user may have several connections open; none
// of them receives its own events back.
// Returns nil if nobody listens on the channel.
func (r *Registry) GetSinksForChannel(channel string, exclude domain.UserID) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.channels[channel]
	if !ok {
		return nil
	}
	var activeSinks []contract.EventSink
	for connectionID := range members {
		conn, exists := r.connections[connectionID]
		if !exists || conn.userID == exclude {
			continue
		}
		activeSinks = append(activeSinks, conn.sink)
	}
	return activeSinks
}

// Subscribe attaches a connection to a channel. Subscribing twice is a no-op.
func (r *Registry) Subscribe(connectionID string, userID domain.UserID, channel string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.connections[connectionID] = connection{userID: userID, sink: sink}

	if _, ok := r.channels[channel]; !ok {
		r.channels[channel] = make(Set)
	}
	r.channels[channel][connectionID] = struct{}{}

	if _, ok := r.memberships[connectionID]; !ok {
		r.memberships[connectionID] = make(Set)
	}
	r.memberships[connectionID][channel] = struct{}{}
}

// Unsubscribe detaches a connection from one channel. The connection stays
// known while it listens on other channels.
func (r *Registry) Unsubscribe(connectionID string, channel string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.leaveLocked(connectionID, channel)
	if len(r.memberships[connectionID]) == 0 {
		delete(r.memberships, connectionID)
		delete(r.connections, connectionID)
	}
}

// Disconnect forgets a connection and all its subscriptions.
func (r *Registry) Disconnect(connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for channel := range r.memberships[connectionID] {
		r.leaveLocked(connectionID, channel)
	}
	delete(r.memberships, connectionID)
	delete(r.connections, connectionID)
}

// leaveLocked ensures no empty sets are left behind to prevent the maps from
// growing over time.
func (r *Registry) leaveLocked(connectionID string, channel string) {
	if members, ok := r.channels[channel]; ok {
		delete(members, connectionID)
		if len(members) == 0 {
			delete(r.channels, channel)
		}
	}
	if channels, ok := r.memberships[connectionID]; ok {
		delete(channels, channel)
	}
}
