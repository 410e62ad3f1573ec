package runtime

import (
	"sync"

	"github.com/tone-row/resonance/contract"
)

type connection struct {
	id            string
	participantID string
	sink          contract.EventSink
}

// Registry tracks the live connections of every room: which participant
// each connection belongs to and the sink used to reach it. Connections
// are kept in subscription order so presence snapshots are deterministic.
//
// Registry is safe for concurrent use; room authorities read it while the
// transport layer subscribes and unsubscribes.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string][]connection
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string][]connection)}
}

// Subscribe registers a connection's sink under a room. The connection id
// must be unique per connection, not per participant: the same participant
// may hold several tabs.
func (r *Registry) Subscribe(room, connID, participantID string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms[room] = append(r.rooms[room], connection{id: connID, participantID: participantID, sink: sink})
}

// Unsubscribe removes one connection. Empty rooms are dropped from the
// map so abandoned room names do not accumulate.
func (r *Registry) Unsubscribe(room, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns := r.rooms[room]
	for i, c := range conns {
		if c.id == connID {
			r.rooms[room] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(r.rooms[room]) == 0 {
		delete(r.rooms, room)
	}
}

// SinksForRoom returns the sinks of every live connection in the room.
func (r *Registry) SinksForRoom(room string) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := r.rooms[room]
	sinks := make([]contract.EventSink, 0, len(conns))
	for _, c := range conns {
		sinks = append(sinks, c.sink)
	}
	return sinks
}

// ConnectedParticipants returns the distinct participant ids with at
// least one live connection in the room, in first-connection order.
func (r *Registry) ConnectedParticipants(room string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	seen := make(map[string]struct{})
	for _, c := range r.rooms[room] {
		if _, ok := seen[c.participantID]; ok {
			continue
		}
		seen[c.participantID] = struct{}{}
		out = append(out, c.participantID)
	}
	return out
}

// HasParticipant reports whether the participant still holds at least one
// live connection in the room.
func (r *Registry) HasParticipant(room, participantID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.rooms[room] {
		if c.participantID == participantID {
			return true
		}
	}
	return false
}
