package event

import "github.com/tone-row/resonance/domain"

// DomainEvent is anything the runtime fans out to sinks after a room
// transition is accepted.
type DomainEvent interface {
	RoomID() string
}

// SessionUpdated carries a full session snapshot for one room. The
// snapshot is a deep copy owned by the event; sinks may read it from any
// goroutine without touching the authority's working state.
type SessionUpdated struct {
	Room    string
	Session *domain.Session
}

func (e SessionUpdated) RoomID() string {
	return e.Room
}
