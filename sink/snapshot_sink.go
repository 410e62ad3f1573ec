package sink

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tone-row/resonance/domain/event"
	"github.com/tone-row/resonance/repositories"
)

// SnapshotSink writes every broadcast session to the snapshot repository.
// Persistence is best effort: a storage failure is logged and never
// reaches the room authority or its clients.
type SnapshotSink struct {
	repository repositories.ISessionRepository
	log        *slog.Logger
}

func NewSnapshotSink(repository repositories.ISessionRepository, log *slog.Logger) SnapshotSink {
	return SnapshotSink{repository: repository, log: log}
}

func (s SnapshotSink) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.SessionUpdated:
		if err := s.repository.StoreSnapshot(evt.Room, evt.Session); err != nil {
			s.log.Warn("Session snapshot not persisted", "room", evt.Room, "error", err)
		}
		return nil
	default:
		s.log.Debug(fmt.Sprintf("Not implemented event : %v", evt))
		return nil
	}
}
