// Package sink contains EventSink implementations: per-connection
// delivery channels and permanent side-effect sinks.
package sink

import (
	"context"

	"github.com/tone-row/resonance/domain/event"
)

// ConnSink bridges a room authority to one transport connection. The
// authority pushes session snapshots into the buffered channel; the
// connection's writer goroutine drains it.
type ConnSink struct {
	Updates chan event.DomainEvent
}

func NewConnSink(bufferSize int) *ConnSink {
	return &ConnSink{Updates: make(chan event.DomainEvent, bufferSize)}
}

// Consume hands the event to the connection's writer. A full buffer means
// the consumer is too slow: the frame is dropped rather than stalling the
// room, and the next snapshot supersedes it anyway.
func (s *ConnSink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case s.Updates <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
