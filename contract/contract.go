package contract

import (
	"context"
	"reflect"

	"github.com/tone-row/resonance/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink receives room events after an accepted transition. A sink
// must tolerate being called from the room's goroutine and return fast;
// slow deliveries are bounded by the caller's timeout.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IRegistry is the room authorities' view of live connections. The
// transport layer registers connections; authorities read snapshots.
type IRegistry interface {
	Subscribe(room, connID, participantID string, sink EventSink)
	Unsubscribe(room, connID string)
	SinksForRoom(room string) []EventSink
	ConnectedParticipants(room string) []string
	HasParticipant(room, participantID string) bool
}

// Relation says on which side of the target statement a new statement
// belongs in the published narrative.
type Relation string

const (
	Before Relation = "before"
	After  Relation = "after"
)

// Placement is the insertion-position service's answer: the new statement
// goes Before or After the statement at TargetPosition in the current
// narrative. A nil *Placement means "nothing to compare against, append".
type Placement struct {
	Relation       Relation
	TargetPosition int
}

// Negator produces a contrasting phrasing for a statement. Callers must
// tolerate failure and substitute a mechanical negation.
type Negator interface {
	Negate(ctx context.Context, text string) (string, error)
}

// Placer proposes where a newly ratified statement belongs in the
// narrative. Callers must tolerate failure or an out-of-bounds position
// and append to the end.
type Placer interface {
	ProposePlacement(ctx context.Context, narrative []string, text string) (*Placement, error)
}
