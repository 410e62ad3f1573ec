// Package runtime handles room lifecycle, event routing, and supervision.
// It orchestrates the system without containing domain rules.
package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tone-row/resonance/contract"
	"github.com/tone-row/resonance/runtime/workers"
)

// Orchestrator routes every inbound operation to the single authority of
// its room, creating authorities lazily on first reference and running
// them under the supervisor. Rooms are fully independent: each authority
// is its own goroutine and there is no cross-room shared session state.
type Orchestrator struct {
	mu             sync.Mutex
	log            *slog.Logger
	supervisor     contract.ISupervisor
	registry       contract.IRegistry
	ratifier       *workers.Ratifier
	permanentSinks []contract.EventSink
	authorities    map[string]*workers.RoomAuthority

	mailboxSize int
	gracePeriod time.Duration
	sinkTimeout time.Duration
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor,
	registry contract.IRegistry, ratifier *workers.Ratifier,
	mailboxSize int, gracePeriod, sinkTimeout time.Duration) *Orchestrator {
	return &Orchestrator{
		log:         log,
		supervisor:  supervisor,
		registry:    registry,
		ratifier:    ratifier,
		authorities: make(map[string]*workers.RoomAuthority),
		mailboxSize: mailboxSize,
		gracePeriod: gracePeriod,
		sinkTimeout: sinkTimeout,
	}
}

// AddSinks registers permanent sinks that receive every room's broadcasts
// (snapshot persistence). Must be called before Start.
func (o *Orchestrator) AddSinks(sinks ...contract.EventSink) {
	o.permanentSinks = append(o.permanentSinks, sinks...)
}

// Start launches the supervision loop. Authorities run under the
// supervisor's own supervised context, so ones created before Start is
// called are supervised all the same.
func (o *Orchestrator) Start(ctx context.Context) {
	go o.supervisor.Run(ctx)
	o.log.Info("Orchestrator started")
}

// Stop cancels the supervised context; authorities drain and exit.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}

// authority returns the room's authority, creating and starting it on
// first reference.
func (o *Orchestrator) authority(room string) *workers.RoomAuthority {
	o.mu.Lock()
	defer o.mu.Unlock()

	if a, ok := o.authorities[room]; ok {
		return a
	}
	a := workers.NewRoomAuthority(o.log, room, o.registry, o.ratifier,
		o.permanentSinks, o.mailboxSize, o.gracePeriod, o.sinkTimeout)
	o.authorities[room] = a
	o.supervisor.Start(a)
	o.log.Info("Room authority created", "room", room)
	return a
}

// Connect registers a connection and announces it to the room. The
// subscription happens before the event is queued so the authority's
// presence snapshot already includes the new participant.
func (o *Orchestrator) Connect(room, connID, participantID string, sink contract.EventSink) {
	o.registry.Subscribe(room, connID, participantID, sink)
	o.authority(room).Enqueue(workers.ConnectEvent{ParticipantID: participantID, Conn: sink})
}

// Disconnect removes a connection and lets the authority decide whether a
// removal grace period starts.
func (o *Orchestrator) Disconnect(room, connID, participantID string) {
	o.registry.Unsubscribe(room, connID)
	o.authority(room).Enqueue(workers.DisconnectEvent{ParticipantID: participantID})
}

func (o *Orchestrator) AddStatement(room, participantID, text string) {
	o.authority(room).Enqueue(workers.AddStatementEvent{ParticipantID: participantID, Text: text})
}

func (o *Orchestrator) Vote(room, participantID string, index int, response bool) {
	o.authority(room).Enqueue(workers.VoteEvent{
		ParticipantID: participantID,
		Index:         index,
		Response:      response,
	})
}

func (o *Orchestrator) GetSession(room string, sink contract.EventSink) {
	o.authority(room).Enqueue(workers.GetSessionEvent{Conn: sink})
}
