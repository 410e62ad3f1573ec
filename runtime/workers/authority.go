package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tone-row/resonance/contract"
	"github.com/tone-row/resonance/domain"
	"github.com/tone-row/resonance/domain/event"
)

// Event is one inbound unit of work for a room authority. Events for the
// same room are processed strictly one at a time, in arrival order.
type Event interface {
	isEvent()
}

// ConnectEvent announces a new connection for a participant. Conn is the
// connection's own sink, used for the unconditional initial snapshot.
type ConnectEvent struct {
	ParticipantID string
	Conn          contract.EventSink
}

// DisconnectEvent announces that a participant's last connection in the
// room closed. The authority starts the removal grace period.
type DisconnectEvent struct {
	ParticipantID string
}

// AddStatementEvent carries an add_statement message.
type AddStatementEvent struct {
	ParticipantID string
	Text          string
}

// VoteEvent carries a vote_response message.
type VoteEvent struct {
	ParticipantID string
	Index         int
	Response      bool
}

// GetSessionEvent asks for a snapshot on one connection only.
type GetSessionEvent struct {
	Conn contract.EventSink
}

type graceExpiredEvent struct {
	participantID string
	gen           uint64
}

func (ConnectEvent) isEvent()      {}
func (DisconnectEvent) isEvent()   {}
func (AddStatementEvent) isEvent() {}
func (VoteEvent) isEvent()         {}
func (GetSessionEvent) isEvent()   {}
func (graceExpiredEvent) isEvent() {}

type graceTimer struct {
	timer *time.Timer
	gen   uint64
}

// RoomAuthority is the single writer for one room's session. It owns the
// session value, drains its mailbox one event at a time, runs the
// ratification sub-steps, manages disconnect grace timers, and fans the
// resulting state out to every sink of the room.
//
// External AI calls are awaited inside the loop: they delay this room
// only, while later events queue in the mailbox instead of being lost.
type RoomAuthority struct {
	room     string
	log      *slog.Logger
	session  *domain.Session
	mailbox  chan Event
	registry contract.IRegistry
	ratifier *Ratifier

	// permanentSinks receive every broadcast regardless of connections
	// (snapshot persistence, metrics).
	permanentSinks []contract.EventSink

	gracePeriod time.Duration
	sinkTimeout time.Duration

	graceTimers map[string]*graceTimer
	graceGen    uint64
}

func NewRoomAuthority(log *slog.Logger, room string, registry contract.IRegistry,
	ratifier *Ratifier, permanentSinks []contract.EventSink,
	mailboxSize int, gracePeriod, sinkTimeout time.Duration) *RoomAuthority {
	return &RoomAuthority{
		room:           room,
		log:            log.With("room", room),
		session:        domain.NewSession(),
		mailbox:        make(chan Event, mailboxSize),
		registry:       registry,
		ratifier:       ratifier,
		permanentSinks: permanentSinks,
		gracePeriod:    gracePeriod,
		sinkTimeout:    sinkTimeout,
		graceTimers:    make(map[string]*graceTimer),
	}
}

// Enqueue submits an event for serialized processing. It blocks when the
// mailbox is full: inbound work queues rather than being rejected.
func (a *RoomAuthority) Enqueue(evt Event) {
	a.mailbox <- evt
}

// Run drains the mailbox until the context is canceled. The session
// survives a supervisor restart: a panic while handling one event leaves
// the last-known-good state in place and processing resumes with the
// next event.
func (a *RoomAuthority) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			a.stopAllGraceTimers()
			return ctx.Err()
		case evt := <-a.mailbox:
			a.handle(ctx, evt)
		}
	}
}

func (a *RoomAuthority) handle(ctx context.Context, evt Event) {
	switch e := evt.(type) {
	case ConnectEvent:
		a.handleConnect(ctx, e)
	case DisconnectEvent:
		a.handleDisconnect(ctx, e)
	case AddStatementEvent:
		a.handleAddStatement(ctx, e)
	case VoteEvent:
		a.handleVote(ctx, e)
	case GetSessionEvent:
		a.deliver(ctx, e.Conn)
	case graceExpiredEvent:
		a.handleGraceExpired(ctx, e)
	default:
		a.log.Warn(fmt.Sprintf("Dropping unknown authority event %T", evt))
	}
}

func (a *RoomAuthority) handleConnect(ctx context.Context, e ConnectEvent) {
	// A reconnect observed here is authoritative: the pending removal is
	// cancelled and UpdatePresence(Remove) never runs.
	a.cancelGrace(e.ParticipantID)

	if len(a.session.Statements) > 0 {
		next, err := domain.Apply(a.session, domain.UpdatePresence{
			ParticipantID: e.ParticipantID,
			Op:            domain.PresenceAdd,
		})
		if err != nil {
			a.log.Error("Presence add failed", "participant", e.ParticipantID, "error", err)
		} else if !a.session.Equal(next) {
			a.session = next
			a.broadcast(ctx)
		}
	}

	// The new connection always gets a fresh snapshot, even when nothing
	// changed, so a reconnecting client never waits for the next vote.
	a.deliver(ctx, e.Conn)
}

func (a *RoomAuthority) handleDisconnect(ctx context.Context, e DisconnectEvent) {
	if a.registry.HasParticipant(a.room, e.ParticipantID) {
		// Another tab is still open; presence is unaffected.
		return
	}

	a.graceGen++
	gen := a.graceGen
	pid := e.ParticipantID
	a.cancelGrace(pid)
	a.graceTimers[pid] = &graceTimer{
		gen: gen,
		timer: time.AfterFunc(a.gracePeriod, func() {
			// Once Run has returned nobody drains the mailbox; give up on
			// the send instead of leaking this goroutine.
			select {
			case a.mailbox <- graceExpiredEvent{participantID: pid, gen: gen}:
			case <-ctx.Done():
			}
		}),
	}
}

func (a *RoomAuthority) handleGraceExpired(ctx context.Context, e graceExpiredEvent) {
	pending, ok := a.graceTimers[e.participantID]
	if !ok || pending.gen != e.gen {
		// Cancelled by a reconnect that won the race.
		return
	}
	delete(a.graceTimers, e.participantID)

	before := a.session
	next, err := domain.Apply(before, domain.UpdatePresence{
		ParticipantID: e.participantID,
		Op:            domain.PresenceRemove,
	})
	if err != nil {
		a.log.Error("Presence remove failed", "participant", e.participantID, "error", err)
		return
	}

	// A departure can complete several quorums at once. Ratify each newly
	// agreed statement in creation order.
	for i := range next.Statements {
		if before.Statements[i].IsResolved() {
			continue
		}
		if next.Statements[i].IsAgreed() && !next.IsRatified(i) {
			next = a.ratifier.PlaceRatified(ctx, next, i)
		}
	}

	if before.Equal(next) {
		return
	}
	a.session = next
	a.broadcast(ctx)
}

func (a *RoomAuthority) handleAddStatement(ctx context.Context, e AddStatementEvent) {
	present := a.registry.ConnectedParticipants(a.room)

	// The negation is an immutable field of the statement, so the call
	// (or its fallback) completes before the statement exists at all.
	negation, negationFirst := a.ratifier.PrepareNegation(ctx, e.Text)

	next, err := domain.Apply(a.session, domain.AddStatement{
		Text:          e.Text,
		CreatedBy:     e.ParticipantID,
		Present:       present,
		Negation:      negation,
		NegationFirst: negationFirst,
	})
	if err != nil {
		a.log.Warn("Statement rejected", "participant", e.ParticipantID, "error", err)
		return
	}
	index := len(next.Statements) - 1

	// Submitting a statement is agreeing with it.
	next, err = domain.Apply(next, domain.Respond{
		Index:         index,
		ParticipantID: e.ParticipantID,
		Response:      true,
	})
	if err != nil {
		a.log.Error("Creator auto-approve failed", "statement_index", index, "error", err)
		return
	}

	// Creator alone in the room: their own yes already ratifies.
	if next.Statements[index].IsAgreed() {
		next = a.ratifier.PlaceRatified(ctx, next, index)
	}

	a.session = next
	a.broadcast(ctx)
}

func (a *RoomAuthority) handleVote(ctx context.Context, e VoteEvent) {
	next, err := domain.Apply(a.session, domain.Respond{
		Index:         e.Index,
		ParticipantID: e.ParticipantID,
		Response:      e.Response,
	})
	if err != nil {
		a.log.Warn("Vote rejected", "participant", e.ParticipantID,
			"statement_index", e.Index, "error", err)
		return
	}

	if e.Index < len(next.Statements) && next.Statements[e.Index].IsAgreed() && !next.IsRatified(e.Index) {
		next = a.ratifier.PlaceRatified(ctx, next, e.Index)
	}

	a.session = next
	a.broadcast(ctx)
}

func (a *RoomAuthority) cancelGrace(participantID string) {
	if pending, ok := a.graceTimers[participantID]; ok {
		pending.timer.Stop()
		delete(a.graceTimers, participantID)
	}
}

func (a *RoomAuthority) stopAllGraceTimers() {
	for pid, pending := range a.graceTimers {
		pending.timer.Stop()
		delete(a.graceTimers, pid)
	}
}

// broadcast sends the current session to every connection of the room and
// to the permanent sinks. Each delivery is bounded by the sink timeout so
// one stuck consumer cannot stall the room.
func (a *RoomAuthority) broadcast(ctx context.Context) {
	evt := event.SessionUpdated{Room: a.room, Session: a.session.Clone()}
	for _, sink := range a.registry.SinksForRoom(a.room) {
		a.consume(ctx, sink, evt)
	}
	for _, sink := range a.permanentSinks {
		a.consume(ctx, sink, evt)
	}
}

// deliver sends the current session to a single sink.
func (a *RoomAuthority) deliver(ctx context.Context, sink contract.EventSink) {
	a.consume(ctx, sink, event.SessionUpdated{Room: a.room, Session: a.session.Clone()})
}

func (a *RoomAuthority) consume(ctx context.Context, sink contract.EventSink, evt event.SessionUpdated) {
	sinkCtx, cancel := context.WithTimeout(ctx, a.sinkTimeout)
	defer cancel()
	if err := sink.Consume(sinkCtx, evt); err != nil {
		a.log.Debug("Sink delivery failed", "error", err)
	}
}
