package runtime

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tone-row/resonance/contract"
	"github.com/tone-row/resonance/domain"
	"github.com/tone-row/resonance/domain/event"
	"github.com/tone-row/resonance/runtime/workers"
)

type stubNegator struct{}

func (stubNegator) Negate(_ context.Context, text string) (string, error) {
	return "Unlike: " + text, nil
}

type stubPlacer struct{}

func (stubPlacer) ProposePlacement(context.Context, []string, string) (*contract.Placement, error) {
	return nil, nil
}

type chanSink struct {
	mu     sync.Mutex
	latest *domain.Session
	seen   chan struct{}
}

func newChanSink() *chanSink {
	return &chanSink{seen: make(chan struct{}, 64)}
}

func (s *chanSink) Consume(_ context.Context, e event.DomainEvent) error {
	if updated, ok := e.(event.SessionUpdated); ok {
		s.mu.Lock()
		s.latest = updated.Session
		s.mu.Unlock()
		select {
		case s.seen <- struct{}{}:
		default:
		}
	}
	return nil
}

func (s *chanSink) wait(t *testing.T) *domain.Session {
	t.Helper()
	select {
	case <-s.seen:
	case <-time.After(time.Second):
		t.Fatal("no broadcast arrived")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

func newTestOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	log := slog.Default()
	ratifier := workers.NewRatifier(log, stubNegator{}, stubPlacer{}, time.Second, time.Second)
	o := NewOrchestrator(log, workers.NewSupervisor(log, 0), NewRegistry(), ratifier,
		64, 50*time.Millisecond, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	o.Start(ctx)
	t.Cleanup(o.Stop)
	return o
}

// Full path through the public surface: connect, submit, vote, ratify.
func TestOrchestrator_SessionLifecycle(t *testing.T) {
	o := newTestOrchestrator(t)

	u1 := newChanSink()
	o.Connect("lobby", "c1", "u1", u1)
	require.Empty(t, u1.wait(t).Statements, "initial snapshot")

	u2 := newChanSink()
	o.Connect("lobby", "c2", "u2", u2)
	u2.wait(t)

	o.AddStatement("lobby", "u1", "We should go to the moon!")
	session := u1.wait(t)
	require.Len(t, session.Statements, 1)
	require.Equal(t, "Unlike: We should go to the moon!", session.Statements[0].Negation)
	u2.wait(t) // consume u2's copy of the add-statement broadcast

	o.Vote("lobby", "u2", 0, true)
	session = u2.wait(t)
	require.Equal(t, []int{0}, session.RatifiedOrder)
	require.Nil(t, session.Live)

	// get_session answers on the requesting sink only.
	o.GetSession("lobby", u1)
	require.True(t, session.Equal(u1.wait(t)))
}

func TestOrchestrator_RoomsAreIndependent(t *testing.T) {
	o := newTestOrchestrator(t)

	a := newChanSink()
	o.Connect("room-a", "ca", "u1", a)
	a.wait(t)
	b := newChanSink()
	o.Connect("room-b", "cb", "u1", b)
	b.wait(t)

	o.AddStatement("room-a", "u1", "only in a")
	require.Len(t, a.wait(t).Statements, 1)

	o.GetSession("room-b", b)
	require.Empty(t, b.wait(t).Statements)
}

func TestOrchestrator_StopHaltsRoomAuthorities(t *testing.T) {
	o := newTestOrchestrator(t)

	u1 := newChanSink()
	o.Connect("lobby", "c1", "u1", u1)
	u1.wait(t)

	o.Stop()
	// Let the authority goroutine observe the canceled context.
	time.Sleep(100 * time.Millisecond)

	o.AddStatement("lobby", "u1", "submitted after shutdown")
	select {
	case <-u1.seen:
		t.Fatal("authority processed an event after Stop")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestOrchestrator_ConnectBeforeStartIsSupervised(t *testing.T) {
	log := slog.Default()
	ratifier := workers.NewRatifier(log, stubNegator{}, stubPlacer{}, time.Second, time.Second)
	o := NewOrchestrator(log, workers.NewSupervisor(log, 0), NewRegistry(), ratifier,
		64, 50*time.Millisecond, time.Second)
	t.Cleanup(o.Stop)

	// Routing before Start: the authority already runs under the
	// supervised context.
	u1 := newChanSink()
	o.Connect("lobby", "c1", "u1", u1)
	u1.wait(t)

	o.Start(context.Background())
	o.AddStatement("lobby", "u1", "early bird")
	require.Len(t, u1.wait(t).Statements, 1)
}

func TestOrchestrator_DisconnectExpiryRemovesParticipant(t *testing.T) {
	o := newTestOrchestrator(t)

	u1 := newChanSink()
	o.Connect("lobby", "c1", "u1", u1)
	u1.wait(t)
	u2 := newChanSink()
	o.Connect("lobby", "c2", "u2", u2)
	u2.wait(t)

	o.AddStatement("lobby", "u1", "outlast the visitors")
	u1.wait(t)

	o.Disconnect("lobby", "c2", "u2")
	session := u1.wait(t)
	require.Equal(t, []domain.ParticipantID{"u1"}, session.Statements[0].Present)
	require.Equal(t, []int{0}, session.RatifiedOrder, "u1's own yes became unanimous")
}
