package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tone-row/resonance/domain/event"
)

type nopSink struct{}

func (nopSink) Consume(context.Context, event.DomainEvent) error { return nil }

func TestRegistry_ConnectedParticipants_DistinctInOrder(t *testing.T) {
	r := NewRegistry()
	r.Subscribe("lobby", "c1", "u1", nopSink{})
	r.Subscribe("lobby", "c2", "u2", nopSink{})
	r.Subscribe("lobby", "c3", "u1", nopSink{}) // second tab
	r.Subscribe("other", "c4", "u9", nopSink{})

	require.Equal(t, []string{"u1", "u2"}, r.ConnectedParticipants("lobby"))
	require.Len(t, r.SinksForRoom("lobby"), 3)
}

func TestRegistry_UnsubscribeKeepsOtherTabs(t *testing.T) {
	r := NewRegistry()
	r.Subscribe("lobby", "c1", "u1", nopSink{})
	r.Subscribe("lobby", "c2", "u1", nopSink{})

	r.Unsubscribe("lobby", "c1")
	require.True(t, r.HasParticipant("lobby", "u1"))

	r.Unsubscribe("lobby", "c2")
	require.False(t, r.HasParticipant("lobby", "u1"))
	require.Empty(t, r.ConnectedParticipants("lobby"))

	// Empty room entries are cleaned up entirely.
	require.Empty(t, r.rooms)
}

func TestRegistry_UnknownRoom(t *testing.T) {
	r := NewRegistry()
	require.Empty(t, r.SinksForRoom("nowhere"))
	require.Empty(t, r.ConnectedParticipants("nowhere"))
	require.False(t, r.HasParticipant("nowhere", "u1"))
	r.Unsubscribe("nowhere", "c1")
}
