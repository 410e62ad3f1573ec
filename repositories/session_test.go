package repositories

import (
	"log/slog"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"github.com/tone-row/resonance/domain"
)

func newTestRepository(t *testing.T) SessionRepository {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).
		WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSessionRepository(db, slog.Default())
}

func TestSessionRepository_StoreAndGetSnapshot(t *testing.T) {
	repo := newTestRepository(t)

	live := 0
	session := &domain.Session{
		Statements: []domain.Statement{{
			Text:      "persist me",
			CreatedBy: "u1",
			Present:   []domain.ParticipantID{"u1", "u2"},
			Responses: map[domain.ParticipantID]bool{"u1": true},
			Negation:  "forget me",
		}},
		Live: &live,
	}

	require.NoError(t, repo.StoreSnapshot("lobby", session))

	got, err := repo.GetSnapshot("lobby")
	require.NoError(t, err)
	require.True(t, session.Equal(got))
}

func TestSessionRepository_OverwriteKeepsLatest(t *testing.T) {
	repo := newTestRepository(t)

	first := &domain.Session{RatifiedOrder: []int{}}
	require.NoError(t, repo.StoreSnapshot("lobby", first))

	second := first.Clone()
	second.Statements = append(second.Statements, domain.Statement{
		Text: "newer", CreatedBy: "u1",
		Present:   []domain.ParticipantID{"u1"},
		Responses: map[domain.ParticipantID]bool{},
	})
	require.NoError(t, repo.StoreSnapshot("lobby", second))

	got, err := repo.GetSnapshot("lobby")
	require.NoError(t, err)
	require.Len(t, got.Statements, 1)
}

func TestSessionRepository_Rooms(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.GetSnapshot("missing")
	require.Error(t, err)

	require.NoError(t, repo.StoreSnapshot("alpha", domain.NewSession()))
	require.NoError(t, repo.StoreSnapshot("beta", domain.NewSession()))

	rooms, err := repo.Rooms()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"alpha", "beta"}, rooms)
}
