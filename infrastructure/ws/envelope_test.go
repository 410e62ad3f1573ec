package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tone-row/resonance/domain"
)

func TestDecodeEnvelope(t *testing.T) {
	envelope, err := DecodeEnvelope([]byte(`{"type":"get_session"}`))
	require.NoError(t, err)
	require.Equal(t, TypeGetSession, envelope.Type)

	envelope, err = DecodeEnvelope([]byte(`{"type":"vote_response","payload":{"statementIndex":0,"userId":"u1","response":false}}`))
	require.NoError(t, err)

	var payload VoteResponsePayload
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	require.Equal(t, 0, *payload.StatementIndex)
	require.Equal(t, "u1", payload.UserID)
	require.False(t, *payload.Response)
}

func TestDecodeEnvelope_Malformed(t *testing.T) {
	for _, raw := range []string{"", "not json", "[]", `{"payload":{}}`, `{"type":7}`} {
		_, err := DecodeEnvelope([]byte(raw))
		require.Error(t, err, "raw %q must be rejected", raw)
	}
}

// A session survives the wire envelope byte-for-byte.
func TestSessionState_RoundTrip(t *testing.T) {
	live := 1
	session := &domain.Session{
		Statements: []domain.Statement{
			{
				Text:      "We should go to the moon!",
				CreatedBy: "u1",
				Present:   []domain.ParticipantID{"u1", "u2"},
				Responses: map[domain.ParticipantID]bool{"u1": true, "u2": true},
				Negation:  "We should stay on Earth.",
			},
			{
				Text:          "Gravity is optional",
				CreatedBy:     "u2",
				Present:       []domain.ParticipantID{"u1", "u2"},
				Responses:     map[domain.ParticipantID]bool{"u2": true},
				Negation:      "Gravity is mandatory",
				NegationFirst: true,
			},
		},
		Live:          &live,
		RatifiedOrder: []int{0},
	}

	data, err := json.Marshal(NewSessionState(session))
	require.NoError(t, err)

	var decoded SessionState
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, TypeSessionState, decoded.Type)
	require.True(t, session.Equal(decoded.Session))
}

func TestSessionState_WireFieldNames(t *testing.T) {
	data, err := json.Marshal(NewSessionState(domain.NewSession()))
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Contains(t, raw, "session")

	var sessionRaw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw["session"], &sessionRaw))
	require.Contains(t, sessionRaw, "statements")
	require.Contains(t, sessionRaw, "liveStatementIndex")
	require.Contains(t, sessionRaw, "ratifiedOrder")
	require.JSONEq(t, "null", string(sessionRaw["liveStatementIndex"]))
}
