// Package ws is the websocket transport boundary: envelope framing,
// payload validation, and the connection handler. It contains no session
// logic; everything is forwarded to the session service.
package ws

import (
	"encoding/json"

	"github.com/tone-row/resonance/domain"
	"github.com/tone-row/resonance/errors"
)

const (
	TypeGetSession   = "get_session"
	TypeAddStatement = "add_statement"
	TypeVoteResponse = "vote_response"
	TypeSessionState = "session_state"
)

// Envelope is the inbound wire frame. Payload decoding is deferred until
// the type is known.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type AddStatementPayload struct {
	Text   string `json:"text" validate:"required"`
	UserID string `json:"userId" validate:"required"`
}

// VoteResponsePayload uses pointers so index 0 and response false survive
// the required check.
type VoteResponsePayload struct {
	StatementIndex *int   `json:"statementIndex" validate:"required"`
	UserID         string `json:"userId" validate:"required"`
	Response       *bool  `json:"response" validate:"required"`
}

// SessionState is the single outbound frame: a full session snapshot.
type SessionState struct {
	Type    string          `json:"type"`
	Session *domain.Session `json:"session"`
}

func NewSessionState(session *domain.Session) SessionState {
	return SessionState{Type: TypeSessionState, Session: session}
}

// DecodeEnvelope parses an inbound frame. Anything that is not a JSON
// object with a string type is malformed.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return Envelope{}, errors.ErrMalformedEnvelope
	}
	if envelope.Type == "" {
		return Envelope{}, errors.ErrMalformedEnvelope
	}
	return envelope, nil
}
