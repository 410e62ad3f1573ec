package domain

import (
	"strings"

	"github.com/tone-row/resonance/errors"
)

// Apply is the session reducer: given a session and an action it returns
// the next session value, or an error and no change. The input session is
// never mutated; callers keep the old value for before/after comparison.
//
// Live-statement reselection happens here, not in callers: after any
// transition that resolves the live statement or leaves no live statement
// set, the scheduler picks a replacement.
func Apply(session *Session, action Action) (*Session, error) {
	switch a := action.(type) {
	case AddStatement:
		return applyAddStatement(session, a)
	case Respond:
		return applyRespond(session, a)
	case UpdatePresence:
		return applyUpdatePresence(session, a)
	default:
		return nil, errors.ErrUnknownAction
	}
}

func applyAddStatement(session *Session, a AddStatement) (*Session, error) {
	if strings.TrimSpace(a.Text) == "" {
		return nil, errors.ErrEmptyStatement
	}

	next := session.Clone()
	statement := Statement{
		Text:          a.Text,
		CreatedBy:     a.CreatedBy,
		Present:       dedupe(a.Present),
		Responses:     make(map[ParticipantID]bool),
		Negation:      a.Negation,
		NegationFirst: a.NegationFirst,
	}
	// The creator is always a member of their own statement's present set,
	// even if the connection snapshot missed them.
	if !statement.HasPresent(a.CreatedBy) {
		statement.Present = append(statement.Present, a.CreatedBy)
	}
	next.Statements = append(next.Statements, statement)

	if next.Live == nil {
		next.Live = SelectLive(next)
	}
	return next, nil
}

func applyRespond(session *Session, a Respond) (*Session, error) {
	if a.Index < 0 || a.Index >= len(session.Statements) {
		return nil, errors.ErrIndexOutOfRange
	}
	if session.Statements[a.Index].IsResolved() {
		// Resolved statements are frozen, the same rule presence updates
		// follow. A late vote is rejected rather than silently dropped.
		return nil, errors.ErrStatementResolved
	}

	next := session.Clone()
	next.Statements[a.Index].Responses[a.ParticipantID] = a.Response

	if next.Live != nil && *next.Live == a.Index && next.Statements[a.Index].IsResolved() {
		next.Live = SelectLive(next)
	}
	return next, nil
}

func applyUpdatePresence(session *Session, a UpdatePresence) (*Session, error) {
	next := session.Clone()

	for i := range next.Statements {
		statement := &next.Statements[i]
		if statement.IsResolved() {
			continue
		}
		switch a.Op {
		case PresenceAdd:
			if !statement.HasPresent(a.ParticipantID) {
				statement.Present = append(statement.Present, a.ParticipantID)
			}
		case PresenceRemove:
			// Creator permanence: a statement never loses its creator.
			if statement.CreatedBy == a.ParticipantID {
				continue
			}
			statement.Present = removeParticipant(statement.Present, a.ParticipantID)
			delete(statement.Responses, a.ParticipantID)
		}
	}

	// A removal can complete a quorum and resolve the live statement.
	if next.Live == nil || next.Statements[*next.Live].IsResolved() {
		next.Live = SelectLive(next)
	}
	return next, nil
}

func dedupe(ids []ParticipantID) []ParticipantID {
	out := make([]ParticipantID, 0, len(ids))
	seen := make(map[ParticipantID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func removeParticipant(ids []ParticipantID, id ParticipantID) []ParticipantID {
	out := ids[:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}
