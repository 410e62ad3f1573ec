// Package domain contains the core concepts of the ratification system.
// Everything here is pure: no I/O, no clocks, no external calls.
package domain

import "github.com/samber/lo"

// ParticipantID is the opaque identity token supplied by a client.
// It is stable across reconnects; its generation is not our concern.
type ParticipantID = string

// Statement is a single assertion participants vote on.
//
// Present is an ordered set (insertion order, no duplicates) of the
// participants who must answer before the statement resolves. Responses
// holds the latest yes/no per participant. Negation is the contrasting
// phrasing attached at creation time and never changes afterwards;
// NegationFirst decides which phrasing a client asks first.
type Statement struct {
	Text          string                 `json:"text"`
	CreatedBy     ParticipantID          `json:"createdBy"`
	Present       []ParticipantID        `json:"present"`
	Responses     map[ParticipantID]bool `json:"responses"`
	Negation      string                 `json:"negation"`
	NegationFirst bool                   `json:"negationFirst"`
}

// IsResolved reports whether every present participant has answered.
func (s Statement) IsResolved() bool {
	return len(s.Responses) == len(s.Present)
}

// IsAgreed reports whether the statement is resolved with unanimous yes.
func (s Statement) IsAgreed() bool {
	if !s.IsResolved() {
		return false
	}
	for _, response := range s.Responses {
		if !response {
			return false
		}
	}
	return true
}

// HasPresent reports whether the participant is a member of the present set.
func (s Statement) HasPresent(id ParticipantID) bool {
	return lo.Contains(s.Present, id)
}

// clone returns a deep copy sharing no mutable memory with the receiver.
func (s Statement) clone() Statement {
	out := s
	out.Present = append([]ParticipantID(nil), s.Present...)
	out.Responses = make(map[ParticipantID]bool, len(s.Responses))
	for id, response := range s.Responses {
		out.Responses[id] = response
	}
	return out
}
