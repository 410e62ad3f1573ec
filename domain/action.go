package domain

// Action is a single state transition request handled by Apply.
// Actions are plain values; validation happens in the reducer.
type Action interface {
	isAction()
}

// AddStatement appends a new statement. Present is the snapshot of
// connected participants taken by the room authority at submission time.
// The negation fields are attached by the orchestrator before the action
// is applied, since they are immutable parts of the statement.
type AddStatement struct {
	Text          string
	CreatedBy     ParticipantID
	Present       []ParticipantID
	Negation      string
	NegationFirst bool
}

// Respond records a participant's yes/no on a statement. Last write wins
// while the statement is unresolved.
type Respond struct {
	Index         int
	ParticipantID ParticipantID
	Response      bool
}

// PresenceOp selects the direction of an UpdatePresence action.
type PresenceOp int

const (
	PresenceAdd PresenceOp = iota
	PresenceRemove
)

// UpdatePresence adds or removes a participant across every unresolved
// statement. Resolved statements are frozen and never touched.
type UpdatePresence struct {
	ParticipantID ParticipantID
	Op            PresenceOp
}

func (AddStatement) isAction()   {}
func (Respond) isAction()        {}
func (UpdatePresence) isAction() {}
