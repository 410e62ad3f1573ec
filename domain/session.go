package domain

// Session is the complete per-room state: the append-only statement log,
// the index of the statement currently live for voting, and the published
// narrative order of ratified statements.
//
// A Session value is never mutated in place. The reducer clones it on
// every transition so a caller can compare before/after values and a
// client can never observe a half-applied change.
type Session struct {
	Statements    []Statement `json:"statements"`
	Live          *int        `json:"liveStatementIndex"`
	RatifiedOrder []int       `json:"ratifiedOrder"`
}

func NewSession() *Session {
	return &Session{}
}

// Clone returns a deep copy sharing no mutable memory with the receiver.
func (s *Session) Clone() *Session {
	out := &Session{
		Statements:    make([]Statement, len(s.Statements)),
		RatifiedOrder: append([]int(nil), s.RatifiedOrder...),
	}
	for i, st := range s.Statements {
		out.Statements[i] = st.clone()
	}
	if s.Live != nil {
		live := *s.Live
		out.Live = &live
	}
	return out
}

// Equal reports deep equality of two session values.
func (s *Session) Equal(other *Session) bool {
	if s == nil || other == nil {
		return s == other
	}
	if len(s.Statements) != len(other.Statements) ||
		len(s.RatifiedOrder) != len(other.RatifiedOrder) {
		return false
	}
	if (s.Live == nil) != (other.Live == nil) {
		return false
	}
	if s.Live != nil && *s.Live != *other.Live {
		return false
	}
	for i, idx := range s.RatifiedOrder {
		if other.RatifiedOrder[i] != idx {
			return false
		}
	}
	for i := range s.Statements {
		if !statementEqual(s.Statements[i], other.Statements[i]) {
			return false
		}
	}
	return true
}

func statementEqual(a, b Statement) bool {
	if a.Text != b.Text || a.CreatedBy != b.CreatedBy ||
		a.Negation != b.Negation || a.NegationFirst != b.NegationFirst {
		return false
	}
	if len(a.Present) != len(b.Present) || len(a.Responses) != len(b.Responses) {
		return false
	}
	for i, id := range a.Present {
		if b.Present[i] != id {
			return false
		}
	}
	for id, response := range a.Responses {
		got, ok := b.Responses[id]
		if !ok || got != response {
			return false
		}
	}
	return true
}

// UnresolvedStatements returns the indices of statements still awaiting
// at least one answer, in creation order.
func (s *Session) UnresolvedStatements() []int {
	var out []int
	for i, st := range s.Statements {
		if !st.IsResolved() {
			out = append(out, i)
		}
	}
	return out
}

// AgreedStatements returns the indices of ratified statements, in
// creation order. The published narrative order lives in RatifiedOrder.
func (s *Session) AgreedStatements() []int {
	var out []int
	for i, st := range s.Statements {
		if st.IsAgreed() {
			out = append(out, i)
		}
	}
	return out
}

// IsRatified reports whether the statement index is already part of the
// published narrative.
func (s *Session) IsRatified(index int) bool {
	for _, idx := range s.RatifiedOrder {
		if idx == index {
			return true
		}
	}
	return false
}

// NarrativeTexts returns the statement texts in published narrative order.
func (s *Session) NarrativeTexts() []string {
	out := make([]string, 0, len(s.RatifiedOrder))
	for _, idx := range s.RatifiedOrder {
		out = append(out, s.Statements[idx].Text)
	}
	return out
}
