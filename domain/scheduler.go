package domain

// SelectLive picks which unresolved statement should be presented next,
// or nil when every statement is resolved.
//
// The policy is fairness across creators: a creator with fewer already
// resolved statements goes first, so one prolific participant cannot
// monopolize the floor. Ties break by creation index, keeping the choice
// deterministic.
func SelectLive(session *Session) *int {
	resolvedByCreator := make(map[ParticipantID]int)
	for _, statement := range session.Statements {
		if statement.IsResolved() {
			resolvedByCreator[statement.CreatedBy]++
		}
	}

	best := -1
	bestCount := 0
	for i, statement := range session.Statements {
		if statement.IsResolved() {
			continue
		}
		count := resolvedByCreator[statement.CreatedBy]
		if best == -1 || count < bestCount {
			best = i
			bestCount = count
		}
	}
	if best == -1 {
		return nil
	}
	return &best
}
