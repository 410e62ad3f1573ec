package workers

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/tone-row/resonance/contract"
	"github.com/tone-row/resonance/domain"
)

// Ratifier runs the two external-service steps of the ratification flow:
// attaching a negation phrase when a statement is created, and splicing a
// newly ratified statement into the published narrative order.
//
// Both services are treated as unreliable. Negation falls back to a
// mechanical phrasing; placement falls back to appending at the end, so
// the visible narrative always stays continuous.
type Ratifier struct {
	log              *slog.Logger
	negator          contract.Negator
	placer           contract.Placer
	negationTimeout  time.Duration
	placementTimeout time.Duration
	coin             func() bool
}

func NewRatifier(log *slog.Logger, negator contract.Negator, placer contract.Placer,
	negationTimeout, placementTimeout time.Duration) *Ratifier {
	return &Ratifier{
		log:              log,
		negator:          negator,
		placer:           placer,
		negationTimeout:  negationTimeout,
		placementTimeout: placementTimeout,
		coin:             func() bool { return rand.IntN(2) == 0 },
	}
}

// PrepareNegation obtains the contrasting phrasing for a new statement
// and flips a coin for which phrasing is asked first. It never fails:
// on service error the mechanical negation is substituted.
func (r *Ratifier) PrepareNegation(ctx context.Context, text string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, r.negationTimeout)
	defer cancel()

	negation, err := r.negator.Negate(ctx, text)
	if err != nil || negation == "" {
		r.log.Warn("negation service unavailable, using mechanical fallback", "error", err)
		negation = "Not: " + text
	}
	return negation, r.coin()
}

// PlaceRatified splices a freshly ratified statement index into the
// session's narrative order and returns the resulting session value.
// The input session is not mutated. Calling it for an index already in
// the narrative is a no-op.
func (r *Ratifier) PlaceRatified(ctx context.Context, session *domain.Session, index int) *domain.Session {
	if session.IsRatified(index) {
		return session
	}

	narrative := session.NarrativeTexts()
	position := len(narrative)

	placement, err := r.propose(ctx, narrative, session.Statements[index].Text)
	switch {
	case err != nil:
		r.log.Warn("placement service failed, appending to narrative end",
			"statement_index", index, "error", err)
	case placement == nil:
		// Nothing to compare against: append.
	case placement.TargetPosition < 0 || placement.TargetPosition >= len(narrative):
		r.log.Warn("placement out of bounds, appending to narrative end",
			"statement_index", index, "target", placement.TargetPosition, "narrative_len", len(narrative))
	case placement.Relation == contract.Before:
		position = placement.TargetPosition
	case placement.Relation == contract.After:
		position = placement.TargetPosition + 1
	default:
		r.log.Warn(fmt.Sprintf("unknown placement relation %q, appending to narrative end", placement.Relation))
	}

	next := session.Clone()
	next.RatifiedOrder = append(next.RatifiedOrder, 0)
	copy(next.RatifiedOrder[position+1:], next.RatifiedOrder[position:])
	next.RatifiedOrder[position] = index
	return next
}

func (r *Ratifier) propose(ctx context.Context, narrative []string, text string) (*contract.Placement, error) {
	ctx, cancel := context.WithTimeout(ctx, r.placementTimeout)
	defer cancel()
	return r.placer.ProposePlacement(ctx, narrative, text)
}
