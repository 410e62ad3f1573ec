package ai

import (
	"context"
	"fmt"

	"github.com/tone-row/resonance/contract"
)

var errDisabled = fmt.Errorf("generative services disabled")

// Disabled stands in when no API key is configured. Negation reports an
// error so callers use the mechanical fallback; placement appends.
type Disabled struct{}

func (Disabled) Negate(context.Context, string) (string, error) {
	return "", errDisabled
}

func (Disabled) ProposePlacement(context.Context, []string, string) (*contract.Placement, error) {
	return nil, nil
}
