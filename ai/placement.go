package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tone-row/resonance/contract"
)

const placementPrompt = `A group is writing a continuous narrative out of short agreed statements.
Given the narrative so far and one new statement, decide where the new
statement belongs semantically.

Narrative (numbered from 0):
%s

New statement: %s

Reply with strict JSON only, one of:
{"relation":"before","index":N}
{"relation":"after","index":N}
where N is the number of the narrative statement the new one goes before
or after. No prose.`

type placementReply struct {
	Relation string `json:"relation"`
	Index    *int   `json:"index"`
}

// ProposePlacement asks where a newly ratified statement belongs in the
// narrative. An empty narrative short-circuits to nil ("append"), per the
// service contract. Any malformed reply is an error; the caller falls
// back to appending.
func (c *Client) ProposePlacement(ctx context.Context, narrative []string, text string) (*contract.Placement, error) {
	if len(narrative) == 0 {
		return nil, nil
	}

	var numbered strings.Builder
	for i, line := range narrative {
		fmt.Fprintf(&numbered, "%d. %s\n", i, line)
	}

	raw, err := c.complete(ctx, fmt.Sprintf(placementPrompt, numbered.String(), text), 100)
	if err != nil {
		return nil, err
	}

	reply, err := parsePlacement(raw)
	if err != nil {
		return nil, err
	}
	return reply, nil
}

// parsePlacement decodes the model's reply, tolerating code fences and
// surrounding prose as long as a JSON object is present.
func parsePlacement(raw string) (*contract.Placement, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end < start {
		if strings.Contains(strings.ToLower(raw), "null") {
			return nil, nil
		}
		return nil, fmt.Errorf("no JSON object in placement reply %q", raw)
	}

	var reply placementReply
	if err := json.Unmarshal([]byte(raw[start:end+1]), &reply); err != nil {
		return nil, fmt.Errorf("placement reply %q: %w", raw, err)
	}
	if reply.Index == nil {
		return nil, fmt.Errorf("placement reply %q: missing index", raw)
	}

	switch contract.Relation(reply.Relation) {
	case contract.Before, contract.After:
		return &contract.Placement{
			Relation:       contract.Relation(reply.Relation),
			TargetPosition: *reply.Index,
		}, nil
	default:
		return nil, fmt.Errorf("placement reply %q: unknown relation", raw)
	}
}
