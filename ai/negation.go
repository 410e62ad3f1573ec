package ai

import (
	"context"
	"fmt"
	"strings"
)

const negationPrompt = `You are helping a group ratify statements by voting agree/disagree.
Write the single most natural contrasting phrasing of the statement below.
Reply with the contrasting phrasing only, no quotes, no explanation.

Statement: %s`

// Negate produces a contrasting phrasing of the statement. The caller
// substitutes a mechanical negation when this fails.
func (c *Client) Negate(ctx context.Context, text string) (string, error) {
	negation, err := c.complete(ctx, fmt.Sprintf(negationPrompt, text), 200)
	if err != nil {
		return "", err
	}
	// Models occasionally quote their answer anyway.
	negation = strings.Trim(negation, `"'`)
	if negation == "" {
		return "", fmt.Errorf("blank negation")
	}
	return negation, nil
}
