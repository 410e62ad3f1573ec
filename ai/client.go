// Package ai implements the two generative collaborators of the
// ratification flow on the Anthropic API: negation phrasing and
// insertion-position inference. Both are consumed through the capability
// interfaces in contract, so the runtime never depends on this package
// directly and tests substitute fakes.
package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/cenkalti/backoff/v4"
)

// Client wraps the Anthropic messages endpoint with retry. Calls are
// short single-turn prompts; the caller bounds total latency with its
// context deadline.
type Client struct {
	client     anthropic.Client
	model      anthropic.Model
	maxElapsed time.Duration
}

func NewClient(apiKey, model string, maxElapsed time.Duration) *Client {
	return &Client{
		client:     anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:      anthropic.Model(model),
		maxElapsed: maxElapsed,
	}
}

// complete sends one user prompt and returns the text of the first
// content block, retrying transient failures with exponential backoff.
func (c *Client) complete(ctx context.Context, prompt string, maxTokens int64) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	// BackOff implementations are stateful; always use a fresh instance.
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = c.maxElapsed

	var text string
	operation := func() error {
		message, err := c.client.Messages.New(ctx, params)
		if err != nil {
			return err
		}
		if len(message.Content) == 0 {
			return backoff.Permanent(fmt.Errorf("empty response"))
		}
		block := message.Content[0]
		if block.Type != "text" {
			return backoff.Permanent(fmt.Errorf("unexpected content block type %q", block.Type))
		}
		text = strings.TrimSpace(block.Text)
		return nil
	}
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return "", err
	}
	return text, nil
}
