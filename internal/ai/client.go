// Package ai drafts product listings with Claude and validates the model
// output against a strict contract before it enters the approval queue.
package ai

import (
	"context"
	"fmt"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Client is the narrow Anthropic surface the analyzer needs. Tests
// substitute a canned implementation.
type Client interface {
	CreateMessage(ctx context.Context, system, user string) (string, error)
}

type sdkClient struct {
	client    sdk.Client
	model     string
	maxTokens int64
}

// NewClient creates a Claude-backed client.
func NewClient(apiKey, model string, maxTokens int64) Client {
	return &sdkClient{
		client:    sdk.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: maxTokens,
	}
}

func (c *sdkClient) CreateMessage(ctx context.Context, system, user string) (string, error) {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(user)),
		},
		Temperature: sdk.Float(0.2),
	}
	if system != "" {
		params.System = []sdk.TextBlockParam{{Text: system}}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("error calling anthropic: %w", err)
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return text, nil
}
