// Package anthropic implements generator.Generator on the Claude Messages
// API.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/maravaman/intent-orchestra-nexus/generator"
)

// Config holds model parameters.
type Config struct {
	// Model is the Claude model to use. Defaults to DefaultModel.
	Model string

	// MaxTokens is the maximum response tokens. Defaults to 1024.
	MaxTokens int64
}

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "claude-sonnet-4-20250514"

// Client calls the Claude Messages API.
type Client struct {
	client *sdk.Client
	config Config
}

// New creates a Client with the given Anthropic SDK client.
func New(client *sdk.Client, config Config) *Client {
	return &Client{client: client, config: config}
}

// Generate produces one text completion for the request.
func (c *Client) Generate(ctx context.Context, req *generator.Request) (*generator.Result, error) {
	model := c.config.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := c.config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1024
	}

	prompt := req.Prompt
	if len(req.Context) > 0 {
		prompt += "\n\nRecent context from earlier interactions:\n- " +
			strings.Join(req.Context, "\n- ")
	}

	params := sdk.MessageNewParams{
		Model:     sdk.Model(model),
		MaxTokens: maxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	}
	if req.System != "" {
		params.System = []sdk.TextBlockParam{
			{Text: req.System},
		}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("claude API error: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return &generator.Result{Text: text}, nil
}
