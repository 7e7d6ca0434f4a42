// Package anthropic implements llm.Provider on top of the Anthropic
// Messages API.
package anthropic

import (
	"context"
	"fmt"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/neura-ai/neura/core"
	"github.com/neura-ai/neura/llm"
)

// Config holds Anthropic provider configuration.
type Config struct {
	APIKey string
}

// Provider implements llm.Provider for Anthropic.
type Provider struct {
	client *anthropicsdk.Client
}

// New creates a new Anthropic provider.
func New(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: APIKey is required")
	}
	client := anthropicsdk.NewClient(option.WithAPIKey(cfg.APIKey))
	return &Provider{client: &client}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string { return "anthropic" }

// Complete performs a chat completion.
//
// System messages are lifted into the Messages API system field; the
// remaining history is converted to user/assistant turns.
func (p *Provider) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	if err := llm.Validate(req); err != nil {
		return nil, err
	}

	var system []anthropicsdk.TextBlockParam
	var messages []anthropicsdk.MessageParam
	for _, m := range req.Messages {
		switch m.Role {
		case core.RoleSystem:
			system = append(system, anthropicsdk.TextBlockParam{Text: m.Content})
		case core.RoleAssistant:
			messages = append(messages, anthropicsdk.NewAssistantMessage(anthropicsdk.NewTextBlock(m.Content)))
		default:
			messages = append(messages, anthropicsdk.NewUserMessage(anthropicsdk.NewTextBlock(m.Content)))
		}
	}

	params := anthropicsdk.MessageNewParams{
		Model:     anthropicsdk.Model(req.Model),
		MaxTokens: int64(req.MaxTokens),
		Messages:  messages,
	}
	if len(system) > 0 {
		params.System = system
	}
	if req.Temperature > 0 {
		params.Temperature = anthropicsdk.Float(req.Temperature)
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic completion: %w", err)
	}

	var content string
	for _, block := range resp.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}

	return &llm.Response{
		Content: content,
		Usage: llm.Usage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		},
	}, nil
}
