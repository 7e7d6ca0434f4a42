// Package openai implements llm.Provider on top of the OpenAI chat API.
package openai

import (
	"context"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/neura-ai/neura/core"
	"github.com/neura-ai/neura/llm"
)

// Config holds OpenAI provider configuration.
type Config struct {
	APIKey  string
	BaseURL string
	OrgID   string
}

// Provider implements llm.Provider for OpenAI.
type Provider struct {
	client *goopenai.Client
}

// New creates a new OpenAI provider.
func New(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: APIKey is required")
	}

	clientConfig := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	if cfg.OrgID != "" {
		clientConfig.OrgID = cfg.OrgID
	}

	return &Provider{client: goopenai.NewClientWithConfig(clientConfig)}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string { return "openai" }

// Complete performs a chat completion.
func (p *Provider) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	if err := llm.Validate(req); err != nil {
		return nil, err
	}

	messages := make([]goopenai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    toOpenAIRole(m.Role),
			Content: m.Content,
		})
	}

	resp, err := p.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: float32(req.Temperature),
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai completion: empty choices")
	}

	return &llm.Response{
		Content: resp.Choices[0].Message.Content,
		Usage: llm.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}

func toOpenAIRole(role core.Role) string {
	switch role {
	case core.RoleSystem:
		return goopenai.ChatMessageRoleSystem
	case core.RoleAssistant:
		return goopenai.ChatMessageRoleAssistant
	case core.RoleTool:
		return goopenai.ChatMessageRoleTool
	default:
		return goopenai.ChatMessageRoleUser
	}
}
