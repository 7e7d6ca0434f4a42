// Package llm defines the provider abstraction the agents talk to.
//
// Providers wrap a single chat-completion surface so planner and executor
// stay independent of the vendor SDK in use. Implementations:
//   - openai: sashabaranov/go-openai (default)
//   - anthropic: anthropics/anthropic-sdk-go
//   - mock: scripted responses for tests
package llm

import (
	"context"
	"fmt"

	"github.com/neura-ai/neura/core"
)

// Request is a chat completion request.
type Request struct {
	Model       string
	Messages    []core.Message
	Temperature float64
	MaxTokens   int
}

// Usage tracks token consumption for a single completion.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Response is a chat completion response.
type Response struct {
	Content string
	Usage   Usage
}

// Provider is the LLM backend interface.
type Provider interface {
	// Name returns the provider identifier (e.g. "openai").
	Name() string

	// Complete performs a single chat completion.
	Complete(ctx context.Context, req *Request) (*Response, error)
}

// Validate checks a request before it is handed to a vendor SDK.
func Validate(req *Request) error {
	if req == nil {
		return fmt.Errorf("request cannot be nil")
	}
	if len(req.Messages) == 0 {
		return fmt.Errorf("messages cannot be empty")
	}
	if req.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}
	for i, m := range req.Messages {
		switch m.Role {
		case core.RoleSystem, core.RoleUser, core.RoleAssistant, core.RoleTool:
		default:
			return fmt.Errorf("message %d: invalid role %q", i, m.Role)
		}
	}
	return nil
}
