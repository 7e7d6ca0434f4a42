// Package mock provides a scripted llm.Provider for tests.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/neura-ai/neura/llm"
)

// Provider returns canned responses in order. Once the script is
// exhausted, Complete returns an error.
type Provider struct {
	mu        sync.Mutex
	responses []string
	calls     []*llm.Request
}

// New creates a mock provider that replays the given responses.
func New(responses ...string) *Provider {
	return &Provider{responses: responses}
}

// Name returns the provider name.
func (p *Provider) Name() string { return "mock" }

// Complete pops the next scripted response.
func (p *Provider) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = append(p.calls, req)
	if len(p.responses) == 0 {
		return nil, fmt.Errorf("mock provider: no scripted responses left")
	}

	content := p.responses[0]
	p.responses = p.responses[1:]
	return &llm.Response{
		Content: content,
		Usage:   llm.Usage{InputTokens: len(req.Messages), OutputTokens: 1},
	}, nil
}

// Calls returns the requests seen so far.
func (p *Provider) Calls() []*llm.Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*llm.Request, len(p.calls))
	copy(out, p.calls)
	return out
}
