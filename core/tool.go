package core

import (
	"context"
	"encoding/json"
	"fmt"
)

// Tool is the interface all NEURA tools implement.
type Tool interface {
	// Name returns the tool identifier used in plans and LLM prompts.
	Name() string

	// Description explains the tool to the planning and execution LLMs.
	Description() string

	// InputSchema returns the JSON Schema describing the tool input.
	InputSchema() map[string]any

	// Execute runs the tool with the given JSON input.
	// Failures that are meaningful to the agent are reported through
	// ToolResult.Error; returned errors indicate infrastructure problems.
	Execute(ctx context.Context, input json.RawMessage) (*ToolResult, error)
}

// ToolResult is the outcome of a tool execution.
type ToolResult struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OKResult builds a successful result carrying data.
func OKResult(data any) *ToolResult {
	return &ToolResult{Success: true, Data: data}
}

// ErrResult builds a failed result carrying an error message.
func ErrResult(format string, args ...any) *ToolResult {
	return &ToolResult{Success: false, Error: fmt.Sprintf(format, args...)}
}
