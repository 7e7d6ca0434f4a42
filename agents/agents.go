// Package agents contains the planner and executor agents that run
// inside the task graph. The planner decomposes a task into a plan,
// the executor carries the plan out step by step with the registered
// tools.
package agents

import (
	"fmt"
	"regexp"

	"github.com/neura-ai/neura/core"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4-turbo-preview"

// Options configures an agent.
type Options struct {
	// Model passed to the provider (default gpt-4-turbo-preview).
	Model string

	// Temperature for generation.
	Temperature float64

	// MaxTokens caps the completion size.
	MaxTokens int

	// OnPlan, when set, is called with the accepted plan before
	// execution starts.
	OnPlan func(*core.Plan)

	// OnStep, when set, is called after each step finishes, whether it
	// succeeded or failed.
	OnStep func(*core.StepResult)
}

func (o *Options) withDefaults() Options {
	out := Options{}
	if o != nil {
		out = *o
	}
	if out.Model == "" {
		out.Model = DefaultModel
	}
	if out.MaxTokens <= 0 {
		out.MaxTokens = 2000
	}
	return out
}

// jsonObjectPattern pulls the first JSON object out of an LLM response,
// tolerating prose or markdown fences around it.
var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// extractJSON returns the JSON object embedded in an LLM response.
func extractJSON(content string) ([]byte, error) {
	match := jsonObjectPattern.FindString(content)
	if match == "" {
		return nil, fmt.Errorf("no JSON object in response")
	}
	return []byte(match), nil
}
