package core

import (
	"encoding/json"
	"fmt"
)

// Step is a single unit of work produced by the planner.
type Step struct {
	// ID uniquely identifies the step within its plan (e.g. "step_1").
	ID string `json:"id"`

	// Description explains what the step should accomplish.
	Description string `json:"description"`

	// Tool names the tool the executor should use for this step.
	Tool string `json:"tool"`

	// Dependencies lists step IDs that must complete before this one.
	Dependencies []string `json:"dependencies,omitempty"`

	// ExpectedOutput describes what the step should produce.
	ExpectedOutput string `json:"expected_output,omitempty"`
}

// Plan is an ordered task decomposition produced by the planner agent.
type Plan struct {
	Steps []Step `json:"steps"`
}

// ParsePlan decodes a plan from planner JSON output.
func ParsePlan(data []byte) (*Plan, error) {
	var p Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}
	return &p, nil
}

// Validate checks structural plan invariants: at least one step, unique
// step IDs, and dependencies that reference previously declared steps.
// Known tool names are checked when a non-nil set is supplied.
func (p *Plan) Validate(knownTools map[string]bool) error {
	if len(p.Steps) == 0 {
		return fmt.Errorf("plan has no steps")
	}

	seen := make(map[string]bool, len(p.Steps))
	for _, step := range p.Steps {
		if step.ID == "" {
			return fmt.Errorf("step must have an id")
		}
		if seen[step.ID] {
			return fmt.Errorf("duplicate step id: %s", step.ID)
		}
		for _, dep := range step.Dependencies {
			if !seen[dep] {
				return fmt.Errorf("step %s depends on unknown step %s", step.ID, dep)
			}
		}
		if knownTools != nil && step.Tool != "" && !knownTools[step.Tool] {
			return fmt.Errorf("step %s references unknown tool %s", step.ID, step.Tool)
		}
		seen[step.ID] = true
	}
	return nil
}

// StepResult records the outcome of executing one plan step.
type StepResult struct {
	StepID     string `json:"step_id"`
	Output     any    `json:"output,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// Succeeded reports whether the step completed without error.
func (r *StepResult) Succeeded() bool {
	return r.Error == ""
}
