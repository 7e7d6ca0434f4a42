package core_test

import (
	"strings"
	"testing"

	"github.com/neura-ai/neura/core"
)

func TestParsePlan(t *testing.T) {
	plan, err := core.ParsePlan([]byte(`{
		"steps": [
			{"id": "step_1", "description": "search", "tool": "web_search"},
			{"id": "step_2", "description": "scrape", "tool": "web_scraper", "dependencies": ["step_1"]}
		]
	}`))
	if err != nil {
		t.Fatalf("parse plan: %v", err)
	}
	if len(plan.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(plan.Steps))
	}
	if plan.Steps[1].Dependencies[0] != "step_1" {
		t.Errorf("expected dependency step_1, got %v", plan.Steps[1].Dependencies)
	}
}

func TestPlanValidate(t *testing.T) {
	tools := map[string]bool{"web_search": true}

	cases := []struct {
		name    string
		plan    core.Plan
		wantErr string
	}{
		{
			name:    "empty plan",
			plan:    core.Plan{},
			wantErr: "no steps",
		},
		{
			name: "duplicate ids",
			plan: core.Plan{Steps: []core.Step{
				{ID: "step_1", Tool: "web_search"},
				{ID: "step_1", Tool: "web_search"},
			}},
			wantErr: "duplicate step id",
		},
		{
			name: "forward dependency",
			plan: core.Plan{Steps: []core.Step{
				{ID: "step_1", Tool: "web_search", Dependencies: []string{"step_2"}},
				{ID: "step_2", Tool: "web_search"},
			}},
			wantErr: "depends on unknown step",
		},
		{
			name: "unknown tool",
			plan: core.Plan{Steps: []core.Step{
				{ID: "step_1", Tool: "teleport"},
			}},
			wantErr: "unknown tool",
		},
		{
			name: "valid",
			plan: core.Plan{Steps: []core.Step{
				{ID: "step_1", Tool: "web_search"},
				{ID: "step_2", Tool: "web_search", Dependencies: []string{"step_1"}},
			}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.plan.Validate(tools)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestStateHelpers(t *testing.T) {
	state := core.NewState("do the thing")

	if got := state.LastMessage().Content; got != "do the thing" {
		t.Errorf("expected task message, got %q", got)
	}
	if state.HasPlan() || state.HasExecutionResults() {
		t.Error("fresh state should have neither plan nor results")
	}
	if got := state.MaxSteps(core.DefaultMaxSteps); got != core.DefaultMaxSteps {
		t.Errorf("expected default max steps, got %d", got)
	}

	state.Context[core.ContextKeyMaxSteps] = float64(7) // JSON numbers decode as float64
	if got := state.MaxSteps(core.DefaultMaxSteps); got != 7 {
		t.Errorf("expected 7, got %d", got)
	}

	clone := state.Clone()
	clone.Context[core.ContextKeyPlan] = &core.Plan{}
	if state.HasPlan() {
		t.Error("mutating a clone must not affect the original")
	}
}
