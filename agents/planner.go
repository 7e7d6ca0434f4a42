package agents

import (
	"context"
	"fmt"
	"log"

	"github.com/neura-ai/neura/core"
	"github.com/neura-ai/neura/llm"
	"github.com/neura-ai/neura/tools"
)

const plannerSystemPrompt = `You are a task planning expert. Your job is to break down complex tasks into smaller, manageable steps that can be executed by an AI agent. Consider dependencies between steps and ensure the plan is logical and complete.

Available tools:
%s
Create a plan of at most %d steps that:
1. Breaks down the task into clear, actionable steps
2. Identifies any dependencies between steps
3. Specifies which tools should be used for each step
4. Includes any necessary context or information gathering steps

Respond with ONLY a JSON object with the following structure:
{
    "steps": [
        {
            "id": "step_1",
            "description": "Description of the step",
            "tool": "tool_name",
            "dependencies": [],
            "expected_output": "What this step should produce"
        }
    ]
}`

// Planner decomposes the user task into an executable plan.
type Planner struct {
	provider llm.Provider
	registry *tools.Registry
	opts     Options
}

// NewPlanner creates a planner agent.
func NewPlanner(provider llm.Provider, registry *tools.Registry, opts *Options) *Planner {
	return &Planner{
		provider: provider,
		registry: registry,
		opts:     opts.withDefaults(),
	}
}

// Name returns the agent name.
func (p *Planner) Name() string { return "planner" }

// Process generates a plan for the task in the last user message and
// stores it in the state context.
func (p *Planner) Process(ctx context.Context, state *core.State) (*core.State, error) {
	task := state.LastMessage().Content
	if task == "" {
		return state, fmt.Errorf("planner: no task in state")
	}

	maxSteps := state.MaxSteps(core.DefaultMaxSteps)
	log.Printf("[PLANNER] Planning task (max %d steps): %s", maxSteps, task)

	resp, err := p.provider.Complete(ctx, &llm.Request{
		Model: p.opts.Model,
		Messages: []core.Message{
			{Role: core.RoleSystem, Content: fmt.Sprintf(plannerSystemPrompt, p.registry.Describe(), maxSteps)},
			core.NewUserMessage("Task to plan: " + task),
		},
		Temperature: p.opts.Temperature,
		MaxTokens:   p.opts.MaxTokens,
	})
	if err != nil {
		return state, fmt.Errorf("planner: completion failed: %w", err)
	}

	raw, err := extractJSON(resp.Content)
	if err != nil {
		return state, fmt.Errorf("planner: %w", err)
	}
	plan, err := core.ParsePlan(raw)
	if err != nil {
		return state, fmt.Errorf("planner: %w", err)
	}

	known := make(map[string]bool)
	for _, name := range p.registry.Names() {
		known[name] = true
	}
	if err := plan.Validate(known); err != nil {
		return state, fmt.Errorf("planner: invalid plan: %w", err)
	}

	if len(plan.Steps) > maxSteps {
		log.Printf("[PLANNER] Truncating plan from %d to %d steps", len(plan.Steps), maxSteps)
		plan.Steps = plan.Steps[:maxSteps]
	}

	state.Context[core.ContextKeyPlan] = plan
	if p.opts.OnPlan != nil {
		p.opts.OnPlan(plan)
	}
	state.AppendMessage(core.NewAssistantMessage(
		fmt.Sprintf("Created execution plan with %d steps:\n%s", len(plan.Steps), string(raw))))

	log.Printf("[PLANNER] Plan ready: %d steps", len(plan.Steps))
	return state, nil
}
