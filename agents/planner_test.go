package agents_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neura-ai/neura/agents"
	"github.com/neura-ai/neura/core"
	"github.com/neura-ai/neura/llm/mock"
	"github.com/neura-ai/neura/tools"
)

type stubTool struct {
	name   string
	result *core.ToolResult
	calls  []json.RawMessage
}

func (s *stubTool) Name() string                { return s.name }
func (s *stubTool) Description() string         { return "stub tool" }
func (s *stubTool) InputSchema() map[string]any { return tools.ObjectSchema(nil) }
func (s *stubTool) Execute(ctx context.Context, input json.RawMessage) (*core.ToolResult, error) {
	s.calls = append(s.calls, input)
	if s.result != nil {
		return s.result, nil
	}
	return core.OKResult("stub output"), nil
}

func newTestRegistry(stubs ...*stubTool) *tools.Registry {
	r := tools.NewRegistry()
	for _, s := range stubs {
		r.Register(s)
	}
	return r
}

const validPlanJSON = `{
  "steps": [
    {"id": "step_1", "description": "search the web", "tool": "search", "dependencies": [], "expected_output": "results"},
    {"id": "step_2", "description": "summarize", "tool": "search", "dependencies": ["step_1"], "expected_output": "summary"}
  ]
}`

func TestPlanner_CreatesPlan(t *testing.T) {
	provider := mock.New("Here is the plan:\n```json\n" + validPlanJSON + "\n```")
	registry := newTestRegistry(&stubTool{name: "search"})
	planner := agents.NewPlanner(provider, registry, nil)

	state, err := planner.Process(context.Background(), core.NewState("research Go generics"))
	require.NoError(t, err)

	require.True(t, state.HasPlan())
	plan := state.Context[core.ContextKeyPlan].(*core.Plan)
	require.Len(t, plan.Steps, 2)
	assert.Equal(t, "step_1", plan.Steps[0].ID)
	assert.Equal(t, []string{"step_1"}, plan.Steps[1].Dependencies)

	last := state.LastMessage()
	assert.Equal(t, core.RoleAssistant, last.Role)
	assert.Contains(t, last.Content, "Created execution plan")

	// Prompt carried the tool listing and the task.
	calls := provider.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Messages[0].Content, "- search: stub tool")
	assert.Contains(t, calls[0].Messages[1].Content, "research Go generics")
}

func TestPlanner_RejectsUnknownTool(t *testing.T) {
	provider := mock.New(`{"steps":[{"id":"step_1","description":"x","tool":"nonexistent"}]}`)
	planner := agents.NewPlanner(provider, newTestRegistry(&stubTool{name: "search"}), nil)

	_, err := planner.Process(context.Background(), core.NewState("task"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tool nonexistent")
}

func TestPlanner_RejectsNonJSONResponse(t *testing.T) {
	provider := mock.New("I cannot plan this task.")
	planner := agents.NewPlanner(provider, newTestRegistry(&stubTool{name: "search"}), nil)

	_, err := planner.Process(context.Background(), core.NewState("task"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no JSON object")
}

func TestPlanner_NotifiesOnPlan(t *testing.T) {
	provider := mock.New(validPlanJSON)
	registry := newTestRegistry(&stubTool{name: "search"})

	var got *core.Plan
	planner := agents.NewPlanner(provider, registry, &agents.Options{
		OnPlan: func(p *core.Plan) { got = p },
	})

	state, err := planner.Process(context.Background(), core.NewState("task"))
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Same(t, state.Context[core.ContextKeyPlan], got)
	assert.Len(t, got.Steps, 2)
}

func TestPlanner_TruncatesToMaxSteps(t *testing.T) {
	provider := mock.New(`{"steps":[
		{"id":"step_1","description":"a","tool":"search"},
		{"id":"step_2","description":"b","tool":"search"},
		{"id":"step_3","description":"c","tool":"search"}
	]}`)
	planner := agents.NewPlanner(provider, newTestRegistry(&stubTool{name: "search"}), nil)

	state := core.NewState("task")
	state.Context[core.ContextKeyMaxSteps] = 2

	state, err := planner.Process(context.Background(), state)
	require.NoError(t, err)

	plan := state.Context[core.ContextKeyPlan].(*core.Plan)
	assert.Len(t, plan.Steps, 2)
}
