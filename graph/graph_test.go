package graph_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neura-ai/neura/core"
	"github.com/neura-ai/neura/graph"
)

func markNode(key string) graph.NodeFunc {
	return func(ctx context.Context, state *core.State) (*core.State, error) {
		state.Context[key] = true
		return state, nil
	}
}

func TestGraph_CompileValidation(t *testing.T) {
	t.Run("missing entry point", func(t *testing.T) {
		g := graph.New().AddNode("a", markNode("a"))
		_, err := g.Compile()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "entry point not set")
	})

	t.Run("entry point not a node", func(t *testing.T) {
		g := graph.New().AddNode("a", markNode("a")).SetEntryPoint("b")
		_, err := g.Compile()
		require.Error(t, err)
		assert.Contains(t, err.Error(), `entry point "b"`)
	})

	t.Run("router on unknown node", func(t *testing.T) {
		g := graph.New().AddNode("a", markNode("a")).SetEntryPoint("a")
		g.AddConditionalEdges("ghost", func(*core.State) string { return graph.END })
		_, err := g.Compile()
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown node "ghost"`)
	})
}

func TestGraph_InvokeFollowsRouters(t *testing.T) {
	g := graph.New().
		AddNode("first", markNode("first")).
		AddNode("second", markNode("second")).
		SetEntryPoint("first")
	g.AddConditionalEdges("first", func(*core.State) string { return "second" })
	g.AddConditionalEdges("second", func(*core.State) string { return graph.END })

	compiled, err := g.Compile()
	require.NoError(t, err)

	state, err := compiled.Invoke(context.Background(), core.NewState("task"))
	require.NoError(t, err)
	assert.Equal(t, true, state.Context["first"])
	assert.Equal(t, true, state.Context["second"])
	assert.Equal(t, "second", state.CurrentAgent)
}

func TestGraph_TerminalNodeWithoutRouter(t *testing.T) {
	g := graph.New().AddNode("only", markNode("only")).SetEntryPoint("only")
	compiled, err := g.Compile()
	require.NoError(t, err)

	state, err := compiled.Invoke(context.Background(), core.NewState("task"))
	require.NoError(t, err)
	assert.Equal(t, true, state.Context["only"])
}

func TestGraph_MaxIterations(t *testing.T) {
	g := graph.New().AddNode("loop", markNode("loop")).SetEntryPoint("loop")
	g.AddConditionalEdges("loop", func(*core.State) string { return "loop" })

	compiled, err := g.Compile()
	require.NoError(t, err)

	_, err = compiled.Invoke(context.Background(), core.NewState("task"))
	assert.ErrorIs(t, err, graph.ErrMaxIterations)
}

func TestGraph_NodeErrorStopsRun(t *testing.T) {
	boom := errors.New("boom")
	g := graph.New().
		AddNode("bad", func(ctx context.Context, state *core.State) (*core.State, error) {
			return state, boom
		}).
		SetEntryPoint("bad")

	compiled, err := g.Compile()
	require.NoError(t, err)

	_, err = compiled.Invoke(context.Background(), core.NewState("task"))
	assert.ErrorIs(t, err, boom)
}

func TestGraph_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := graph.New().AddNode("a", markNode("a")).SetEntryPoint("a")
	compiled, err := g.Compile()
	require.NoError(t, err)

	_, err = compiled.Invoke(ctx, core.NewState("task"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTaskRouter(t *testing.T) {
	state := core.NewState("task")
	assert.Equal(t, graph.NodePlanner, graph.TaskRouter(state))

	state.Context[core.ContextKeyPlan] = &core.Plan{}
	assert.Equal(t, graph.NodeExecutor, graph.TaskRouter(state))

	state.Context[core.ContextKeyExecutionResults] = map[string]*core.StepResult{}
	assert.Equal(t, graph.END, graph.TaskRouter(state))
}

type scriptedAgent struct {
	name string
	fn   func(*core.State) (*core.State, error)
}

func (a *scriptedAgent) Name() string { return a.name }
func (a *scriptedAgent) Process(ctx context.Context, state *core.State) (*core.State, error) {
	return a.fn(state)
}

func TestNewAgentGraph_EndToEnd(t *testing.T) {
	planner := &scriptedAgent{name: "planner", fn: func(s *core.State) (*core.State, error) {
		s.Context[core.ContextKeyPlan] = &core.Plan{Steps: []core.Step{{ID: "step_1"}}}
		return s, nil
	}}
	executor := &scriptedAgent{name: "executor", fn: func(s *core.State) (*core.State, error) {
		s.Context[core.ContextKeyExecutionResults] = map[string]*core.StepResult{
			"step_1": {StepID: "step_1", Output: "done"},
		}
		return s, nil
	}}

	compiled, err := graph.NewAgentGraph(planner, executor)
	require.NoError(t, err)

	state, err := compiled.Invoke(context.Background(), core.NewState("research something"))
	require.NoError(t, err)
	assert.True(t, state.HasPlan())
	assert.True(t, state.HasExecutionResults())
	assert.Equal(t, graph.NodeExecutor, state.CurrentAgent)
}
