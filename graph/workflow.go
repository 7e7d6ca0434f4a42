package graph

import (
	"context"

	"github.com/neura-ai/neura/core"
)

// Node names of the canonical planner/executor workflow.
const (
	NodePlanner  = "planner"
	NodeExecutor = "executor"
)

// TaskRouter implements the planner/executor routing: a plan with no
// results goes to the executor, results end the run, anything else goes
// back to the planner.
func TaskRouter(state *core.State) string {
	switch {
	case state.HasExecutionResults():
		return END
	case state.HasPlan():
		return NodeExecutor
	default:
		return NodePlanner
	}
}

// NewAgentGraph builds the two-node planner/executor workflow around
// TaskRouter and compiles it.
func NewAgentGraph(planner, executor core.Agent) (*CompiledGraph, error) {
	g := New().
		AddNode(NodePlanner, agentNode(planner)).
		AddNode(NodeExecutor, agentNode(executor)).
		SetEntryPoint(NodePlanner)
	g.AddConditionalEdges(NodePlanner, TaskRouter)
	g.AddConditionalEdges(NodeExecutor, TaskRouter)
	return g.Compile()
}

func agentNode(agent core.Agent) NodeFunc {
	return func(ctx context.Context, state *core.State) (*core.State, error) {
		return agent.Process(ctx, state)
	}
}
