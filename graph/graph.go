// Package graph implements the workflow engine that drives agents. A
// graph is a set of named nodes connected by conditional edges; each
// node transforms the shared state and a router picks the next node
// until END is reached.
package graph

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/neura-ai/neura/core"
)

// END is the router sentinel that terminates graph execution.
const END = "__end__"

// ErrMaxIterations is returned when a graph run exceeds its iteration
// limit without reaching END.
var ErrMaxIterations = errors.New("graph: exceeded maximum iterations")

// NodeFunc processes the state at one node. It may return a new state
// or mutate and return the given one.
type NodeFunc func(ctx context.Context, state *core.State) (*core.State, error)

// Router selects the next node after a node completes. It returns a
// node name or END.
type Router func(state *core.State) string

// Graph is a mutable graph definition. Call Compile to validate it and
// obtain a runnable form.
type Graph struct {
	nodes      map[string]NodeFunc
	routers    map[string]Router
	entryPoint string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:   make(map[string]NodeFunc),
		routers: make(map[string]Router),
	}
}

// AddNode registers a named node.
func (g *Graph) AddNode(name string, fn NodeFunc) *Graph {
	g.nodes[name] = fn
	return g
}

// AddConditionalEdges sets the router invoked after the given node.
func (g *Graph) AddConditionalEdges(from string, router Router) *Graph {
	g.routers[from] = router
	return g
}

// SetEntryPoint names the node where execution starts.
func (g *Graph) SetEntryPoint(name string) *Graph {
	g.entryPoint = name
	return g
}

// Compile validates the graph and returns a runnable form.
func (g *Graph) Compile() (*CompiledGraph, error) {
	if g.entryPoint == "" {
		return nil, fmt.Errorf("graph: entry point not set")
	}
	if _, ok := g.nodes[g.entryPoint]; !ok {
		return nil, fmt.Errorf("graph: entry point %q is not a node", g.entryPoint)
	}
	if len(g.nodes) == 0 {
		return nil, fmt.Errorf("graph: no nodes defined")
	}
	for from := range g.routers {
		if _, ok := g.nodes[from]; !ok {
			return nil, fmt.Errorf("graph: router attached to unknown node %q", from)
		}
	}

	nodes := make(map[string]NodeFunc, len(g.nodes))
	for name, fn := range g.nodes {
		nodes[name] = fn
	}
	routers := make(map[string]Router, len(g.routers))
	for name, r := range g.routers {
		routers[name] = r
	}
	return &CompiledGraph{
		nodes:      nodes,
		routers:    routers,
		entryPoint: g.entryPoint,
	}, nil
}

// CompiledGraph is an immutable, runnable graph.
type CompiledGraph struct {
	nodes      map[string]NodeFunc
	routers    map[string]Router
	entryPoint string
}

// iterationLimit derives the run guard from the state's max_steps. Each
// logical step can take a planner and an executor pass, plus slack for
// the terminal routing hop.
func (cg *CompiledGraph) iterationLimit(state *core.State) int {
	return 2*state.MaxSteps(core.DefaultMaxSteps) + 2
}

// Invoke runs the graph from its entry point until a router returns END
// or the iteration limit is reached.
func (cg *CompiledGraph) Invoke(ctx context.Context, state *core.State) (*core.State, error) {
	current := cg.entryPoint
	limit := cg.iterationLimit(state)

	for i := 0; i < limit; i++ {
		if err := ctx.Err(); err != nil {
			return state, err
		}

		fn, ok := cg.nodes[current]
		if !ok {
			return state, fmt.Errorf("graph: unknown node %q", current)
		}

		log.Printf("[GRAPH] Running node: %s", current)
		next, err := fn(ctx, state)
		if err != nil {
			return state, fmt.Errorf("node %s: %w", current, err)
		}
		state = next
		state.CurrentAgent = current

		router, ok := cg.routers[current]
		if !ok {
			// No outgoing edges means the node is terminal.
			return state, nil
		}

		target := router(state)
		if target == END {
			return state, nil
		}
		if _, ok := cg.nodes[target]; !ok {
			return state, fmt.Errorf("graph: router from %q returned unknown node %q", current, target)
		}
		current = target
	}

	return state, ErrMaxIterations
}
