package core

import "context"

// Agent is implemented by every NEURA agent. An agent receives the shared
// graph state, does its work, and returns the updated state.
type Agent interface {
	// Name returns the agent identifier used for graph nodes and logging.
	Name() string

	// Process runs the agent against the current state.
	Process(ctx context.Context, state *State) (*State, error)
}
