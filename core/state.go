package core

// DefaultMaxSteps bounds plan length and graph iterations when the
// caller does not configure a limit.
const DefaultMaxSteps = 5

// Context keys used by the planner/executor workflow. Agents communicate
// through these rather than through direct references to each other.
const (
	ContextKeyPlan             = "plan"
	ContextKeyExecutionResults = "execution_results"
	ContextKeyMaxSteps         = "max_steps"
	ContextKeySaveToMemory     = "save_to_memory"
)

// State is the shared state passed between agents in the graph.
// Each node receives the current state and returns an updated copy.
type State struct {
	Messages     []Message      `json:"messages"`
	Memory       map[string]any `json:"memory"`
	Context      map[string]any `json:"context"`
	CurrentAgent string         `json:"current_agent"`
}

// NewState creates a state seeded with a single user task message.
func NewState(task string) *State {
	return &State{
		Messages: []Message{NewUserMessage(task)},
		Memory:   make(map[string]any),
		Context:  make(map[string]any),
	}
}

// Clone returns a shallow-ish copy safe for node-local mutation: the
// message slice and both maps are copied, values are shared.
func (s *State) Clone() *State {
	c := &State{
		Messages:     make([]Message, len(s.Messages)),
		Memory:       make(map[string]any, len(s.Memory)),
		Context:      make(map[string]any, len(s.Context)),
		CurrentAgent: s.CurrentAgent,
	}
	copy(c.Messages, s.Messages)
	for k, v := range s.Memory {
		c.Memory[k] = v
	}
	for k, v := range s.Context {
		c.Context[k] = v
	}
	return c
}

// AppendMessage adds a message to the state.
func (s *State) AppendMessage(m Message) {
	s.Messages = append(s.Messages, m)
}

// LastMessage returns the most recent message, or a zero Message when empty.
func (s *State) LastMessage() Message {
	if len(s.Messages) == 0 {
		return Message{}
	}
	return s.Messages[len(s.Messages)-1]
}

// HasPlan reports whether a plan has been stored in the context.
func (s *State) HasPlan() bool {
	_, ok := s.Context[ContextKeyPlan]
	return ok
}

// HasExecutionResults reports whether execution results are present.
func (s *State) HasExecutionResults() bool {
	_, ok := s.Context[ContextKeyExecutionResults]
	return ok
}

// MaxSteps returns the configured step limit, or def when unset.
func (s *State) MaxSteps(def int) int {
	if v, ok := s.Context[ContextKeyMaxSteps]; ok {
		switch n := v.(type) {
		case int:
			return n
		case int64:
			return int(n)
		case float64:
			return int(n)
		}
	}
	return def
}
