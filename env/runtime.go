// Package env hosts the runtime shared by every NEURA surface (CLI,
// HTTP API, WebSocket) and the adapters themselves. The runtime owns
// the provider, tool registry and memory manager; adapters call
// ExecuteTask and render the result their own way.
package env

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/neura-ai/neura/agents"
	"github.com/neura-ai/neura/config"
	"github.com/neura-ai/neura/core"
	"github.com/neura-ai/neura/graph"
	"github.com/neura-ai/neura/llm"
	"github.com/neura-ai/neura/memory"
	"github.com/neura-ai/neura/tools"
)

// Runtime bundles everything needed to execute tasks.
type Runtime struct {
	cfg      *config.Config
	provider llm.Provider
	registry *tools.Registry
	memory   memory.Manager
}

// Option customizes runtime construction, mainly for tests.
type Option func(*Runtime)

// WithProvider injects an LLM provider instead of building one from config.
func WithProvider(p llm.Provider) Option {
	return func(r *Runtime) { r.provider = p }
}

// WithRegistry injects a tool registry.
func WithRegistry(reg *tools.Registry) Option {
	return func(r *Runtime) { r.registry = reg }
}

// WithMemory injects a memory manager.
func WithMemory(m memory.Manager) Option {
	return func(r *Runtime) { r.memory = m }
}

// NewRuntime builds a runtime from configuration.
func NewRuntime(cfg *config.Config, opts ...Option) (*Runtime, error) {
	r := &Runtime{cfg: cfg}
	for _, opt := range opts {
		opt(r)
	}

	if r.provider == nil {
		p, err := newProvider(cfg)
		if err != nil {
			return nil, err
		}
		r.provider = p
	}
	if r.registry == nil {
		r.registry = newRegistry(cfg)
	}
	if r.memory == nil {
		m, err := newMemory(cfg)
		if err != nil {
			return nil, err
		}
		r.memory = m
	}
	return r, nil
}

// Memory exposes the memory manager to adapters.
func (r *Runtime) Memory() memory.Manager { return r.memory }

// Config exposes the configuration to adapters.
func (r *Runtime) Config() *config.Config { return r.cfg }

// Close releases runtime resources.
func (r *Runtime) Close() error {
	if r.memory != nil {
		return r.memory.Close()
	}
	return nil
}

// RunOptions overrides per-task execution settings. Zero values fall
// back to the configured defaults.
type RunOptions struct {
	Model       string
	Temperature *float64
	MaxTokens   int
	MaxSteps    int
	SaveMemory  *bool

	// OnPlan and OnStep observe progress while the task runs: OnPlan
	// fires once when the plan is accepted, OnStep after every step.
	// Both are called from the executing goroutine.
	OnPlan func(*core.Plan)
	OnStep func(*core.StepResult)
}

// TaskResult is the outcome of one task execution.
type TaskResult struct {
	Task        string                      `json:"task"`
	Plan        *core.Plan                  `json:"plan,omitempty"`
	StepResults map[string]*core.StepResult `json:"step_results,omitempty"`
	Messages    []core.Message              `json:"messages"`
	MemoryStats *memory.Stats               `json:"memory_stats,omitempty"`
}

// Succeeded reports whether every executed step completed.
func (t *TaskResult) Succeeded() bool {
	if t.Plan == nil || len(t.StepResults) != len(t.Plan.Steps) {
		return false
	}
	for _, r := range t.StepResults {
		if !r.Succeeded() {
			return false
		}
	}
	return true
}

// ExecuteTask plans and executes a task through the agent graph.
func (r *Runtime) ExecuteTask(ctx context.Context, task string, opts *RunOptions) (*TaskResult, error) {
	task = strings.TrimSpace(task)
	if task == "" {
		return nil, fmt.Errorf("task cannot be empty")
	}
	if opts == nil {
		opts = &RunOptions{}
	}

	agentOpts := &agents.Options{
		Model:       r.cfg.LLM.Model,
		Temperature: r.cfg.LLM.Temperature,
		MaxTokens:   r.cfg.LLM.MaxTokens,
		OnPlan:      opts.OnPlan,
		OnStep:      opts.OnStep,
	}
	if opts.Model != "" {
		agentOpts.Model = opts.Model
	}
	if opts.Temperature != nil {
		agentOpts.Temperature = *opts.Temperature
	}
	if opts.MaxTokens > 0 {
		agentOpts.MaxTokens = opts.MaxTokens
	}

	maxSteps := r.cfg.Runner.MaxSteps
	if opts.MaxSteps > 0 {
		maxSteps = opts.MaxSteps
	}
	saveMemory := r.cfg.Runner.SaveMemory
	if opts.SaveMemory != nil {
		saveMemory = *opts.SaveMemory
	}

	planner := agents.NewPlanner(r.provider, r.registry, agentOpts)
	executor := agents.NewExecutor(r.provider, r.registry, agentOpts)
	workflow, err := graph.NewAgentGraph(planner, executor)
	if err != nil {
		return nil, fmt.Errorf("build workflow: %w", err)
	}

	state := core.NewState(task)
	state.Context[core.ContextKeyMaxSteps] = maxSteps
	state.Context[core.ContextKeySaveToMemory] = saveMemory

	log.Printf("[RUNTIME] Executing task: %s", task)
	state, err = workflow.Invoke(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("execute task: %w", err)
	}

	result := &TaskResult{Task: task, Messages: state.Messages}
	if plan, ok := state.Context[core.ContextKeyPlan].(*core.Plan); ok {
		result.Plan = plan
	}
	if res, ok := state.Context[core.ContextKeyExecutionResults].(map[string]*core.StepResult); ok {
		result.StepResults = res
	}

	if saveMemory && r.memory != nil {
		if err := r.saveTask(ctx, result); err != nil {
			log.Printf("[RUNTIME] Failed to save task to memory: %v", err)
		}
	}
	if r.memory != nil {
		if stats, err := r.memory.Stats(ctx); err == nil {
			result.MemoryStats = stats
		}
	}
	return result, nil
}

// saveTask records the task and its outcome as one memory entry.
func (r *Runtime) saveTask(ctx context.Context, result *TaskResult) error {
	summary, err := json.Marshal(result.StepResults)
	if err != nil {
		return err
	}
	status := "failed"
	if result.Succeeded() {
		status = "completed"
	}
	_, err = r.memory.Add(ctx,
		fmt.Sprintf("Task: %s\nResults: %s", result.Task, summary),
		map[string]string{"type": "task", "status": status})
	return err
}
