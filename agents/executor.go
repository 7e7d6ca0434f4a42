package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/neura-ai/neura/core"
	"github.com/neura-ai/neura/llm"
	"github.com/neura-ai/neura/tools"
)

const executorSystemPrompt = `You are an execution expert. Your job is to execute the given step using the appropriate tool.

Available tools:
%s
Previous step results:
%s

Respond with ONLY a JSON object with the following structure:
{
    "tool": "tool_name",
    "parameters": {
        "param1": "value1"
    }
}`

// Executor runs the plan produced by the planner, one step at a time.
type Executor struct {
	provider llm.Provider
	registry *tools.Registry
	opts     Options
}

// NewExecutor creates an executor agent.
func NewExecutor(provider llm.Provider, registry *tools.Registry, opts *Options) *Executor {
	return &Executor{
		provider: provider,
		registry: registry,
		opts:     opts.withDefaults(),
	}
}

// Name returns the agent name.
func (e *Executor) Name() string { return "executor" }

// Process executes every step of the plan in order. Results are keyed
// by step ID in the state context. The first failing step stops
// execution; results gathered so far are kept.
func (e *Executor) Process(ctx context.Context, state *core.State) (*core.State, error) {
	plan, ok := state.Context[core.ContextKeyPlan].(*core.Plan)
	if !ok || plan == nil {
		return state, fmt.Errorf("executor: no plan in state")
	}

	results := make(map[string]*core.StepResult, len(plan.Steps))
	state.Context[core.ContextKeyExecutionResults] = results

	for _, step := range plan.Steps {
		if err := ctx.Err(); err != nil {
			return state, err
		}

		if err := checkDependencies(step, results); err != nil {
			result := &core.StepResult{StepID: step.ID, Error: err.Error()}
			results[step.ID] = result
			e.notify(result)
			state.AppendMessage(core.NewAssistantMessage(
				fmt.Sprintf("Error during execution: %v", err)))
			return state, nil
		}

		log.Printf("[EXECUTOR] Executing step %s: %s", step.ID, step.Description)

		start := time.Now()
		output, err := e.executeStep(ctx, step, results)
		result := &core.StepResult{
			StepID:     step.ID,
			Output:     output,
			DurationMs: time.Since(start).Milliseconds(),
		}
		if err != nil {
			result.Error = err.Error()
			results[step.ID] = result
			e.notify(result)
			state.AppendMessage(core.NewAssistantMessage(
				fmt.Sprintf("Error during execution: step %s: %v", step.ID, err)))
			log.Printf("[EXECUTOR] Step %s failed: %v", step.ID, err)
			return state, nil
		}

		results[step.ID] = result
		e.notify(result)
		state.AppendMessage(core.NewAssistantMessage(
			fmt.Sprintf("Executed step %s:\n%s", step.ID, formatOutput(output))))
	}

	log.Printf("[EXECUTOR] Completed %d steps", len(plan.Steps))
	return state, nil
}

// executeStep asks the LLM which tool to invoke and with what
// parameters, then runs the tool.
func (e *Executor) executeStep(ctx context.Context, step core.Step, results map[string]*core.StepResult) (any, error) {
	stepJSON, _ := json.MarshalIndent(step, "", "  ")
	resultsJSON, _ := json.MarshalIndent(results, "", "  ")

	resp, err := e.provider.Complete(ctx, &llm.Request{
		Model: e.opts.Model,
		Messages: []core.Message{
			{Role: core.RoleSystem, Content: fmt.Sprintf(executorSystemPrompt, e.registry.Describe(), resultsJSON)},
			core.NewUserMessage("Step to execute: " + string(stepJSON)),
		},
		Temperature: e.opts.Temperature,
		MaxTokens:   e.opts.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("completion failed: %w", err)
	}

	raw, err := extractJSON(resp.Content)
	if err != nil {
		return nil, err
	}

	var call struct {
		Tool       string          `json:"tool"`
		Parameters json.RawMessage `json:"parameters"`
	}
	if err := json.Unmarshal(raw, &call); err != nil {
		return nil, fmt.Errorf("parse tool call: %w", err)
	}
	if call.Tool == "" {
		return nil, fmt.Errorf("tool call names no tool")
	}

	tool, ok := e.registry.Get(call.Tool)
	if !ok {
		return nil, fmt.Errorf("tool %s not found", call.Tool)
	}
	if len(call.Parameters) == 0 {
		call.Parameters = json.RawMessage(`{}`)
	}

	result, err := tool.Execute(ctx, call.Parameters)
	if err != nil {
		return nil, fmt.Errorf("execute %s: %w", call.Tool, err)
	}
	if !result.Success {
		return nil, fmt.Errorf("tool %s failed: %s", call.Tool, result.Error)
	}
	return result.Data, nil
}

func (e *Executor) notify(result *core.StepResult) {
	if e.opts.OnStep != nil {
		e.opts.OnStep(result)
	}
}

func checkDependencies(step core.Step, results map[string]*core.StepResult) error {
	for _, dep := range step.Dependencies {
		result, ok := results[dep]
		if !ok {
			return fmt.Errorf("step %s: dependency %s not satisfied", step.ID, dep)
		}
		if !result.Succeeded() {
			return fmt.Errorf("step %s: dependency %s failed", step.ID, dep)
		}
	}
	return nil
}

func formatOutput(output any) string {
	switch v := output.(type) {
	case string:
		return v
	default:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}
