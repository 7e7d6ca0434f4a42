package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/neura-ai/neura/config"
	"github.com/neura-ai/neura/env"
)

func newRunCmd(configPath *string) *cobra.Command {
	var (
		model       string
		temperature float64
		maxTokens   int
		maxSteps    int
		saveMemory  bool
	)

	cmd := &cobra.Command{
		Use:   "run \"<task>\"",
		Short: "Execute a task using NEURA",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			runtime, err := env.NewRuntime(cfg)
			if err != nil {
				return err
			}
			defer runtime.Close()

			opts := &env.RunOptions{
				Model:     model,
				MaxTokens: maxTokens,
				MaxSteps:  maxSteps,
			}
			if cmd.Flags().Changed("temperature") {
				opts.Temperature = &temperature
			}
			if cmd.Flags().Changed("save-memory") {
				opts.SaveMemory = &saveMemory
			}

			result, err := runtime.ExecuteTask(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}

			displayResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "the LLM model to use")
	cmd.Flags().Float64Var(&temperature, "temperature", 0.7, "the temperature for generation")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "maximum tokens to generate")
	cmd.Flags().IntVar(&maxSteps, "max-steps", 0, "maximum number of execution steps")
	cmd.Flags().BoolVar(&saveMemory, "save-memory", true, "whether to save results to memory")
	return cmd
}

// displayResult prints the plan, per-step results and memory stats.
func displayResult(w io.Writer, result *env.TaskResult) {
	fmt.Fprintln(w, "=== Task Results ===")

	if result.Plan != nil {
		fmt.Fprintln(w, "\nExecution Plan:")
		for _, step := range result.Plan.Steps {
			fmt.Fprintf(w, "  %s: %s (tool: %s)\n", step.ID, step.Description, step.Tool)
		}
	}

	if len(result.StepResults) > 0 {
		fmt.Fprintln(w, "\nResults:")
		if result.Plan != nil {
			for _, step := range result.Plan.Steps {
				sr, ok := result.StepResults[step.ID]
				if !ok {
					continue
				}
				if sr.Succeeded() {
					fmt.Fprintf(w, "\n%s:\n%s\n", sr.StepID, formatStepOutput(sr.Output))
				} else {
					fmt.Fprintf(w, "\n%s: FAILED: %s\n", sr.StepID, sr.Error)
				}
			}
		}
	}

	if result.MemoryStats != nil {
		fmt.Fprintln(w, "\nMemory Stats:")
		fmt.Fprintf(w, "  Total memories: %d\n", result.MemoryStats.Count)
		fmt.Fprintf(w, "  Vector dimensions: %d\n", result.MemoryStats.Dimensions)
	}
}

func formatStepOutput(output any) string {
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
