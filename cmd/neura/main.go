// Command neura runs tasks through the planner/executor workflow and
// manages the agent's memory.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set by the release build.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "neura",
		Short:         "NEURA - Neural Entity for Understanding, Reasoning, and Autonomy",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to neura.yaml (default: ./neura.yaml)")

	root.AddCommand(
		newRunCmd(&configPath),
		newMemoryCmd(&configPath),
		newServeCmd(&configPath),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the neura version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "neura", version)
		},
	}
}
