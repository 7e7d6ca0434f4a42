package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/neura-ai/neura/config"
	"github.com/neura-ai/neura/env"
)

func newMemoryCmd(configPath *string) *cobra.Command {
	var (
		query string
		clear bool
	)

	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Manage NEURA's memory",
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

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			mem := runtime.Memory()

			if clear {
				if err := mem.Clear(ctx); err != nil {
					return err
				}
				fmt.Fprintln(out, "Memory cleared successfully!")
				return nil
			}

			if query != "" {
				records, err := mem.Search(ctx, query, 0, nil)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, "Search Results:")
				for _, rec := range records {
					recType := rec.Metadata["type"]
					if recType == "" {
						recType = "Unknown"
					}
					fmt.Fprintf(out, "\n[%s]\n%s\n%s\n", recType, rec.Content, strings.Repeat("-", 80))
				}
				return nil
			}

			stats, err := mem.Stats(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "Memory Statistics:")
			fmt.Fprintf(out, "  Total memories: %d\n", stats.Count)
			fmt.Fprintf(out, "  Vector dimensions: %d\n", stats.Dimensions)
			fmt.Fprintf(out, "  Distance metric: %s\n", stats.DistanceMetric)
			return nil
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "query to search memories")
	cmd.Flags().BoolVar(&clear, "clear", false, "clear all memories")
	return cmd
}
