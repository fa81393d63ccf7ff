package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ossmap/ossmap/pkg/graphio"
)

// metricsCommand creates the metrics command for backbone comparison.
func (c *CLI) metricsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics [original.json] [backbone.json]",
		Short: "Compare a backbone network against its original",
		Long: `Compare a backbone network against its original.

The metrics command takes the original network and a backbone reduction of it
(both graph.json files) and reports retention percentages: how many nodes of
the original's giant connected component the backbone keeps, and how many
edges and how much edge weight the reduction removed.

Both networks must carry numeric edge weights.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMetrics(cmd.Context(), args[0], args[1])
		},
	}
	return cmd
}

// runMetrics loads both networks and prints the comparison report.
func (c *CLI) runMetrics(ctx context.Context, originalPath, backbonePath string) error {
	original, err := graphio.ReadFile(originalPath)
	if err != nil {
		return fmt.Errorf("load original %s: %w", originalPath, err)
	}
	backbone, err := graphio.ReadFile(backbonePath)
	if err != nil {
		return fmt.Errorf("load backbone %s: %w", backbonePath, err)
	}

	runner, err := c.newRunner(ctx, true)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	report, err := runner.Compare(ctx, original, backbone)
	if err != nil {
		return fmt.Errorf("compare networks: %w", err)
	}
	prog.done("Comparison complete")

	printSuccess("Backbone comparison")
	for _, m := range report {
		printMetric(m.Name, m.Percentage)
	}

	return nil
}
