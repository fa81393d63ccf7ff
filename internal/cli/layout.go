package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ossmap/ossmap/pkg/graphio"
	"github.com/ossmap/ossmap/pkg/pipeline"
)

// layoutCommand creates the layout command for computing node positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [graph.json]",
		Short: "Compute a spatial layout for a dependency network",
		Long: `Compute a spatial layout for a dependency network.

The layout command takes a graph.json file (produced by 'build') and assigns
x/y coordinates to every node. The output is the same graph with positions
filled in, ready for 'export'.

Available algorithms:
  forceatlas2  force-directed with Barnes-Hut approximation (default)
  spring       Fruchterman-Reingold force-directed
  layered      hierarchical rows following edge direction

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass cache and recompute")

	// Layout flags
	cmd.Flags().StringVarP(&opts.Algorithm, "algo", "a", "", "layout algorithm: forceatlas2 (default), spring, layered")
	cmd.Flags().IntVar(&opts.Iterations, "iterations", 0, "number of layout iterations")
	cmd.Flags().Int64Var(&opts.LayoutSeed, "layout-seed", 0, "layout seed (0 seeds from the clock)")

	return cmd
}

// runLayout loads the graph, computes positions, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	g, err := graphio.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	c.applyConfigDefaults(&opts)
	opts.SetLayoutDefaults()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Computing %s layout...", opts.Algorithm))
	spinner.Start()

	positioned, cacheHit, err := runner.ComputeLayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".layout.json"
	}

	if err := graphio.WriteFile(positioned, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(positioned.NodeCount(), positioned.EdgeCount(), cacheHit)
	printNewline()
	printNextStep("Export", "ossmap export "+outputPath)

	return nil
}
