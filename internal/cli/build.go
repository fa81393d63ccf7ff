package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ossmap/ossmap/pkg/graphio"
	"github.com/ossmap/ossmap/pkg/network"
	"github.com/ossmap/ossmap/pkg/pipeline"
	"github.com/ossmap/ossmap/pkg/table"
)

// buildCommand creates the build command for assembling dependency networks.
func (c *CLI) buildCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "build [nodes.csv] [edges.csv]",
		Short: "Build a dependency network from node and edge tables",
		Long: `Build a dependency network from node and edge tables.

The build command reads a node table (Id, Label, Licenses columns) and an edge
table (Source, Target, weight columns) and assembles an attributed graph.
Extra columns are carried along as string attributes.

Null models replace edge weights while preserving the topology:
  shuffled  permute observed weights among edges
  random    resample weights uniformly from [min, max]

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd.Context(), args[0], args[1], opts, output, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <nodes>.graph.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass cache and rebuild")

	// Build flags
	cmd.Flags().BoolVar(&opts.Directed, "directed", false, "treat edges as directed")
	cmd.Flags().StringVar(&opts.NullModel, "null-model", "", "null model: shuffled, random")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "null model seed (default 42)")

	return cmd
}

// runBuild reads the tables, builds the network, and writes output.
func (c *CLI) runBuild(ctx context.Context, nodesPath, edgesPath string, opts pipeline.Options, output string, noCache bool) error {
	nodes, err := table.ReadCSVFile(nodesPath)
	if err != nil {
		return fmt.Errorf("read nodes %s: %w", nodesPath, err)
	}
	edges, err := table.ReadCSVFile(edgesPath)
	if err != nil {
		return fmt.Errorf("read edges %s: %w", edgesPath, err)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Nodes = nodes
	opts.Edges = edges
	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Building network...")
	spinner.Start()

	g, cacheHit, err := runner.BuildWithCacheInfo(ctx, opts)
	if err != nil {
		spinner.StopWithError("Build failed")
		return fmt.Errorf("build network: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(nodesPath, filepath.Ext(nodesPath))
		outputPath = base + ".graph.json"
	}

	if err := graphio.WriteFile(g, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Network built")
	printFile(outputPath)
	printStats(g.NodeCount(), g.EdgeCount(), cacheHit)
	if hub := hubNode(g); hub != nil {
		printDetail("Hub: %s (degree %d)", hub.Label, g.Degree(hub.ID))
	}
	printNewline()
	printNextStep("Compute layout", "ossmap layout "+outputPath)

	return nil
}

// hubNode returns the most connected node, preferring earlier table rows on
// ties. Nil for an empty network.
func hubNode(g *network.Graph) *network.Node {
	var hub *network.Node
	best := -1
	for _, n := range g.Nodes() {
		if d := g.Degree(n.ID); d > best {
			hub, best = n, d
		}
	}
	return hub
}
