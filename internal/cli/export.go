package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ossmap/ossmap/pkg/graphio"
	"github.com/ossmap/ossmap/pkg/pipeline"
)

// extensions maps export formats to file extensions.
var extensions = map[string]string{
	pipeline.FormatHTML: ".html",
	pipeline.FormatSVG:  ".svg",
	pipeline.FormatDOT:  ".dot",
	pipeline.FormatJSON: ".json",
}

// exportCommand creates the export command for rendering artifacts.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		formats string
		outDir  string
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "export [graph.json]",
		Short: "Export a dependency network to visualization formats",
		Long: `Export a dependency network to visualization formats.

The export command takes a graph.json file (ideally with a layout already
computed) and renders it. Nodes are keyed by their label, so every node must
carry a unique non-empty label.

Available formats:
  html  interactive network viewer (default)
  svg   static vector image via graphviz
  dot   graphviz source
  json  the graph document itself

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(cmd.Context(), args[0], opts, formats, outDir, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&formats, "formats", "f", "", "comma-separated formats: html (default), svg, dot, json")
	cmd.Flags().StringVarP(&outDir, "out-dir", "d", ".", "output directory")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass cache and re-render")

	return cmd
}

// runExport loads the graph, renders the requested formats, and writes one
// file per format next to each other in the output directory.
func (c *CLI) runExport(ctx context.Context, input string, opts pipeline.Options, formats, outDir string, noCache bool) error {
	g, err := graphio.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Formats = parseFormats(formats)
	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Export failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory %s: %w", outDir, err)
	}

	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	printSuccess("Export complete")
	for _, format := range opts.Formats {
		data, ok := artifacts[format]
		if !ok {
			continue
		}
		path := filepath.Join(outDir, base+extensions[format])
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	printStats(g.NodeCount(), g.EdgeCount(), cacheHit)

	return nil
}
