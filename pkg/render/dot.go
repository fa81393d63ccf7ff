package render

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/ossmap/ossmap/pkg/errors"
)

// ToDOT converts a label-keyed network to Graphviz DOT format. Undirected
// networks use "graph"/"--" syntax; directed ones "digraph"/"->". Edge
// weights are carried as both weight and edge label.
func ToDOT(lg *LabelGraph) string {
	keyword, arrow := "graph", "--"
	if lg.Directed {
		keyword, arrow = "digraph", "->"
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s G {\n", keyword)
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range lg.Nodes {
		attrs := []string{fmt.Sprintf("label=%q", n.Label)}
		if n.Licenses != "" {
			attrs = append(attrs, fmt.Sprintf("tooltip=%q", n.Licenses))
		}
		if n.Positioned {
			attrs = append(attrs, fmt.Sprintf("pos=\"%.2f,%.2f!\"", n.X, n.Y))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.Label, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range lg.Edges {
		fmt.Fprintf(&buf, "  %q %s %q [weight=%g, label=\"%g\"];\n",
			e.Source, arrow, e.Target, e.Weight, e.Weight)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a label-keyed network to SVG bytes using Graphviz.
func RenderSVG(ctx context.Context, lg *LabelGraph) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(ToDOT(lg)))
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "render SVG")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// WriteSVG renders the network and writes the SVG to dir/filename, creating
// the directory if needed. The full path of the written artifact is
// returned.
func WriteSVG(ctx context.Context, lg *LabelGraph, dir, filename string) (string, error) {
	svg, err := RenderSVG(ctx, lg)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(errors.CodeInternal, err, "create artifact directory")
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, svg, 0o644); err != nil {
		return "", errors.Wrap(errors.CodeInternal, err, "write artifact file")
	}
	return path, nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="(-?[0-9.]+)\s+(-?[0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root SVG tag so the viewBox starts at the
// origin. Graphviz emits negative origins for some layouts, which breaks
// naive embedding.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
