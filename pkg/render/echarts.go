package render

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ossmap/ossmap/pkg/errors"
)

// HTML renders an interactive HTML graph for the label-keyed network.
//
// Positioned networks are drawn at their computed coordinates; unpositioned
// ones fall back to the chart's own force simulation.
func HTML(lg *LabelGraph) ([]byte, error) {
	page := components.NewPage()
	page.AddCharts(labelChart(lg))

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "render HTML graph")
	}
	return buf.Bytes(), nil
}

// WriteHTML renders the network and writes the HTML artifact to
// dir/filename, creating the directory if needed. The full path of the
// written artifact is returned.
func WriteHTML(lg *LabelGraph, dir, filename string) (string, error) {
	data, err := HTML(lg)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(errors.CodeInternal, err, "create artifact directory")
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrap(errors.CodeInternal, err, "write artifact file")
	}
	return path, nil
}

func labelChart(lg *LabelGraph) *charts.Graph {
	positioned := len(lg.Nodes) > 0
	for _, n := range lg.Nodes {
		if !n.Positioned {
			positioned = false
			break
		}
	}

	nodes := make([]opts.GraphNode, 0, len(lg.Nodes))
	for _, n := range lg.Nodes {
		gn := opts.GraphNode{Name: n.Label}
		if positioned {
			gn.X = float32(n.X)
			gn.Y = float32(n.Y)
		}
		nodes = append(nodes, gn)
	}

	links := make([]opts.GraphLink, 0, len(lg.Edges))
	for _, e := range lg.Edges {
		links = append(links, opts.GraphLink{
			Source: e.Source,
			Target: e.Target,
			Value:  float32(e.Weight),
		})
	}

	chartOpts := opts.GraphChart{
		Draggable: opts.Bool(true),
		Roam:      opts.Bool(true),
	}
	if positioned {
		chartOpts.Layout = "none"
	} else {
		chartOpts.Layout = "force"
		chartOpts.Force = &opts.GraphForce{Repulsion: 400}
	}
	if lg.Directed {
		chartOpts.EdgeSymbol = []string{"none", "arrow"}
	}

	graph := charts.NewGraph()
	graph.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "ossmap network",
			Height:    "100vh",
			Width:     "100vw",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
	)
	graph.AddSeries(
		"network",
		nodes,
		links,
		charts.WithGraphChartOpts(chartOpts),
		charts.WithLabelOpts(opts.Label{
			Show:     opts.Bool(true),
			Color:    "black",
			Position: "top",
		}),
	)
	return graph
}
