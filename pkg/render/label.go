// Package render exports networks for external visualization tooling.
//
// External tools key nodes by human-readable label rather than by internal
// identifier, so every exporter starts from a label-keyed remap of the
// attributed network. The remap preserves all node and edge attributes and
// positions; the renderers then write HTML, SVG, or DOT artifacts to a
// caller-specified location.
package render

import (
	"github.com/ossmap/ossmap/pkg/errors"
	"github.com/ossmap/ossmap/pkg/network"
)

// LabelNode is a node keyed by its label.
type LabelNode struct {
	Label      string
	Licenses   string
	Attrs      map[string]string
	X, Y       float64
	Positioned bool
}

// LabelEdge connects two labels.
type LabelEdge struct {
	Source string
	Target string
	Weight float64
	Attrs  map[string]string
}

// LabelGraph is the label-keyed equivalent of a network, holding nodes in
// the source network's insertion order.
type LabelGraph struct {
	Directed bool
	Nodes    []LabelNode
	Edges    []LabelEdge
}

// LabelKeyed remaps an identifier-keyed network to a label-keyed one.
//
// Every node must carry a label: a node without one is a MISSING_ATTRIBUTE
// error naming the offending identifier. Two nodes sharing a label would
// silently collapse into one in the label-keyed view, so duplicates are
// rejected with a DUPLICATE_LABEL error rather than overwritten or merged.
func LabelKeyed(g *network.Graph) (*LabelGraph, error) {
	labels := make(map[int64]string, g.NodeCount())
	seen := make(map[string]int64, g.NodeCount())

	lg := &LabelGraph{
		Directed: g.IsDirected(),
		Nodes:    make([]LabelNode, 0, g.NodeCount()),
		Edges:    make([]LabelEdge, 0, g.EdgeCount()),
	}

	for _, n := range g.Nodes() {
		if n.Label == "" {
			return nil, errors.New(errors.CodeMissingAttribute,
				"node %d has no label attribute", n.ID)
		}
		if prev, ok := seen[n.Label]; ok {
			return nil, errors.New(errors.CodeDuplicateLabel,
				"nodes %d and %d share label %q", prev, n.ID, n.Label)
		}
		seen[n.Label] = n.ID
		labels[n.ID] = n.Label

		lg.Nodes = append(lg.Nodes, LabelNode{
			Label:      n.Label,
			Licenses:   n.Licenses,
			Attrs:      copyAttrs(n.Attrs),
			X:          n.X,
			Y:          n.Y,
			Positioned: n.Positioned,
		})
	}

	for _, e := range g.Edges() {
		lg.Edges = append(lg.Edges, LabelEdge{
			Source: labels[e.Source],
			Target: labels[e.Target],
			Weight: e.Weight,
			Attrs:  copyAttrs(e.Attrs),
		})
	}
	return lg, nil
}

func copyAttrs(attrs map[string]string) map[string]string {
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}
