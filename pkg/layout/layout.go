// Package layout computes 2D spatial layouts for attributed networks.
//
// The engine dispatches to one of three positioning algorithms and annotates
// every node of a copy of the input graph with planar coordinates. The input
// graph is never mutated, so multiple layouts can be compared side by side
// against the same base graph.
//
// Coordinates are unbounded real numbers; consumers must not assume any
// particular range or normalization.
package layout

import (
	"github.com/ossmap/ossmap/pkg/errors"
	"github.com/ossmap/ossmap/pkg/layout/forceatlas"
	"github.com/ossmap/ossmap/pkg/network"
)

// Algorithm selects a positioning algorithm.
type Algorithm string

// Supported layout algorithms.
const (
	// ForceAtlas2 is a force-directed layout tuned for large weighted
	// graphs: attraction scales with edge weight and repulsion is
	// approximated with a Barnes-Hut spatial partition.
	ForceAtlas2 Algorithm = "forceatlas2"

	// Spring is a generic Fruchterman-Reingold spring layout, a
	// lighter-weight fallback for small graphs.
	Spring Algorithm = "spring"

	// Layered is a deterministic hierarchical layout: nodes are assigned
	// to rows by graph depth and ordered within each row to reduce edge
	// crossings. Structural rather than force-based placement.
	Layered Algorithm = "layered"
)

// Algorithms lists every supported selector.
var Algorithms = []Algorithm{ForceAtlas2, Spring, Layered}

// ParseAlgorithm validates a selector name. An unrecognized name is a
// CONFIGURATION error; this is checked before any computation begins.
func ParseAlgorithm(name string) (Algorithm, error) {
	for _, a := range Algorithms {
		if name == string(a) {
			return a, nil
		}
	}
	return "", errors.New(errors.CodeConfiguration,
		"unsupported layout algorithm %q (must be one of: forceatlas2, spring, layered)", name)
}

// Config carries the tuning parameters for every algorithm, replacing any
// implicit module-level defaults. Callers start from DefaultConfig and
// override fields as needed.
type Config struct {
	// ForceAtlas configures the force-directed oracle.
	ForceAtlas forceatlas.Config

	// SpringIterations is the simulation budget of the spring layout.
	SpringIterations int

	// SpringSeed pins the spring layout's initial placement.
	// Zero means a time-seeded start (not reproducible across runs).
	SpringSeed int64

	// RowGap and ColGap are the vertical and horizontal spacing of the
	// layered layout.
	RowGap, ColGap float64
}

// DefaultConfig returns the documented defaults for all algorithms.
func DefaultConfig() Config {
	return Config{
		ForceAtlas:       forceatlas.DefaultConfig(),
		SpringIterations: 50,
		RowGap:           100,
		ColGap:           100,
	}
}

// Compute returns a copy of g with x/y coordinates on every node.
//
// The selector is validated before any computation: an unknown algorithm is
// a CONFIGURATION error and the graph is never partially laid out. The
// returned graph shares no structure with the input; the input's nodes are
// left untouched.
func Compute(g *network.Graph, algo Algorithm, cfg Config) (*network.Graph, error) {
	if _, err := ParseAlgorithm(string(algo)); err != nil {
		return nil, err
	}

	out := g.Clone()

	var pos map[int64]Point
	switch algo {
	case ForceAtlas2:
		pos = forcePositions(out, cfg.ForceAtlas)
	case Spring:
		pos = springPositions(out, cfg.SpringIterations, cfg.SpringSeed)
	case Layered:
		pos = layeredPositions(out, cfg.RowGap, cfg.ColGap)
	}

	for _, n := range out.Nodes() {
		p := pos[n.ID]
		n.X, n.Y = p.X, p.Y
		n.Positioned = true
	}
	return out, nil
}

// Point is a planar coordinate pair.
type Point struct {
	X, Y float64
}

// forcePositions adapts the graph to the force-directed oracle's contract.
func forcePositions(g *network.Graph, cfg forceatlas.Config) map[int64]Point {
	ids := make([]int64, 0, g.NodeCount())
	for _, n := range g.Nodes() {
		ids = append(ids, n.ID)
	}
	edges := make([]forceatlas.Edge, 0, g.EdgeCount())
	for _, e := range g.Edges() {
		edges = append(edges, forceatlas.Edge{Source: e.Source, Target: e.Target, Weight: e.Weight})
	}

	placed := forceatlas.Layout(ids, edges, cfg)
	pos := make(map[int64]Point, len(placed))
	for id, p := range placed {
		pos[id] = Point{X: p.X, Y: p.Y}
	}
	return pos
}
