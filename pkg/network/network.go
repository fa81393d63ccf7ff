// Package network provides the attributed dependency-network graph and its
// construction from tabular node and edge lists.
//
// A Graph is directed or undirected and carries one Node per node-table row
// and one Edge per edge-table row, in table row order. Known attributes are
// typed fields (ID, Label, Licenses, Weight); every other source column lands
// in an open string-keyed extension map with lower-cased keys.
//
// The builder owns the graph it returns. Downstream consumers treat it as
// immutable: the layout engine positions a deep copy, and the metrics and
// export layers only read.
package network

import (
	"maps"
	"slices"

	"github.com/ossmap/ossmap/pkg/errors"
)

// Attrs stores extension attributes attached to a node or edge. Keys are
// lower-cased source column names. Attrs maps are never nil after AddNode
// or AddEdge - they are automatically initialized to empty maps.
type Attrs map[string]string

// Node represents a package (or project) in the dependency network.
//
// ID, Label, and Licenses come from the required node-table columns; any
// further columns live in Attrs. X, Y, and Positioned are set only by the
// layout engine, and only ever on a copy of the caller's graph.
type Node struct {
	ID       int64  // Unique identifier (node-table "Id")
	Label    string // Human-readable name (node-table "Label")
	Licenses string // License expression (node-table "Licenses")
	Attrs    Attrs  // Extension attributes, lower-cased keys

	X, Y       float64 // Planar coordinates, unbounded
	Positioned bool    // Whether X/Y carry a computed layout
}

// Edge represents a weighted connection between two nodes.
//
// Both endpoints must reference existing node identifiers. This is a
// documented precondition, not validated here: a dangling endpoint yields an
// inconsistent graph rather than an error, matching the builder's contract.
type Edge struct {
	Source   int64   // Source node ID (edge-table "Source")
	Target   int64   // Target node ID (edge-table "Target")
	Weight   float64 // Edge weight (edge-table "weight")
	Weighted bool    // Whether Weight was actually assigned
	Attrs    Attrs   // Extension attributes, lower-cased keys
}

// Graph is a directed or undirected attributed graph over int64-keyed nodes.
//
// Node and edge iteration order is insertion order, which the builder ties to
// table row order. The zero value is not usable - use New.
// Graph is not safe for concurrent mutation without external synchronization.
type Graph struct {
	directed bool
	nodes    map[int64]*Node
	order    []int64
	edges    []*Edge
	outgoing map[int64][]int64
	incoming map[int64][]int64
}

// New creates an empty graph, directed or undirected.
func New(directed bool) *Graph {
	return &Graph{
		directed: directed,
		nodes:    make(map[int64]*Node),
		outgoing: make(map[int64][]int64),
		incoming: make(map[int64][]int64),
	}
}

// IsDirected reports whether edges are interpreted as directed.
func (g *Graph) IsDirected() bool { return g.directed }

// AddNode adds a node to the graph. Returns an INVALID_INPUT error when the
// identifier is already present; identifiers are unique across the node set.
// The node's Attrs field is initialized to an empty map if nil.
func (g *Graph) AddNode(n Node) error {
	if _, exists := g.nodes[n.ID]; exists {
		return errors.New(errors.CodeInvalidInput, "duplicate node ID %d", n.ID)
	}
	if n.Attrs == nil {
		n.Attrs = Attrs{}
	}
	node := &n
	g.nodes[node.ID] = node
	g.order = append(g.order, node.ID)
	return nil
}

// AddEdge adds an edge between two node identifiers. Endpoint existence is a
// documented precondition of the caller and is not checked. The edge's Attrs
// field is initialized to an empty map if nil.
func (g *Graph) AddEdge(e Edge) {
	if e.Attrs == nil {
		e.Attrs = Attrs{}
	}
	edge := &e
	g.edges = append(g.edges, edge)
	g.outgoing[edge.Source] = append(g.outgoing[edge.Source], edge.Target)
	g.incoming[edge.Target] = append(g.incoming[edge.Target], edge.Source)
}

// Node returns the node with the given ID and true, or nil and false.
// The pointer refers to the actual node in the graph.
func (g *Graph) Node(id int64) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion (table row) order.
// The returned slice contains pointers to the actual node structs.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

// Edges returns all edges in insertion (table row) order.
// The slice is a copy; its elements point to the actual edge structs.
func (g *Graph) Edges() []*Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Degree returns the number of edge endpoints touching the node. For
// directed graphs this is in-degree plus out-degree; a self-loop counts
// twice either way.
func (g *Graph) Degree(id int64) int {
	return len(g.outgoing[id]) + len(g.incoming[id])
}

// Neighbors returns the IDs adjacent to the node, outgoing first.
// Returns nil for an isolated or unknown node.
func (g *Graph) Neighbors(id int64) []int64 {
	out := g.outgoing[id]
	in := g.incoming[id]
	if len(out)+len(in) == 0 {
		return nil
	}
	neighbors := make([]int64, 0, len(out)+len(in))
	neighbors = append(neighbors, out...)
	neighbors = append(neighbors, in...)
	return neighbors
}

// TotalWeight returns the sum of all edge weights.
func (g *Graph) TotalWeight() float64 {
	var total float64
	for _, e := range g.edges {
		total += e.Weight
	}
	return total
}

// Clone returns a deep copy of the graph: nodes, edges, and their attribute
// maps are all duplicated. Mutating the copy never affects the original,
// which is what lets layouts be compared side by side against one base graph.
func (g *Graph) Clone() *Graph {
	out := New(g.directed)
	for _, id := range g.order {
		n := *g.nodes[id]
		n.Attrs = maps.Clone(n.Attrs)
		if err := out.AddNode(n); err != nil {
			// Unreachable: source IDs are unique by construction.
			panic(err)
		}
	}
	for _, e := range g.edges {
		edge := *e
		edge.Attrs = maps.Clone(edge.Attrs)
		out.AddEdge(edge)
	}
	return out
}
