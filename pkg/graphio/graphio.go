// Package graphio is the canonical serialization format for attributed
// network graphs. Used for CLI files, layout caching, and storage backends.
//
// The format is human-readable JSON (bson tags support document stores) and
// designed for round-trip fidelity: build → serialize → deserialize produces
// an identical graph, including node and edge order.
package graphio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"

	"github.com/ossmap/ossmap/pkg/network"
)

// Graph is the serialized form of a network graph.
type Graph struct {
	Directed bool   `json:"directed" bson:"directed"`
	Nodes    []Node `json:"nodes" bson:"nodes"`
	Edges    []Edge `json:"edges" bson:"edges"`
}

// Node is the serialized form of a network node.
type Node struct {
	ID         int64             `json:"id" bson:"id"`
	Label      string            `json:"label,omitempty" bson:"label,omitempty"`
	Licenses   string            `json:"licenses,omitempty" bson:"licenses,omitempty"`
	Attrs      map[string]string `json:"attrs,omitempty" bson:"attrs,omitempty"`
	X          float64           `json:"x,omitempty" bson:"x,omitempty"`
	Y          float64           `json:"y,omitempty" bson:"y,omitempty"`
	Positioned bool              `json:"positioned,omitempty" bson:"positioned,omitempty"`
}

// Edge is the serialized form of a network edge.
type Edge struct {
	Source   int64             `json:"source" bson:"source"`
	Target   int64             `json:"target" bson:"target"`
	Weight   float64           `json:"weight" bson:"weight"`
	Weighted bool              `json:"weighted,omitempty" bson:"weighted,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty" bson:"attrs,omitempty"`
}

// FromNetwork converts a network graph to its serialization format.
// Node and edge order follows the graph's insertion order, so output is
// deterministic for a given graph.
func FromNetwork(g *network.Graph) Graph {
	out := Graph{
		Directed: g.IsDirected(),
		Nodes:    make([]Node, 0, g.NodeCount()),
		Edges:    make([]Edge, 0, g.EdgeCount()),
	}
	for _, n := range g.Nodes() {
		out.Nodes = append(out.Nodes, Node{
			ID:         n.ID,
			Label:      n.Label,
			Licenses:   n.Licenses,
			Attrs:      cloneAttrs(n.Attrs),
			X:          n.X,
			Y:          n.Y,
			Positioned: n.Positioned,
		})
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, Edge{
			Source:   e.Source,
			Target:   e.Target,
			Weight:   e.Weight,
			Weighted: e.Weighted,
			Attrs:    cloneAttrs(e.Attrs),
		})
	}
	return out
}

// ToNetwork converts a serialized graph back to a network graph.
// Returns an error when node identifiers collide.
func ToNetwork(gj Graph) (*network.Graph, error) {
	g := network.New(gj.Directed)
	for _, nj := range gj.Nodes {
		if err := g.AddNode(network.Node{
			ID:         nj.ID,
			Label:      nj.Label,
			Licenses:   nj.Licenses,
			Attrs:      network.Attrs(maps.Clone(nj.Attrs)),
			X:          nj.X,
			Y:          nj.Y,
			Positioned: nj.Positioned,
		}); err != nil {
			return nil, fmt.Errorf("add node %d: %w", nj.ID, err)
		}
	}
	for _, ej := range gj.Edges {
		g.AddEdge(network.Edge{
			Source:   ej.Source,
			Target:   ej.Target,
			Weight:   ej.Weight,
			Weighted: ej.Weighted,
			Attrs:    network.Attrs(maps.Clone(ej.Attrs)),
		})
	}
	return g, nil
}

// Marshal converts a network graph to indented JSON bytes.
func Marshal(g *network.Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes JSON bytes into a network graph.
func Unmarshal(data []byte) (*network.Graph, error) {
	return Read(bytes.NewReader(data))
}

// Write writes a network graph as JSON to an io.Writer.
func Write(g *network.Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromNetwork(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Read decodes a JSON graph from an io.Reader into a network graph.
func Read(r io.Reader) (*network.Graph, error) {
	var data Graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return ToNetwork(data)
}

// WriteFile writes a network graph to a JSON file with 0644 permissions.
func WriteFile(g *network.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(g, f)
}

// ReadFile reads a JSON file and returns the decoded network graph.
func ReadFile(path string) (*network.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

func cloneAttrs(a network.Attrs) map[string]string {
	if len(a) == 0 {
		return nil
	}
	return maps.Clone(map[string]string(a))
}
