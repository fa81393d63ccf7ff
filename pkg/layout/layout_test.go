package layout

import (
	"testing"

	"github.com/ossmap/ossmap/pkg/errors"
	"github.com/ossmap/ossmap/pkg/network"
)

func nodeAt(t *testing.T, g *network.Graph, id int64) *network.Node {
	t.Helper()
	n, ok := g.Node(id)
	if !ok {
		t.Fatalf("node %d missing", id)
	}
	return n
}

func chainGraph(t *testing.T, directed bool) *network.Graph {
	t.Helper()
	g := network.New(directed)
	labels := []string{"numpy", "requests", "flask"}
	for i, label := range labels {
		if err := g.AddNode(network.Node{ID: int64(i + 1), Label: label, Licenses: "MIT"}); err != nil {
			t.Fatalf("AddNode: %v", err)
		}
	}
	g.AddEdge(network.Edge{Source: 1, Target: 2, Weight: 10, Weighted: true})
	g.AddEdge(network.Edge{Source: 2, Target: 3, Weight: 50, Weighted: true})
	return g
}

func TestParseAlgorithm(t *testing.T) {
	for _, a := range Algorithms {
		got, err := ParseAlgorithm(string(a))
		if err != nil {
			t.Errorf("ParseAlgorithm(%q): %v", a, err)
		}
		if got != a {
			t.Errorf("ParseAlgorithm(%q) = %q", a, got)
		}
	}

	_, err := ParseAlgorithm("circular")
	if !errors.Is(err, errors.CodeConfiguration) {
		t.Fatalf("expected CONFIGURATION error, got %v", err)
	}
}

func TestComputeRejectsUnknownAlgorithm(t *testing.T) {
	g := chainGraph(t, true)
	_, err := Compute(g, Algorithm("circular"), DefaultConfig())
	if !errors.Is(err, errors.CodeConfiguration) {
		t.Fatalf("expected CONFIGURATION error, got %v", err)
	}
}

func TestComputePositionsEveryNode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ForceAtlas.Iterations = 20
	cfg.ForceAtlas.Seed = 7
	cfg.SpringSeed = 7

	for _, algo := range Algorithms {
		g := chainGraph(t, true)
		out, err := Compute(g, algo, cfg)
		if err != nil {
			t.Fatalf("Compute(%q): %v", algo, err)
		}
		if out.NodeCount() != g.NodeCount() || out.EdgeCount() != g.EdgeCount() {
			t.Fatalf("Compute(%q) changed graph shape", algo)
		}
		for _, n := range out.Nodes() {
			if !n.Positioned {
				t.Errorf("Compute(%q): node %d not positioned", algo, n.ID)
			}
		}
	}
}

func TestComputeDoesNotMutateInput(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ForceAtlas.Iterations = 20
	cfg.ForceAtlas.Seed = 7
	cfg.SpringSeed = 7

	for _, algo := range Algorithms {
		g := chainGraph(t, true)
		nodeAt(t, g, 1).Attrs["stars"] = "1200"

		out, err := Compute(g, algo, cfg)
		if err != nil {
			t.Fatalf("Compute(%q): %v", algo, err)
		}

		for _, n := range g.Nodes() {
			if n.Positioned || n.X != 0 || n.Y != 0 {
				t.Errorf("Compute(%q) mutated input node %d", algo, n.ID)
			}
		}
		if nodeAt(t, g, 1).Attrs["stars"] != "1200" {
			t.Errorf("Compute(%q) mutated input attributes", algo)
		}
		nodeAt(t, out, 1).Attrs["stars"] = "overwritten"
		if nodeAt(t, g, 1).Attrs["stars"] != "1200" {
			t.Errorf("Compute(%q) output shares attribute storage with input", algo)
		}
	}
}

func TestForceAtlasSeedDeterminism(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ForceAtlas.Iterations = 30
	cfg.ForceAtlas.Seed = 42

	g := chainGraph(t, true)
	first, err := Compute(g, ForceAtlas2, cfg)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	second, err := Compute(g, ForceAtlas2, cfg)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for _, n := range first.Nodes() {
		other := nodeAt(t, second, n.ID)
		if n.X != other.X || n.Y != other.Y {
			t.Errorf("node %d: (%v,%v) != (%v,%v) across seeded runs", n.ID, n.X, n.Y, other.X, other.Y)
		}
	}
}

func TestSpringSeedDeterminism(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SpringSeed = 42

	g := chainGraph(t, false)
	first, err := Compute(g, Spring, cfg)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	second, err := Compute(g, Spring, cfg)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for _, n := range first.Nodes() {
		other := nodeAt(t, second, n.ID)
		if n.X != other.X || n.Y != other.Y {
			t.Errorf("node %d differs across seeded runs", n.ID)
		}
	}
}

func TestSpringPositionsReproducible(t *testing.T) {
	g := chainGraph(t, false)

	// Centering sums follow node order, so two seeded runs must agree
	// bit for bit.
	a := springPositions(g, 50, 42)
	b := springPositions(g, 50, 42)
	for id, p := range a {
		if b[id] != p {
			t.Errorf("node %d: %v != %v with the same seed", id, p, b[id])
		}
	}
}

func TestLayeredRowsFollowEdges(t *testing.T) {
	g := chainGraph(t, true)
	out, err := Compute(g, Layered, DefaultConfig())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	// 1 -> 2 -> 3 is a chain: one node per row, rows 100 apart.
	wantY := map[int64]float64{1: 0, 2: 100, 3: 200}
	for id, want := range wantY {
		if got := nodeAt(t, out, id).Y; got != want {
			t.Errorf("node %d: y = %v, want %v", id, got, want)
		}
		if got := nodeAt(t, out, id).X; got != 0 {
			t.Errorf("node %d: x = %v, want 0 (single-node row)", id, got)
		}
	}

	// Same graph, same result: the layered layout has no random state.
	again, err := Compute(g, Layered, DefaultConfig())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for _, n := range out.Nodes() {
		other := nodeAt(t, again, n.ID)
		if n.X != other.X || n.Y != other.Y {
			t.Errorf("node %d differs across runs", n.ID)
		}
	}
}

func TestLayeredUndirectedUsesBFSDepth(t *testing.T) {
	g := chainGraph(t, false)
	out, err := Compute(g, Layered, DefaultConfig())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	// BFS from node 1: depth 0, 1, 2.
	wantY := map[int64]float64{1: 0, 2: 100, 3: 200}
	for id, want := range wantY {
		if got := nodeAt(t, out, id).Y; got != want {
			t.Errorf("node %d: y = %v, want %v", id, got, want)
		}
	}
}

func TestSpringSeparatesNodes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SpringSeed = 7

	g := chainGraph(t, false)
	out, err := Compute(g, Spring, cfg)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	seen := map[[2]float64]int64{}
	for _, n := range out.Nodes() {
		key := [2]float64{n.X, n.Y}
		if prev, ok := seen[key]; ok {
			t.Errorf("nodes %d and %d share position (%v,%v)", prev, n.ID, n.X, n.Y)
		}
		seen[key] = n.ID
	}
}
