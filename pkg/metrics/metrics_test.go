package metrics

import (
	"math"
	"testing"

	"github.com/ossmap/ossmap/pkg/errors"
	"github.com/ossmap/ossmap/pkg/network"
)

// chain builds the 3-node test network 1-2 (weight 10), 2-3 (weight 50).
func chain(t *testing.T) *network.Graph {
	t.Helper()
	g := network.New(true)
	for i := int64(1); i <= 3; i++ {
		if err := g.AddNode(network.Node{ID: i, Label: "n", Licenses: "MIT"}); err != nil {
			t.Fatalf("AddNode: %v", err)
		}
	}
	g.AddEdge(network.Edge{Source: 1, Target: 2, Weight: 10, Weighted: true})
	g.AddEdge(network.Edge{Source: 2, Target: 3, Weight: 50, Weighted: true})
	return g
}

func approx(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}

func TestCompareIdenticalNetworks(t *testing.T) {
	original := chain(t)
	report, err := Compare(original, original.Clone())
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if len(report) != 6 {
		t.Fatalf("report has %d rows, want 6", len(report))
	}

	want := []Metric{
		{MetricGCCNodes, 100},
		{MetricBackboneNodes, 100},
		{MetricGCCEdgesRemoved, 0},
		{MetricBackboneEdges, 0},
		{MetricGCCWeightRemoved, 0},
		{MetricBackboneWeight, 0},
	}
	for i, w := range want {
		if report[i].Name != w.Name {
			t.Errorf("row %d: name %q, want %q", i, report[i].Name, w.Name)
		}
		if !approx(report[i].Percentage, w.Percentage) {
			t.Errorf("%s = %v, want %v", w.Name, report[i].Percentage, w.Percentage)
		}
	}
}

func TestCompareReducedBackbone(t *testing.T) {
	original := chain(t)

	// Same nodes, but the (2, 3) edge is dropped from the backbone.
	backbone := network.New(true)
	for _, n := range original.Nodes() {
		if err := backbone.AddNode(network.Node{ID: n.ID, Label: n.Label, Licenses: n.Licenses}); err != nil {
			t.Fatalf("AddNode: %v", err)
		}
	}
	backbone.AddEdge(network.Edge{Source: 1, Target: 2, Weight: 10, Weighted: true})

	report, err := Compare(original, backbone)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}

	byName := map[string]float64{}
	for _, m := range report {
		byName[m.Name] = m.Percentage
	}
	if got := byName[MetricBackboneNodes]; !approx(got, 100) {
		t.Errorf("backbone node share = %v, want 100", got)
	}
	if got := byName[MetricBackboneEdges]; !approx(got, 50) {
		t.Errorf("backbone edges removed = %v, want 50", got)
	}
	if got := byName[MetricBackboneWeight]; !approx(got, 100.0*50/60) {
		t.Errorf("backbone weight removed = %v, want %v", got, 100.0*50/60)
	}
}

func TestCompareGCCExcludesDisconnectedPart(t *testing.T) {
	g := chain(t)
	// A detached pair far from the chain.
	for i := int64(4); i <= 5; i++ {
		if err := g.AddNode(network.Node{ID: i, Label: "n", Licenses: "MIT"}); err != nil {
			t.Fatalf("AddNode: %v", err)
		}
	}
	g.AddEdge(network.Edge{Source: 4, Target: 5, Weight: 40, Weighted: true})

	report, err := Compare(g, g.Clone())
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	byName := map[string]float64{}
	for _, m := range report {
		byName[m.Name] = m.Percentage
	}
	if got := byName[MetricGCCNodes]; !approx(got, 60) {
		t.Errorf("GCC node share = %v, want 60", got)
	}
	if got := byName[MetricGCCEdgesRemoved]; !approx(got, 100.0/3) {
		t.Errorf("GCC edges removed = %v, want %v", got, 100.0/3)
	}
	if got := byName[MetricGCCWeightRemoved]; !approx(got, 40) {
		t.Errorf("GCC weight removed = %v, want 40", got)
	}
}

func TestCompareWeakConnectivity(t *testing.T) {
	// 1 -> 2 <- 3 is weakly but not strongly connected. GCC must still
	// span all three nodes.
	g := network.New(true)
	for i := int64(1); i <= 3; i++ {
		if err := g.AddNode(network.Node{ID: i, Label: "n", Licenses: "MIT"}); err != nil {
			t.Fatalf("AddNode: %v", err)
		}
	}
	g.AddEdge(network.Edge{Source: 1, Target: 2, Weight: 1, Weighted: true})
	g.AddEdge(network.Edge{Source: 3, Target: 2, Weight: 1, Weighted: true})

	report, err := Compare(g, g.Clone())
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if got := report[0].Percentage; !approx(got, 100) {
		t.Errorf("GCC node share = %v, want 100", got)
	}
}

func TestCompareMissingWeight(t *testing.T) {
	original := chain(t)

	empty := network.New(true)
	empty.AddNode(network.Node{ID: 1, Label: "n", Licenses: "MIT"})
	if _, err := Compare(empty, original); !errors.Is(err, errors.CodeMissingWeight) {
		t.Errorf("edgeless original: got %v, want MISSING_WEIGHT", err)
	}

	unweighted := chain(t)
	unweighted.AddEdge(network.Edge{Source: 1, Target: 3})
	if _, err := Compare(unweighted, original); !errors.Is(err, errors.CodeMissingWeight) {
		t.Errorf("unweighted edge in original: got %v, want MISSING_WEIGHT", err)
	}
	if _, err := Compare(original, unweighted); !errors.Is(err, errors.CodeMissingWeight) {
		t.Errorf("unweighted edge in backbone: got %v, want MISSING_WEIGHT", err)
	}
}

func TestCompareZeroWeight(t *testing.T) {
	g := network.New(true)
	for i := int64(1); i <= 2; i++ {
		if err := g.AddNode(network.Node{ID: i, Label: "n", Licenses: "MIT"}); err != nil {
			t.Fatalf("AddNode: %v", err)
		}
	}
	g.AddEdge(network.Edge{Source: 1, Target: 2, Weight: 0, Weighted: true})

	report, err := Compare(g, g.Clone())
	if !errors.Is(err, errors.CodeDivisionByZero) {
		t.Errorf("zero total weight: got %v, want DIVISION_BY_ZERO", err)
	}
	if report != nil {
		t.Errorf("got a report alongside the error: %v", report)
	}
}
