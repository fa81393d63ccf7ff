package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ossmap/ossmap/pkg/errors"
	"github.com/ossmap/ossmap/pkg/network"
)

func labeled(t *testing.T) *network.Graph {
	t.Helper()
	g := network.New(true)
	labels := []string{"numpy", "requests", "flask"}
	for i, label := range labels {
		err := g.AddNode(network.Node{
			ID:       int64(i + 1),
			Label:    label,
			Licenses: "MIT",
			Attrs:    map[string]string{"topic": "web"},
		})
		if err != nil {
			t.Fatalf("AddNode: %v", err)
		}
	}
	g.AddEdge(network.Edge{Source: 1, Target: 2, Weight: 10, Weighted: true})
	g.AddEdge(network.Edge{Source: 2, Target: 3, Weight: 50, Weighted: true})
	return g
}

func TestLabelKeyed(t *testing.T) {
	g := labeled(t)
	lg, err := LabelKeyed(g)
	if err != nil {
		t.Fatalf("LabelKeyed: %v", err)
	}

	if !lg.Directed {
		t.Error("directedness not preserved")
	}
	wantNodes := []string{"numpy", "requests", "flask"}
	if len(lg.Nodes) != len(wantNodes) {
		t.Fatalf("got %d nodes, want %d", len(lg.Nodes), len(wantNodes))
	}
	for i, want := range wantNodes {
		if lg.Nodes[i].Label != want {
			t.Errorf("node %d: label %q, want %q", i, lg.Nodes[i].Label, want)
		}
		if lg.Nodes[i].Attrs["topic"] != "web" {
			t.Errorf("node %d: attributes not preserved", i)
		}
	}

	if len(lg.Edges) != 2 {
		t.Fatalf("got %d edges, want 2", len(lg.Edges))
	}
	first := lg.Edges[0]
	if first.Source != "numpy" || first.Target != "requests" || first.Weight != 10 {
		t.Errorf("edge 0 = %+v, want numpy->requests weight 10", first)
	}
}

func TestLabelKeyedDoesNotShareAttrStorage(t *testing.T) {
	g := labeled(t)
	lg, err := LabelKeyed(g)
	if err != nil {
		t.Fatalf("LabelKeyed: %v", err)
	}
	lg.Nodes[0].Attrs["topic"] = "overwritten"
	n, _ := g.Node(1)
	if n.Attrs["topic"] != "web" {
		t.Error("label graph shares attribute storage with source network")
	}
}

func TestLabelKeyedMissingLabel(t *testing.T) {
	g := network.New(true)
	if err := g.AddNode(network.Node{ID: 7, Licenses: "MIT"}); err != nil {
		t.Fatalf("AddNode: %v", err)
	}

	_, err := LabelKeyed(g)
	if !errors.Is(err, errors.CodeMissingAttribute) {
		t.Fatalf("got %v, want MISSING_ATTRIBUTE", err)
	}
	if !strings.Contains(err.Error(), "7") {
		t.Errorf("error %q does not name the offending node", err)
	}
}

func TestLabelKeyedDuplicateLabel(t *testing.T) {
	g := network.New(true)
	g.AddNode(network.Node{ID: 1, Label: "numpy", Licenses: "MIT"})
	g.AddNode(network.Node{ID: 2, Label: "numpy", Licenses: "BSD"})

	_, err := LabelKeyed(g)
	if !errors.Is(err, errors.CodeDuplicateLabel) {
		t.Fatalf("got %v, want DUPLICATE_LABEL", err)
	}
}

func TestWriteHTML(t *testing.T) {
	g := labeled(t)
	lg, err := LabelKeyed(g)
	if err != nil {
		t.Fatalf("LabelKeyed: %v", err)
	}

	dir := filepath.Join(t.TempDir(), "artifacts")
	path, err := WriteHTML(lg, dir, "network.html")
	if err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}
	if path != filepath.Join(dir, "network.html") {
		t.Errorf("artifact path = %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading artifact: %v", err)
	}
	html := string(data)
	for _, label := range []string{"numpy", "requests", "flask"} {
		if !strings.Contains(html, label) {
			t.Errorf("artifact missing node %q", label)
		}
	}
}

func TestToDOT(t *testing.T) {
	g := labeled(t)
	lg, err := LabelKeyed(g)
	if err != nil {
		t.Fatalf("LabelKeyed: %v", err)
	}

	dot := ToDOT(lg)
	if !strings.HasPrefix(dot, "digraph G {") {
		t.Errorf("directed network should render as digraph, got %q", dot[:20])
	}
	if !strings.Contains(dot, `"numpy" -> "requests" [weight=10, label="10"];`) {
		t.Errorf("missing weighted edge in DOT output:\n%s", dot)
	}

	undirected := network.New(false)
	undirected.AddNode(network.Node{ID: 1, Label: "a", Licenses: "MIT"})
	undirected.AddNode(network.Node{ID: 2, Label: "b", Licenses: "MIT"})
	undirected.AddEdge(network.Edge{Source: 1, Target: 2, Weight: 1, Weighted: true})
	ulg, err := LabelKeyed(undirected)
	if err != nil {
		t.Fatalf("LabelKeyed: %v", err)
	}
	udot := ToDOT(ulg)
	if !strings.HasPrefix(udot, "graph G {") || !strings.Contains(udot, `"a" -- "b"`) {
		t.Errorf("undirected DOT output wrong:\n%s", udot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	for _, in := range []string{
		`<svg width="10pt" viewBox="4.00 8.00 100.00 50.00">content</svg>`,
		`<svg width="10pt" viewBox="-4.00 -8.00 100.00 50.00">content</svg>`,
	} {
		out := string(normalizeViewBox([]byte(in)))
		if !strings.Contains(out, `viewBox="0 0 100.00 50.00"`) {
			t.Errorf("viewBox not normalized: %s", out)
		}
		if !strings.Contains(out, "content</svg>") {
			t.Errorf("content lost: %s", out)
		}
	}
}
