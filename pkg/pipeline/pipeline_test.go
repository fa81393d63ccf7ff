package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/ossmap/ossmap/pkg/cache"
	"github.com/ossmap/ossmap/pkg/errors"
	"github.com/ossmap/ossmap/pkg/table"
)

func testCache(t *testing.T) cache.Cache {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	return c
}

func testTables(t *testing.T) (*table.Table, *table.Table) {
	t.Helper()
	nodes, err := table.FromRecords([][]string{
		{"Id", "Label", "Licenses", "Topic"},
		{"1", "numpy", "BSD", "scientific"},
		{"2", "requests", "Apache-2.0", "http"},
		{"3", "flask", "BSD", "web"},
	})
	if err != nil {
		t.Fatalf("node table: %v", err)
	}
	edges, err := table.FromRecords([][]string{
		{"Source", "Target", "weight"},
		{"1", "2", "10"},
		{"2", "3", "50"},
	})
	if err != nil {
		t.Fatalf("edge table: %v", err)
	}
	return nodes, edges
}

func testOptions(t *testing.T) Options {
	nodes, edges := testTables(t)
	return Options{
		Nodes:      nodes,
		Edges:      edges,
		Directed:   true,
		Algorithm:  "layered",
		Formats:    []string{FormatJSON, FormatDOT},
		LayoutSeed: 7,
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := testOptions(t)
	opts.Algorithm = ""
	opts.Formats = nil

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if opts.Algorithm != "forceatlas2" {
		t.Errorf("default algorithm = %q", opts.Algorithm)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatHTML {
		t.Errorf("default formats = %v", opts.Formats)
	}
	if opts.Logger == nil {
		t.Error("logger not defaulted")
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"missing tables", func(o *Options) { o.Nodes = nil }},
		{"unknown null model", func(o *Options) { o.NullModel = "bootstrap" }},
		{"unknown algorithm", func(o *Options) { o.Algorithm = "circular" }},
		{"unknown format", func(o *Options) { o.Formats = []string{"pdf"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions(t)
			tt.mutate(&opts)
			err := opts.ValidateAndSetDefaults()
			if !errors.Is(err, errors.CodeConfiguration) {
				t.Errorf("got %v, want CONFIGURATION error", err)
			}
		})
	}
}

func TestNullModelSeedDefault(t *testing.T) {
	opts := testOptions(t)
	opts.NullModel = NullModelShuffled

	if err := opts.ValidateForBuild(); err != nil {
		t.Fatalf("ValidateForBuild: %v", err)
	}
	if opts.Seed != DefaultSeed {
		t.Errorf("seed = %d, want %d", opts.Seed, DefaultSeed)
	}
}

func TestExecute(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	defer r.Close()

	result, err := r.Execute(context.Background(), testOptions(t))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.RunID == "" {
		t.Error("missing run ID")
	}
	if result.GraphHash == "" {
		t.Error("missing graph hash")
	}
	if result.Stats.NodeCount != 3 || result.Stats.EdgeCount != 2 {
		t.Errorf("stats = %+v", result.Stats)
	}
	for _, n := range result.Graph.Nodes() {
		if n.Positioned {
			t.Error("built graph should not be positioned")
		}
	}
	for _, n := range result.Layout.Nodes() {
		if !n.Positioned {
			t.Errorf("layout node %d not positioned", n.ID)
		}
	}

	dot := string(result.Artifacts[FormatDOT])
	if !strings.Contains(dot, "numpy") {
		t.Errorf("DOT artifact missing node labels:\n%s", dot)
	}
	if len(result.Artifacts[FormatJSON]) == 0 {
		t.Error("JSON artifact empty")
	}
}

func TestExecuteNullModelPreservesTopology(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	defer r.Close()

	opts := testOptions(t)
	opts.NullModel = NullModelRandom
	opts.Seed = 99

	result, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Stats.NodeCount != 3 || result.Stats.EdgeCount != 2 {
		t.Errorf("null model changed topology: %+v", result.Stats)
	}
	for _, e := range result.Graph.Edges() {
		if e.Weight < 10 || e.Weight > 50 {
			t.Errorf("resampled weight %v outside observed range [10, 50]", e.Weight)
		}
	}
}

func TestBuildCaching(t *testing.T) {
	r := NewRunner(testCache(t), nil, nil)
	defer r.Close()
	ctx := context.Background()

	opts := testOptions(t)
	if _, hit, err := r.BuildWithCacheInfo(ctx, opts); err != nil || hit {
		t.Fatalf("first build: hit=%v err=%v", hit, err)
	}
	g, hit, err := r.BuildWithCacheInfo(ctx, opts)
	if err != nil || !hit {
		t.Fatalf("second build should hit the cache: hit=%v err=%v", hit, err)
	}
	if g.NodeCount() != 3 {
		t.Errorf("cached graph has %d nodes", g.NodeCount())
	}

	// Refresh bypasses the cache.
	opts.Refresh = true
	if _, hit, err := r.BuildWithCacheInfo(ctx, opts); err != nil || hit {
		t.Errorf("refresh build: hit=%v err=%v", hit, err)
	}

	// Different options key separately.
	opts = testOptions(t)
	opts.Directed = false
	if _, hit, err := r.BuildWithCacheInfo(ctx, opts); err != nil || hit {
		t.Errorf("undirected build should miss: hit=%v err=%v", hit, err)
	}
}

func TestLayoutCaching(t *testing.T) {
	r := NewRunner(testCache(t), nil, nil)
	defer r.Close()
	ctx := context.Background()

	opts := testOptions(t)
	g, err := r.Build(ctx, opts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	first, hit, err := r.ComputeLayoutWithCacheInfo(ctx, g, opts)
	if err != nil || hit {
		t.Fatalf("first layout: hit=%v err=%v", hit, err)
	}
	second, hit, err := r.ComputeLayoutWithCacheInfo(ctx, g, opts)
	if err != nil || !hit {
		t.Fatalf("second layout should hit the cache: hit=%v err=%v", hit, err)
	}
	for _, n := range first.Nodes() {
		other, ok := second.Node(n.ID)
		if !ok {
			t.Fatalf("node %d missing from cached layout", n.ID)
		}
		if n.X != other.X || n.Y != other.Y {
			t.Errorf("node %d: cached position differs", n.ID)
		}
	}

	opts.Refresh = true
	_, hit, err = r.ComputeLayoutWithCacheInfo(ctx, g, opts)
	if err != nil || hit {
		t.Fatalf("refresh should bypass the cache: hit=%v err=%v", hit, err)
	}
}

func TestRenderCaching(t *testing.T) {
	r := NewRunner(testCache(t), nil, nil)
	defer r.Close()
	ctx := context.Background()

	opts := testOptions(t)
	g, err := r.Build(ctx, opts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	laid, err := r.ComputeLayout(ctx, g, opts)
	if err != nil {
		t.Fatalf("ComputeLayout: %v", err)
	}

	first, hit, err := r.RenderWithCacheInfo(ctx, laid, opts)
	if err != nil || hit {
		t.Fatalf("first render: hit=%v err=%v", hit, err)
	}
	second, hit, err := r.RenderWithCacheInfo(ctx, laid, opts)
	if err != nil || !hit {
		t.Fatalf("second render should hit the cache: hit=%v err=%v", hit, err)
	}
	for _, format := range opts.Formats {
		if string(first[format]) != string(second[format]) {
			t.Errorf("format %s: cached artifact differs", format)
		}
	}

	opts.Refresh = true
	_, hit, err = r.RenderWithCacheInfo(ctx, laid, opts)
	if err != nil || hit {
		t.Fatalf("refresh should bypass the cache: hit=%v err=%v", hit, err)
	}
}

func TestCompare(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	defer r.Close()
	ctx := context.Background()

	g, err := r.Build(ctx, testOptions(t))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	report, err := r.Compare(ctx, g, g.Clone())
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if len(report) != 6 {
		t.Fatalf("report has %d rows", len(report))
	}
	if report[0].Percentage != 100 {
		t.Errorf("GCC node share = %v, want 100", report[0].Percentage)
	}
}
