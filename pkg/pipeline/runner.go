package pipeline

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/ossmap/ossmap/pkg/cache"
	"github.com/ossmap/ossmap/pkg/errors"
	"github.com/ossmap/ossmap/pkg/graphio"
	"github.com/ossmap/ossmap/pkg/layout"
	"github.com/ossmap/ossmap/pkg/metrics"
	"github.com/ossmap/ossmap/pkg/network"
	"github.com/ossmap/ossmap/pkg/observability"
	"github.com/ossmap/ossmap/pkg/render"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger; it stores no
// pipeline results. Multiple goroutines can safely share one Runner with
// different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs the complete build → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.CodeConfiguration, err, "invalid options")
	}
	r.applyLogger(&opts)

	result := &Result{
		RunID:     uuid.NewString(),
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Build
	buildStart := time.Now()
	g, buildHit, err := r.BuildWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, wrapStage(err, "build")
	}
	result.Graph = g
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()
	result.CacheInfo.BuildHit = buildHit

	if data, err := graphio.Marshal(g); err == nil {
		result.GraphHash = cache.Hash(data)
	}

	r.Logger.Info("built network",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"cached", buildHit,
		"duration", result.Stats.BuildTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	laid, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, wrapStage(err, "layout")
	}
	result.Layout = laid
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"algorithm", opts.Algorithm,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, laid, opts)
	if err != nil {
		return nil, wrapStage(err, "render")
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered artifacts",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// BuildWithCacheInfo builds the network with caching and reports whether
// the result came from cache.
func (r *Runner) BuildWithCacheInfo(ctx context.Context, opts Options) (*network.Graph, bool, error) {
	if err := opts.ValidateForBuild(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	cacheKey := r.Keyer.GraphKey(tableHash(opts), opts.GraphKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if g, err := graphio.Unmarshal(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "graph")
				return g, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "graph")
	}

	start := time.Now()
	observability.Pipeline().OnBuildStart(ctx, opts.Directed, opts.NullModel)
	g, err := buildGraph(opts)
	if err != nil {
		observability.Pipeline().OnBuildComplete(ctx, 0, 0, time.Since(start), err)
		return nil, false, err
	}
	observability.Pipeline().OnBuildComplete(ctx, g.NodeCount(), g.EdgeCount(), time.Since(start), nil)

	if data, err := graphio.Marshal(g); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLGraph)
		observability.Cache().OnCacheSet(ctx, "graph", len(data))
	}

	return g, false, nil
}

// Build is a convenience wrapper that discards the cache hit info.
func (r *Runner) Build(ctx context.Context, opts Options) (*network.Graph, error) {
	g, _, err := r.BuildWithCacheInfo(ctx, opts)
	return g, err
}

// ComputeLayoutWithCacheInfo computes a layout with caching and reports
// whether the result came from cache.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, g *network.Graph, opts Options) (*network.Graph, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	graphData, err := graphio.Marshal(g)
	if err != nil {
		return nil, false, err
	}
	cacheKey := r.Keyer.LayoutKey(cache.Hash(graphData), opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if cached, err := graphio.Unmarshal(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return cached, true, nil
			}
			// Fall through and recompute on a corrupt entry.
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	start := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, opts.Algorithm, g.NodeCount())
	laid, err := layout.Compute(g, layout.Algorithm(opts.Algorithm), opts.LayoutConfig())
	observability.Pipeline().OnLayoutComplete(ctx, opts.Algorithm, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if data, err := graphio.Marshal(laid); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
		observability.Cache().OnCacheSet(ctx, "layout", len(data))
	}

	return laid, false, nil
}

// ComputeLayout is a convenience wrapper that discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, g *network.Graph, opts Options) (*network.Graph, error) {
	laid, _, err := r.ComputeLayoutWithCacheInfo(ctx, g, opts)
	return laid, err
}

// RenderWithCacheInfo renders artifacts with caching and reports whether
// every artifact came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *network.Graph, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	graphData, err := graphio.Marshal(g)
	if err != nil {
		return nil, false, err
	}
	layoutHash := cache.Hash(graphData)

	if !opts.Refresh {
		allCached := true
		artifacts := make(map[string][]byte)
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				artifacts[format] = data
			} else {
				allCached = false
				break
			}
		}
		if allCached && len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	rendered, err := renderFormats(ctx, g, opts.Formats)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, g *network.Graph, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, g, opts)
	return artifacts, err
}

// Compare computes the backbone metrics between two networks, instrumented
// but never cached: the computation is cheap relative to serialization.
func (r *Runner) Compare(ctx context.Context, original, backbone *network.Graph) (metrics.Report, error) {
	start := time.Now()
	observability.Pipeline().OnMetricsStart(ctx, original.NodeCount(), backbone.NodeCount())
	report, err := metrics.Compare(original, backbone)
	observability.Pipeline().OnMetricsComplete(ctx, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	r.Logger.Info("computed backbone metrics", "rows", len(report), "duration", time.Since(start))
	return report, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// wrapStage prefixes an error with its pipeline stage while preserving the
// original error code.
func wrapStage(err error, stage string) error {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.CodeInternal
	}
	return errors.Wrap(code, err, "%s", stage)
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// buildGraph dispatches to the requested builder variant.
func buildGraph(opts Options) (*network.Graph, error) {
	switch opts.NullModel {
	case NullModelShuffled:
		return network.BuildShuffledWeights(opts.Nodes, opts.Edges, opts.Directed,
			rand.New(rand.NewSource(opts.Seed)))
	case NullModelRandom:
		return network.BuildRandomWeights(opts.Nodes, opts.Edges, opts.Directed,
			rand.New(rand.NewSource(opts.Seed)))
	default:
		return network.Build(opts.Nodes, opts.Edges, opts.Directed)
	}
}

// renderFormats produces each requested artifact from the label-keyed view
// of the network.
func renderFormats(ctx context.Context, g *network.Graph, formats []string) (map[string][]byte, error) {
	lg, err := render.LabelKeyed(g)
	if err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(formats))
	for _, format := range formats {
		switch format {
		case FormatHTML:
			data, err := render.HTML(lg)
			if err != nil {
				return nil, err
			}
			artifacts[format] = data
		case FormatSVG:
			data, err := render.RenderSVG(ctx, lg)
			if err != nil {
				return nil, err
			}
			artifacts[format] = data
		case FormatDOT:
			artifacts[format] = []byte(render.ToDOT(lg))
		case FormatJSON:
			data, err := graphio.Marshal(g)
			if err != nil {
				return nil, err
			}
			artifacts[format] = data
		}
	}
	return artifacts, nil
}

// tableHash fingerprints the input tables for cache keying.
func tableHash(opts Options) string {
	payload, _ := json.Marshal([2][][]string{opts.Nodes.Records(), opts.Edges.Records()})
	return cache.Hash(payload)
}
