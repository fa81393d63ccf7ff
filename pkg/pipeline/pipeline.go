// Package pipeline runs the complete build → layout → render flow.
//
// Centralizing the flow here keeps CLI and any future entry points
// consistent: each stage validates its options, checks the cache, computes
// on a miss, and stores the result for later reuse. Stages can also be run
// independently against pre-built inputs.
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Nodes:    nodeTable,
//	    Edges:    edgeTable,
//	    Directed: true,
//	    Formats:  []string{"html"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	html := result.Artifacts["html"]
//
// Run individual stages:
//
//	g, err := runner.Build(ctx, opts)
//	laid, err := runner.ComputeLayout(ctx, g, opts)
//	artifacts, err := runner.Render(ctx, laid, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ossmap/ossmap/pkg/cache"
	"github.com/ossmap/ossmap/pkg/errors"
	"github.com/ossmap/ossmap/pkg/layout"
	"github.com/ossmap/ossmap/pkg/metrics"
	"github.com/ossmap/ossmap/pkg/network"
	"github.com/ossmap/ossmap/pkg/table"
)

// Null model selectors for the build stage.
const (
	// NullModelNone keeps the observed edge weights.
	NullModelNone = ""

	// NullModelShuffled permutes the observed weights across edges.
	NullModelShuffled = "shuffled"

	// NullModelRandom resamples each weight uniformly from the observed
	// range.
	NullModelRandom = "random"
)

// ValidNullModels is the set of supported null model selectors.
var ValidNullModels = map[string]bool{
	NullModelNone:     true,
	NullModelShuffled: true,
	NullModelRandom:   true,
}

// Format constants for rendered artifacts.
const (
	FormatHTML = "html"
	FormatSVG  = "svg"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatHTML: true,
	FormatSVG:  true,
	FormatDOT:  true,
	FormatJSON: true,
}

// DefaultSeed is the default random seed for the null model builders,
// chosen non-zero so default runs are reproducible.
const DefaultSeed = int64(42)

// Options contains all configuration for a pipeline run.
type Options struct {
	// Build options
	Directed  bool   `json:"directed"`
	NullModel string `json:"null_model,omitempty"`
	Seed      int64  `json:"seed,omitempty"`
	Refresh   bool   `json:"refresh,omitempty"`

	// Layout options
	Algorithm  string `json:"algorithm,omitempty"`
	Iterations int    `json:"iterations,omitempty"`
	LayoutSeed int64  `json:"layout_seed,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`

	// Runtime options (not serialized)
	Nodes  *table.Table `json:"-"`
	Edges  *table.Table `json:"-"`
	Logger *log.Logger  `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID uniquely identifies this pipeline invocation.
	RunID string

	// Graph is the built network, before layout.
	Graph *network.Graph

	// GraphHash is the content hash of the built network.
	GraphHash string

	// Layout is the positioned copy of the network.
	Layout *network.Graph

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	BuildTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	BuildHit  bool // Whether the built network came from cache
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// Report re-exports the metrics report type for callers that only import
// the pipeline.
type Report = metrics.Report

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.CodeConfiguration,
			"invalid format: %q (must be one of: html, svg, dot, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateNullModel checks that a null model selector is valid.
func ValidateNullModel(model string) error {
	if !ValidNullModels[model] {
		return errors.New(errors.CodeConfiguration,
			"invalid null model: %q (must be one of: shuffled, random, or empty)", model)
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. Idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForBuild(); err != nil {
		return err
	}
	o.SetLayoutDefaults()
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForBuild checks required fields for the build stage.
func (o *Options) ValidateForBuild() error {
	if o.Nodes == nil || o.Edges == nil {
		return errors.New(errors.CodeConfiguration, "node and edge tables are required")
	}
	if err := ValidateNullModel(o.NullModel); err != nil {
		return err
	}
	if o.NullModel != NullModelNone && o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	o.setLoggerDefault()
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Algorithm == "" {
		o.Algorithm = string(layout.ForceAtlas2)
	}
	o.setLoggerDefault()
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	_, err := layout.ParseAlgorithm(o.Algorithm)
	return err
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatHTML}
	}
	o.setLoggerDefault()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

func (o *Options) setLoggerDefault() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// LayoutConfig builds the layout configuration from the options.
func (o *Options) LayoutConfig() layout.Config {
	cfg := layout.DefaultConfig()
	if o.Iterations > 0 {
		cfg.ForceAtlas.Iterations = o.Iterations
		cfg.SpringIterations = o.Iterations
	}
	cfg.ForceAtlas.Seed = o.LayoutSeed
	cfg.SpringSeed = o.LayoutSeed
	return cfg
}

// GraphKeyOpts returns cache key options for the build stage.
func (o *Options) GraphKeyOpts() cache.GraphKeyOpts {
	return cache.GraphKeyOpts{
		Directed:  o.Directed,
		NullModel: o.NullModel,
		Seed:      o.Seed,
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Algorithm:  o.Algorithm,
		Iterations: o.Iterations,
		Seed:       o.LayoutSeed,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: format}
}
