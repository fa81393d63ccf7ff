// Package cache persists pipeline results for later reuse.
//
// Building a large dependency network and laying it out are the expensive
// stages of the pipeline, so both are cached: graphs under a key derived
// from the input tables and build options, layouts under a key derived from
// the graph content and layout options. Backends range from an on-disk
// cache for CLI usage to Redis and MongoDB for shared deployments; a null
// backend disables caching entirely.
package cache

import (
	"context"
	"time"
)

// Default TTLs per entry kind. Graphs are invalidated by their key whenever
// the input tables change, so the TTLs mostly bound disk usage.
const (
	// TTLGraph applies to built networks.
	TTLGraph = 24 * time.Hour

	// TTLLayout applies to computed layouts. Layouts are pure functions
	// of graph plus options, so they can live longer.
	TTLLayout = 7 * 24 * time.Hour

	// TTLArtifact applies to rendered artifacts.
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache stores opaque byte values under string keys with per-entry TTLs.
//
// Implementations must treat a missing key as (nil, false, nil), not an
// error; the error return is for backend failures only.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// GraphKeyOpts are the build options that affect a graph's identity.
type GraphKeyOpts struct {
	Directed  bool
	NullModel string
	Seed      int64
}

// LayoutKeyOpts are the layout options that affect a layout's identity.
type LayoutKeyOpts struct {
	Algorithm  string
	Iterations int
	Seed       int64
}

// ArtifactKeyOpts are the rendering options that affect an artifact's
// identity.
type ArtifactKeyOpts struct {
	Format string
}

// Keyer generates cache keys for the pipeline stages.
type Keyer interface {
	// GraphKey keys a built network by the hash of its input tables
	// plus build options.
	GraphKey(tableHash string, opts GraphKeyOpts) string

	// LayoutKey keys a layout by the hash of the serialized graph plus
	// layout options.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string

	// ArtifactKey keys a rendered artifact by the hash of the laid-out
	// graph plus rendering options.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer generates hash-based keys with stage prefixes.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// GraphKey generates a key for a built network.
func (k *DefaultKeyer) GraphKey(tableHash string, opts GraphKeyOpts) string {
	return hashKey("graph", tableHash, opts)
}

// LayoutKey generates a key for a computed layout.
func (k *DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// ArtifactKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
