// Package forceatlas implements a force-directed layout simulation for
// large weighted graphs.
//
// The simulation models edges as attractive springs whose pull scales with
// edge weight, and nodes as mutually repulsive bodies. Repulsion can be
// approximated with a Barnes-Hut spatial partition, turning the quadratic
// all-pairs interaction into O(n log n) per iteration. An adaptive global
// speed bounds node jitter between iterations.
//
// The package is an oracle with a narrow contract: callers hand in node IDs
// and weighted edges plus a Config, and receive a final position per node
// ID. Iteration internals are not part of the contract. Runs are
// reproducible only when Seed is non-zero and Parallel is off.
package forceatlas

import (
	"math"
	"math/rand"
	"runtime"
	"sync"
	"time"
)

// Config tunes the simulation. Zero values are not meaningful for most
// fields; start from DefaultConfig.
type Config struct {
	// Iterations is the fixed simulation budget.
	Iterations int

	// OutboundAttractionDistribution divides each edge's pull by the mass
	// of its source, pushing hubs to the border. Off by default.
	OutboundAttractionDistribution bool

	// LinLogMode uses logarithmic attraction, tightening clusters.
	LinLogMode bool

	// AdjustSizes strengthens repulsion between overlapping nodes.
	// Off by default.
	AdjustSizes bool

	// EdgeWeightInfluence is the exponent applied to edge weights before
	// they scale attraction. 0 ignores weights, 1 uses them as-is.
	EdgeWeightInfluence float64

	// JitterTolerance trades speed for precision: higher values allow
	// more node swinging per iteration.
	JitterTolerance float64

	// BarnesHutOptimize enables the quadtree repulsion approximation.
	BarnesHutOptimize bool

	// BarnesHutTheta is the accuracy parameter of the approximation;
	// larger values are faster and coarser.
	BarnesHutTheta float64

	// ScalingRatio scales repulsion strength.
	ScalingRatio float64

	// StrongGravityMode makes gravity independent of distance to center.
	StrongGravityMode bool

	// Gravity pulls nodes toward the origin, keeping disconnected
	// components on the canvas.
	Gravity float64

	// Parallel computes repulsion across CPU cores. Off by default:
	// floating-point accumulation order changes results between runs.
	Parallel bool

	// Seed pins the initial random placement. Zero seeds from the clock.
	Seed int64
}

// DefaultConfig returns the documented defaults: 500 iterations, weighted
// attraction, Barnes-Hut repulsion with theta 1.2, scaling ratio 2, gravity
// 1, and every behavioral toggle off.
func DefaultConfig() Config {
	return Config{
		Iterations:          500,
		EdgeWeightInfluence: 1.0,
		JitterTolerance:     1.0,
		BarnesHutOptimize:   true,
		BarnesHutTheta:      1.2,
		ScalingRatio:        2.0,
		Gravity:             1.0,
	}
}

// Edge is a weighted connection between two node IDs.
type Edge struct {
	Source, Target int64
	Weight         float64
}

// Point is a final node position.
type Point struct {
	X, Y float64
}

// body is the simulation state of one node.
type body struct {
	id           int64
	mass         float64
	size         float64
	x, y         float64
	dx, dy       float64
	oldDx, oldDy float64
}

// Layout runs the simulation and returns a position per node ID.
// Unknown edge endpoints are ignored. An empty node list yields an empty map.
func Layout(ids []int64, edges []Edge, cfg Config) map[int64]Point {
	pos := make(map[int64]Point, len(ids))
	if len(ids) == 0 {
		return pos
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	bodies := make([]*body, 0, len(ids))
	index := make(map[int64]*body, len(ids))
	for _, id := range ids {
		b := &body{
			id:   id,
			mass: 1,
			x:    rng.Float64()*2 - 1,
			y:    rng.Float64()*2 - 1,
		}
		bodies = append(bodies, b)
		index[id] = b
	}
	for _, e := range edges {
		if s, ok := index[e.Source]; ok {
			s.mass++
		}
		if t, ok := index[e.Target]; ok {
			t.mass++
		}
	}
	for _, b := range bodies {
		b.size = math.Sqrt(b.mass)
	}

	outboundCompensation := 1.0
	if cfg.OutboundAttractionDistribution {
		var total float64
		for _, b := range bodies {
			total += b.mass
		}
		outboundCompensation = total / float64(len(bodies))
	}

	speed := 1.0
	speedEfficiency := 1.0

	for i := 0; i < cfg.Iterations; i++ {
		for _, b := range bodies {
			b.oldDx, b.oldDy = b.dx, b.dy
			b.dx, b.dy = 0, 0
		}

		if cfg.BarnesHutOptimize {
			tree := buildQuadTree(bodies)
			applyAll(bodies, cfg.Parallel, func(b *body) {
				tree.applyRepulsion(b, cfg.BarnesHutTheta, cfg.ScalingRatio, cfg.AdjustSizes)
			})
		} else {
			for j, a := range bodies {
				for _, b := range bodies[j+1:] {
					repulse(a, b, cfg.ScalingRatio, cfg.AdjustSizes)
				}
			}
		}

		for _, b := range bodies {
			applyGravity(b, cfg.Gravity, cfg.ScalingRatio, cfg.StrongGravityMode)
		}

		for _, e := range edges {
			src, okS := index[e.Source]
			dst, okT := index[e.Target]
			if !okS || !okT || src == dst {
				continue
			}
			attract(src, dst, weightFactor(e.Weight, cfg.EdgeWeightInfluence), outboundCompensation, cfg)
		}

		speed, speedEfficiency = adjustSpeed(bodies, cfg.JitterTolerance, speed, speedEfficiency)

		for _, b := range bodies {
			swinging := math.Hypot(b.oldDx-b.dx, b.oldDy-b.dy)
			factor := speed / (1.0 + math.Sqrt(speed*swinging))
			b.x += b.dx * factor
			b.y += b.dy * factor
		}
	}

	for _, b := range bodies {
		pos[b.id] = Point{X: b.x, Y: b.y}
	}
	return pos
}

func weightFactor(weight, influence float64) float64 {
	switch influence {
	case 0:
		return 1
	case 1:
		return weight
	default:
		return math.Pow(weight, influence)
	}
}

// repulse applies the exact mutual repulsion between two bodies.
func repulse(a, b *body, scaling float64, adjustSizes bool) {
	xDist := a.x - b.x
	yDist := a.y - b.y
	d2 := xDist*xDist + yDist*yDist
	if d2 == 0 {
		return
	}

	factor := scaling * a.mass * b.mass / d2
	if adjustSizes {
		// Overlapping bodies repel an order of magnitude harder.
		if dist := math.Sqrt(d2); dist < a.size+b.size {
			factor *= 100
		}
	}

	a.dx += xDist * factor
	a.dy += yDist * factor
	b.dx -= xDist * factor
	b.dy -= yDist * factor
}

func applyGravity(b *body, gravity, scaling float64, strong bool) {
	dist := math.Hypot(b.x, b.y)
	if dist == 0 {
		return
	}

	var factor float64
	if strong {
		factor = scaling * b.mass * gravity
	} else {
		factor = scaling * b.mass * gravity / dist
	}
	b.dx -= b.x * factor
	b.dy -= b.y * factor
}

func attract(src, dst *body, weight, compensation float64, cfg Config) {
	xDist := src.x - dst.x
	yDist := src.y - dst.y
	dist := math.Hypot(xDist, yDist)
	if dist == 0 {
		return
	}

	factor := -weight
	if cfg.LinLogMode {
		factor = -weight * math.Log1p(dist) / dist
	}
	if cfg.OutboundAttractionDistribution {
		factor = factor * compensation / src.mass
	}

	src.dx += xDist * factor
	src.dy += yDist * factor
	dst.dx -= xDist * factor
	dst.dy -= yDist * factor
}

// adjustSpeed implements the global adaptive speed heuristic: total node
// swinging (erratic movement) is balanced against effective traction, and
// the global speed is raised or damped to keep jitter within tolerance.
func adjustSpeed(bodies []*body, jitterTolerance, speed, speedEfficiency float64) (float64, float64) {
	var totalSwinging, totalTraction float64
	for _, b := range bodies {
		swinging := math.Hypot(b.oldDx-b.dx, b.oldDy-b.dy)
		traction := 0.5 * math.Hypot(b.oldDx+b.dx, b.oldDy+b.dy)
		totalSwinging += b.mass * swinging
		totalTraction += b.mass * traction
	}
	if totalSwinging == 0 || totalTraction == 0 {
		return speed, speedEfficiency
	}

	n := float64(len(bodies))
	estimatedOptimal := 0.05 * math.Sqrt(n)
	minJT := math.Sqrt(estimatedOptimal)
	maxJT := 10.0
	jt := jitterTolerance * math.Max(minJT, math.Min(maxJT, estimatedOptimal*totalSwinging/(n*n)))

	const minSpeedEfficiency = 0.05
	if totalSwinging/totalTraction > 2.0 {
		if speedEfficiency > minSpeedEfficiency {
			speedEfficiency *= 0.5
		}
		jt = math.Max(jt, jitterTolerance)
	}

	targetSpeed := jt * speedEfficiency * totalTraction / totalSwinging

	if totalSwinging > jt*totalTraction {
		if speedEfficiency > minSpeedEfficiency {
			speedEfficiency *= 0.7
		}
	} else if speed < 1000 {
		speedEfficiency *= 1.3
	}

	// Rising too fast overshoots; cap growth at 50% per iteration.
	const maxRise = 0.5
	speed = speed + math.Min(targetSpeed-speed, maxRise*speed)
	return speed, speedEfficiency
}

// applyAll runs fn over every body, fanning out across cores when parallel.
func applyAll(bodies []*body, parallel bool, fn func(*body)) {
	if !parallel {
		for _, b := range bodies {
			fn(b)
		}
		return
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > len(bodies) {
		workers = len(bodies)
	}
	chunk := (len(bodies) + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < len(bodies); start += chunk {
		end := start + chunk
		if end > len(bodies) {
			end = len(bodies)
		}
		wg.Add(1)
		go func(part []*body) {
			defer wg.Done()
			for _, b := range part {
				fn(b)
			}
		}(bodies[start:end])
	}
	wg.Wait()
}
