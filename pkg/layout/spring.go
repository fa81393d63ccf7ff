package layout

import (
	"math"
	"math/rand"
	"time"

	"github.com/ossmap/ossmap/pkg/network"
)

// springPositions computes a Fruchterman-Reingold layout: all node pairs
// repel with k²/d while edges attract with w·d²/k, under a linearly cooling
// temperature that caps per-iteration movement. Final coordinates are
// rescaled so the largest magnitude is 1.
//
// The initial placement is random; pass a non-zero seed to pin it.
func springPositions(g *network.Graph, iterations int, seed int64) map[int64]Point {
	nodes := g.Nodes()
	pos := make(map[int64]Point, len(nodes))
	if len(nodes) == 0 {
		return pos
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	for _, n := range nodes {
		pos[n.ID] = Point{X: rng.Float64(), Y: rng.Float64()}
	}
	if len(nodes) == 1 {
		pos[nodes[0].ID] = Point{}
		return pos
	}

	k := math.Sqrt(1.0 / float64(len(nodes)))
	temperature := 0.1
	cooling := temperature / float64(iterations+1)

	for iter := 0; iter < iterations; iter++ {
		disp := make(map[int64]Point, len(nodes))

		for i, a := range nodes {
			for _, b := range nodes[i+1:] {
				dx := pos[a.ID].X - pos[b.ID].X
				dy := pos[a.ID].Y - pos[b.ID].Y
				dist := math.Hypot(dx, dy)
				if dist < 0.01 {
					dist = 0.01
				}
				force := k * k / (dist * dist)
				da, db := disp[a.ID], disp[b.ID]
				da.X += dx * force
				da.Y += dy * force
				db.X -= dx * force
				db.Y -= dy * force
				disp[a.ID], disp[b.ID] = da, db
			}
		}

		for _, e := range g.Edges() {
			if e.Source == e.Target {
				continue
			}
			dx := pos[e.Source].X - pos[e.Target].X
			dy := pos[e.Source].Y - pos[e.Target].Y
			dist := math.Hypot(dx, dy)
			if dist < 0.01 {
				dist = 0.01
			}
			force := e.Weight * dist / k
			ds, dt := disp[e.Source], disp[e.Target]
			ds.X -= dx * force
			ds.Y -= dy * force
			dt.X += dx * force
			dt.Y += dy * force
			disp[e.Source], disp[e.Target] = ds, dt
		}

		for _, n := range nodes {
			d := disp[n.ID]
			length := math.Hypot(d.X, d.Y)
			if length == 0 {
				continue
			}
			step := math.Min(length, temperature)
			p := pos[n.ID]
			p.X += d.X / length * step
			p.Y += d.Y / length * step
			pos[n.ID] = p
		}
		temperature -= cooling
	}

	return rescale(nodes, pos)
}

// rescale centers positions on the origin and scales the largest coordinate
// magnitude to 1. Purely cosmetic; coordinates remain unbounded in general.
// Sums follow the graph's node order so results are reproducible.
func rescale(nodes []*network.Node, pos map[int64]Point) map[int64]Point {
	var meanX, meanY float64
	for _, n := range nodes {
		meanX += pos[n.ID].X
		meanY += pos[n.ID].Y
	}
	count := float64(len(nodes))
	meanX /= count
	meanY /= count

	var limit float64
	for _, n := range nodes {
		p := pos[n.ID]
		p.X -= meanX
		p.Y -= meanY
		pos[n.ID] = p
		limit = math.Max(limit, math.Max(math.Abs(p.X), math.Abs(p.Y)))
	}
	if limit == 0 {
		return pos
	}
	for _, n := range nodes {
		p := pos[n.ID]
		pos[n.ID] = Point{X: p.X / limit, Y: p.Y / limit}
	}
	return pos
}
