package forceatlas

import "math"

// quadTree is a Barnes-Hut spatial partition over simulation bodies.
//
// Each region tracks its total mass and center of mass. When a region is far
// enough from a body (region size / distance < theta), its whole subtree is
// approximated as a single point mass.
type quadTree struct {
	cx, cy   float64 // region center
	half     float64 // half the region's side length
	mass     float64
	comX     float64 // center of mass
	comY     float64
	occupant *body        // set while the region holds exactly one body
	children *[4]quadTree // nil for leaves
}

// buildQuadTree constructs the partition for the current body positions.
func buildQuadTree(bodies []*body) *quadTree {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, b := range bodies {
		minX = math.Min(minX, b.x)
		minY = math.Min(minY, b.y)
		maxX = math.Max(maxX, b.x)
		maxY = math.Max(maxY, b.y)
	}

	half := math.Max(maxX-minX, maxY-minY)/2 + 1e-9
	root := &quadTree{
		cx:   (minX + maxX) / 2,
		cy:   (minY + maxY) / 2,
		half: half,
	}
	for _, b := range bodies {
		root.insert(b, 0)
	}
	return root
}

// maxDepth bounds subdivision for coincident points.
const maxDepth = 48

func (t *quadTree) insert(b *body, depth int) {
	// Update the running center of mass.
	total := t.mass + b.mass
	t.comX = (t.comX*t.mass + b.x*b.mass) / total
	t.comY = (t.comY*t.mass + b.y*b.mass) / total
	t.mass = total

	if t.children == nil {
		if t.occupant == nil {
			t.occupant = b
			return
		}
		if depth >= maxDepth {
			// Coincident bodies: fold into the aggregate only.
			return
		}
		prev := t.occupant
		t.occupant = nil
		t.subdivide()
		t.child(prev).insert(prev, depth+1)
		t.child(b).insert(b, depth+1)
		return
	}
	t.child(b).insert(b, depth+1)
}

func (t *quadTree) subdivide() {
	q := t.half / 2
	t.children = &[4]quadTree{
		{cx: t.cx - q, cy: t.cy - q, half: q},
		{cx: t.cx + q, cy: t.cy - q, half: q},
		{cx: t.cx - q, cy: t.cy + q, half: q},
		{cx: t.cx + q, cy: t.cy + q, half: q},
	}
}

// child returns the quadrant that should hold b.
func (t *quadTree) child(b *body) *quadTree {
	i := 0
	if b.x > t.cx {
		i++
	}
	if b.y > t.cy {
		i += 2
	}
	return &t.children[i]
}

// applyRepulsion accumulates the repulsion force on b from the whole tree.
func (t *quadTree) applyRepulsion(b *body, theta, scaling float64, adjustSizes bool) {
	if t.mass == 0 {
		return
	}

	if t.occupant != nil {
		if t.occupant != b {
			repulseFrom(b, t.occupant.x, t.occupant.y, t.occupant.mass, t.occupant.size, scaling, adjustSizes)
		}
		return
	}

	dist := math.Hypot(b.x-t.comX, b.y-t.comY)
	if t.children == nil || (dist > 0 && 2*t.half/dist < theta) {
		// Far region (or an aggregate leaf): treat as one point mass.
		// Subtract the body's own contribution when it lives down here.
		mass := t.mass
		if t.contains(b) {
			mass -= b.mass
			if mass <= 0 {
				return
			}
		}
		repulseFrom(b, t.comX, t.comY, mass, 0, scaling, adjustSizes)
		return
	}

	for i := range t.children {
		t.children[i].applyRepulsion(b, theta, scaling, adjustSizes)
	}
}

func (t *quadTree) contains(b *body) bool {
	return b.x >= t.cx-t.half && b.x <= t.cx+t.half &&
		b.y >= t.cy-t.half && b.y <= t.cy+t.half
}

// repulseFrom applies a one-sided repulsion force on b from a point mass.
func repulseFrom(b *body, x, y, mass, size, scaling float64, adjustSizes bool) {
	xDist := b.x - x
	yDist := b.y - y
	d2 := xDist*xDist + yDist*yDist
	if d2 == 0 {
		return
	}

	factor := scaling * b.mass * mass / d2
	if adjustSizes && size > 0 {
		if dist := math.Sqrt(d2); dist < b.size+size {
			factor *= 100
		}
	}

	b.dx += xDist * factor
	b.dy += yDist * factor
}
