package layout

import (
	"sort"

	"github.com/ossmap/ossmap/pkg/network"
)

const orderingPasses = 8

// layeredPositions arranges nodes in horizontal rows. Directed graphs are
// layered by longest path from the sources so that every edge points from a
// lower row to a higher one; undirected graphs fall back to BFS depth per
// component. Within each row, nodes are reordered by repeated barycenter
// sweeps to reduce edge crossings, then spread symmetrically around x=0.
//
// Nodes on a directed cycle never reach the ready queue and stay in row 0.
func layeredPositions(g *network.Graph, rowGap, colGap float64) map[int64]Point {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return map[int64]Point{}
	}

	var row map[int64]int
	if g.IsDirected() {
		row = longestPathRows(g)
	} else {
		row = bfsRows(g)
	}

	maxRow := 0
	for _, r := range row {
		if r > maxRow {
			maxRow = r
		}
	}
	rows := make([][]int64, maxRow+1)
	for _, n := range nodes {
		r := row[n.ID]
		rows[r] = append(rows[r], n.ID)
	}

	orderRows(g, rows, row)

	pos := make(map[int64]Point, len(nodes))
	for r, ids := range rows {
		offset := float64(len(ids)-1) / 2
		for i, id := range ids {
			pos[id] = Point{
				X: (float64(i) - offset) * colGap,
				Y: float64(r) * rowGap,
			}
		}
	}
	return pos
}

// longestPathRows runs Kahn's algorithm, assigning each node the length of
// the longest incoming path. The ready queue is seeded in insertion order so
// the result is deterministic for a given graph.
func longestPathRows(g *network.Graph) map[int64]int {
	row := make(map[int64]int, g.NodeCount())
	inDegree := make(map[int64]int, g.NodeCount())
	successors := make(map[int64][]int64, g.NodeCount())
	for _, e := range g.Edges() {
		if e.Source == e.Target {
			continue
		}
		inDegree[e.Target]++
		successors[e.Source] = append(successors[e.Source], e.Target)
	}

	var queue []int64
	for _, n := range g.Nodes() {
		row[n.ID] = 0
		if inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range successors[cur] {
			if row[cur]+1 > row[next] {
				row[next] = row[cur] + 1
			}
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	return row
}

// bfsRows assigns BFS depth from the first unvisited node of each component,
// walking components in insertion order.
func bfsRows(g *network.Graph) map[int64]int {
	row := make(map[int64]int, g.NodeCount())
	seen := make(map[int64]bool, g.NodeCount())

	for _, start := range g.Nodes() {
		if seen[start.ID] {
			continue
		}
		seen[start.ID] = true
		row[start.ID] = 0
		queue := []int64{start.ID}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, next := range g.Neighbors(cur) {
				if seen[next] {
					continue
				}
				seen[next] = true
				row[next] = row[cur] + 1
				queue = append(queue, next)
			}
		}
	}
	return row
}

// orderRows runs alternating downward and upward barycenter sweeps: each
// row is stably re-sorted by the mean position of its neighbors in the
// adjacent row already ordered.
func orderRows(g *network.Graph, rows [][]int64, row map[int64]int) {
	adj := make(map[int64][]int64, g.NodeCount())
	for _, e := range g.Edges() {
		if e.Source == e.Target {
			continue
		}
		adj[e.Source] = append(adj[e.Source], e.Target)
		adj[e.Target] = append(adj[e.Target], e.Source)
	}

	for pass := 0; pass < orderingPasses; pass++ {
		if pass%2 == 0 {
			for r := 1; r < len(rows); r++ {
				sortByBarycenter(rows[r], rows[r-1], adj, row, r-1)
			}
		} else {
			for r := len(rows) - 2; r >= 0; r-- {
				sortByBarycenter(rows[r], rows[r+1], adj, row, r+1)
			}
		}
	}
}

func sortByBarycenter(ids, fixed []int64, adj map[int64][]int64, row map[int64]int, fixedRow int) {
	index := make(map[int64]int, len(fixed))
	for i, id := range fixed {
		index[id] = i
	}

	center := make(map[int64]float64, len(ids))
	for i, id := range ids {
		sum, count := 0.0, 0
		for _, other := range adj[id] {
			if row[other] != fixedRow {
				continue
			}
			sum += float64(index[other])
			count++
		}
		if count == 0 {
			// Keep nodes without neighbors in the fixed row where they are.
			center[id] = float64(i)
		} else {
			center[id] = sum / float64(count)
		}
	}

	sort.SliceStable(ids, func(i, j int) bool {
		return center[ids[i]] < center[ids[j]]
	})
}
