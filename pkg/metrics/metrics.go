// Package metrics compares an original network against a reduced backbone
// variant.
//
// A backbone keeps only the most significant edges of the original network,
// so the interesting questions are how much of the network survives: the
// share of nodes inside the original's giant connected component, the share
// of nodes kept by the backbone, and the fraction of edges and edge weight
// lost in each reduction. The calculator answers all six in one pass and
// holds no state between calls.
package metrics

import (
	"github.com/ossmap/ossmap/pkg/errors"
	"github.com/ossmap/ossmap/pkg/network"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Metric names, in report order. They mirror the reporting layer's table
// headings and must not be reworded without updating that layer.
const (
	MetricGCCNodes         = "Original Network GCC Node"
	MetricBackboneNodes    = "Backbone Network Node"
	MetricGCCEdgesRemoved  = "Original Network GCC Edges Removed"
	MetricBackboneEdges    = "Backbone Network Edges Removed"
	MetricGCCWeightRemoved = "Original Network GCC Edge Weight Removed"
	MetricBackboneWeight   = "Backbone Network Edge Weight Removed"
)

// Metric is one named percentage. Values are not rounded; presentation is
// the caller's concern.
type Metric struct {
	Name       string
	Percentage float64
}

// Report is the fixed, ordered set of six comparison metrics.
type Report []Metric

// Compare computes the six backbone metrics for a reduced variant of the
// original network.
//
// Both networks must carry a weight on every edge, otherwise the comparison
// fails with a MISSING_WEIGHT error before any computation. An original
// network with zero nodes, zero edges, or zero total weight cannot yield
// the ratio metrics; that is a DIVISION_BY_ZERO error, never NaN or Inf.
func Compare(original, backbone *network.Graph) (Report, error) {
	if err := requireWeights(original, "original"); err != nil {
		return nil, err
	}
	if err := requireWeights(backbone, "backbone"); err != nil {
		return nil, err
	}

	totalNodes := float64(original.NodeCount())
	totalEdges := float64(original.EdgeCount())
	totalWeight := original.TotalWeight()
	if totalNodes == 0 {
		return nil, errors.New(errors.CodeDivisionByZero, "original network has no nodes")
	}
	if totalWeight == 0 {
		return nil, errors.New(errors.CodeDivisionByZero, "original network has zero total edge weight")
	}

	gcc := giantComponent(original)
	var gccNodes, gccEdges, gccWeight float64
	gccNodes = float64(len(gcc))
	for _, e := range original.Edges() {
		if gcc[e.Source] && gcc[e.Target] {
			gccEdges++
			gccWeight += e.Weight
		}
	}

	return Report{
		{MetricGCCNodes, gccNodes / totalNodes * 100},
		{MetricBackboneNodes, float64(backbone.NodeCount()) / totalNodes * 100},
		{MetricGCCEdgesRemoved, (totalEdges - gccEdges) / totalEdges * 100},
		{MetricBackboneEdges, (totalEdges - float64(backbone.EdgeCount())) / totalEdges * 100},
		{MetricGCCWeightRemoved, (totalWeight - gccWeight) / totalWeight * 100},
		{MetricBackboneWeight, (totalWeight - backbone.TotalWeight()) / totalWeight * 100},
	}, nil
}

// requireWeights rejects a network with no edges or with any edge that was
// built without a weight attribute.
func requireWeights(g *network.Graph, role string) error {
	edges := g.Edges()
	if len(edges) == 0 {
		return errors.New(errors.CodeMissingWeight, "%s network has no weighted edges", role)
	}
	for _, e := range edges {
		if !e.Weighted {
			return errors.New(errors.CodeMissingWeight,
				"%s network edge (%d, %d) has no weight attribute", role, e.Source, e.Target)
		}
	}
	return nil
}

// giantComponent returns the node set of the largest connected component.
// Directed networks use weak connectivity: edge direction is ignored.
func giantComponent(g *network.Graph) map[int64]bool {
	ug := simple.NewUndirectedGraph()
	for _, n := range g.Nodes() {
		ug.AddNode(simple.Node(n.ID))
	}
	for _, e := range g.Edges() {
		// Simple graphs reject self-loops; a self-loop never joins
		// components anyway.
		if e.Source == e.Target {
			continue
		}
		ug.SetEdge(ug.NewEdge(simple.Node(e.Source), simple.Node(e.Target)))
	}

	var largest []int64
	for _, component := range topo.ConnectedComponents(ug) {
		if len(component) > len(largest) {
			largest = largest[:0]
			for _, n := range component {
				largest = append(largest, n.ID())
			}
		}
	}

	members := make(map[int64]bool, len(largest))
	for _, id := range largest {
		members[id] = true
	}
	return members
}
