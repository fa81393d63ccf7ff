package network

import (
	"math/rand"
	"strings"
	"time"

	"github.com/ossmap/ossmap/pkg/errors"
	"github.com/ossmap/ossmap/pkg/table"
)

// Required column names for the node and edge tables.
const (
	ColID       = "Id"
	ColLabel    = "Label"
	ColLicenses = "Licenses"
	ColSource   = "Source"
	ColTarget   = "Target"
	ColWeight   = "weight"
)

var (
	nodeColumns = []string{ColID, ColLabel, ColLicenses}
	edgeColumns = []string{ColSource, ColTarget, ColWeight}
)

// Build constructs a graph from a node table and an edge table.
//
// The node table must declare Id, Label, and Licenses; the edge table must
// declare Source, Target, and weight. A missing column is a SCHEMA_ERROR
// enumerating every absent column. Id, Source, and Target are coerced to
// int64 and weight to float64; a cell that cannot be coerced is a fatal
// TYPE_COERCION error - rows are never silently dropped.
//
// One node is created per node-table row and one edge per edge-table row, in
// row order. Columns beyond the typed ones become extension attributes with
// lower-cased keys. The input tables are never mutated.
func Build(nodes, edges *table.Table, directed bool) (*Graph, error) {
	if err := validateSchema(nodes, edges); err != nil {
		return nil, err
	}

	g := New(directed)
	if err := addTableNodes(g, nodes); err != nil {
		return nil, err
	}

	for row := 0; row < edges.RowCount(); row++ {
		source, target, err := edgeEndpoints(edges, row)
		if err != nil {
			return nil, err
		}
		weight, err := edges.Float64(row, ColWeight)
		if err != nil {
			return nil, err
		}
		g.AddEdge(Edge{
			Source:   source,
			Target:   target,
			Weight:   weight,
			Weighted: true,
			Attrs:    extensionAttrs(edges, row, ColSource, ColTarget, ColWeight),
		})
	}
	return g, nil
}

// BuildShuffledWeights constructs a graph like Build but globally permutes
// the weight sequence before pairing it with edges: a weight-permutation
// null model. Topology and the multiset of weight values are preserved.
//
// rng is the randomness source for the permutation; pass a seeded generator
// for reproducible null models. A nil rng falls back to a time-seeded one.
func BuildShuffledWeights(nodes, edges *table.Table, directed bool, rng *rand.Rand) (*Graph, error) {
	if err := validateSchema(nodes, edges); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	weights, err := edgeWeights(edges)
	if err != nil {
		return nil, err
	}
	rng.Shuffle(len(weights), func(i, j int) {
		weights[i], weights[j] = weights[j], weights[i]
	})

	return buildWithWeights(nodes, edges, directed, func(row int) float64 {
		return weights[row]
	})
}

// BuildRandomWeights constructs a graph like Build but draws each edge's
// weight independently and uniformly from the closed interval
// [min observed weight, max observed weight]: a weight-resampling null model.
// Topology is preserved; the weight multiset generally is not.
//
// rng is the randomness source for the draws; a nil rng falls back to a
// time-seeded one.
func BuildRandomWeights(nodes, edges *table.Table, directed bool, rng *rand.Rand) (*Graph, error) {
	if err := validateSchema(nodes, edges); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	weights, err := edgeWeights(edges)
	if err != nil {
		return nil, err
	}
	var minWeight, maxWeight float64
	for i, w := range weights {
		if i == 0 || w < minWeight {
			minWeight = w
		}
		if i == 0 || w > maxWeight {
			maxWeight = w
		}
	}

	return buildWithWeights(nodes, edges, directed, func(int) float64 {
		return minWeight + rng.Float64()*(maxWeight-minWeight)
	})
}

// buildWithWeights shares the node and topology construction of the null
// models, delegating only the per-row weight assignment.
func buildWithWeights(nodes, edges *table.Table, directed bool, weight func(row int) float64) (*Graph, error) {
	g := New(directed)
	if err := addTableNodes(g, nodes); err != nil {
		return nil, err
	}
	for row := 0; row < edges.RowCount(); row++ {
		source, target, err := edgeEndpoints(edges, row)
		if err != nil {
			return nil, err
		}
		g.AddEdge(Edge{
			Source:   source,
			Target:   target,
			Weight:   weight(row),
			Weighted: true,
			Attrs:    extensionAttrs(edges, row, ColSource, ColTarget, ColWeight),
		})
	}
	return g, nil
}

func validateSchema(nodes, edges *table.Table) error {
	if missing := nodes.MissingColumns(nodeColumns...); missing != nil {
		return errors.New(errors.CodeSchema, "node table missing columns: %v", missing)
	}
	if missing := edges.MissingColumns(edgeColumns...); missing != nil {
		return errors.New(errors.CodeSchema, "edge table missing columns: %v", missing)
	}
	return nil
}

func addTableNodes(g *Graph, nodes *table.Table) error {
	for row := 0; row < nodes.RowCount(); row++ {
		id, err := nodes.Int64(row, ColID)
		if err != nil {
			return err
		}
		label, _ := nodes.Cell(row, ColLabel)
		licenses, _ := nodes.Cell(row, ColLicenses)
		if err := g.AddNode(Node{
			ID:       id,
			Label:    label,
			Licenses: licenses,
			Attrs:    extensionAttrs(nodes, row, ColID, ColLabel, ColLicenses),
		}); err != nil {
			return err
		}
	}
	return nil
}

func edgeEndpoints(edges *table.Table, row int) (int64, int64, error) {
	source, err := edges.Int64(row, ColSource)
	if err != nil {
		return 0, 0, err
	}
	target, err := edges.Int64(row, ColTarget)
	if err != nil {
		return 0, 0, err
	}
	return source, target, nil
}

// edgeWeights coerces the full weight column up front so the null models can
// derive their permutation or observed range before constructing edges.
func edgeWeights(edges *table.Table) ([]float64, error) {
	weights := make([]float64, edges.RowCount())
	for row := range weights {
		w, err := edges.Float64(row, ColWeight)
		if err != nil {
			return nil, err
		}
		weights[row] = w
	}
	return weights, nil
}

// extensionAttrs collects every column except the typed ones into the open
// attribute map, lower-casing keys.
func extensionAttrs(t *table.Table, row int, typed ...string) Attrs {
	attrs := Attrs{}
	for _, col := range t.Columns() {
		skip := false
		for _, reserved := range typed {
			if col == reserved {
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		if cell, ok := t.Cell(row, col); ok {
			attrs[strings.ToLower(col)] = cell
		}
	}
	return attrs
}
