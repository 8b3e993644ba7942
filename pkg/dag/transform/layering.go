package transform

import (
	"slices"

	"github.com/matzehuels/cdnlock/pkg/dag"
)

// PeelLayers assigns rows by peeling ready layers. A package is ready once
// every dependency has been placed in an earlier layer; layer k becomes row k.
//
// Nodes of kind dag.NodeKindMissing are never placed, so packages depending
// on them (directly or transitively) end up stuck. Stuck packages keep their
// previous row and are returned, ordered by ID, together with the layers.
// Each layer is ordered by ID.
//
// Runs in O(V + E) using in-degree counting over the reversed edges.
func PeelLayers(g *dag.DAG) (layers [][]string, stuck []string) {
	nodes := g.Nodes()
	pending := make(map[string]int, len(nodes))
	rows := make(map[string]int, len(nodes))

	var ready []string
	for _, n := range nodes {
		if n.IsMissing() {
			continue
		}
		pending[n.ID] = g.OutDegree(n.ID)
		if pending[n.ID] == 0 {
			ready = append(ready, n.ID)
		}
	}

	for row := 0; len(ready) > 0; row++ {
		layers = append(layers, ready)
		var next []string
		for _, id := range ready {
			rows[id] = row
			for _, parent := range g.Parents(id) {
				if _, ok := pending[parent]; !ok {
					continue
				}
				pending[parent]--
				if pending[parent] == 0 {
					next = append(next, parent)
				}
			}
		}
		slices.Sort(next)
		ready = next
	}

	for _, n := range nodes {
		if _, placed := rows[n.ID]; !placed && !n.IsMissing() {
			stuck = append(stuck, n.ID)
		}
	}
	g.SetRows(rows)
	return layers, stuck
}
