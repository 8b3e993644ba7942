package transform

import (
	"slices"

	"github.com/matzehuels/cdnlock/pkg/dag"
)

// FindCycles returns the dependency cycles reachable by depth-first search,
// one per back edge. Each cycle starts at the node the back edge returns to
// and follows dependency edges, e.g. [a b] for a -> b -> a. Traversal order
// is by node ID, so the result is deterministic.
func FindCycles(g *dag.DAG) [][]string {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int)
	var (
		stack  []string
		cycles [][]string
	)

	var dfs func(node string)
	dfs = func(node string) {
		color[node] = gray
		stack = append(stack, node)
		children := slices.Sorted(slices.Values(g.Children(node)))
		for _, child := range children {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				start := slices.Index(stack, child)
				cycles = append(cycles, slices.Clone(stack[start:]))
			}
		}
		stack = stack[:len(stack)-1]
		color[node] = black
	}

	for _, n := range g.Nodes() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}
	return cycles
}
