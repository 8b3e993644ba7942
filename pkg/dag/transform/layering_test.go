package transform

import (
	"reflect"
	"testing"

	"github.com/matzehuels/cdnlock/pkg/dag"
)

func build(t *testing.T, nodes []string, missing []string, edges [][2]string) *dag.DAG {
	t.Helper()
	g := dag.New()
	for _, id := range nodes {
		if err := g.AddNode(dag.Node{ID: id}); err != nil {
			t.Fatal(err)
		}
	}
	for _, id := range missing {
		if err := g.AddNode(dag.Node{ID: id, Kind: dag.NodeKindMissing}); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(dag.Edge{From: e[0], To: e[1]}); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestPeelLayers(t *testing.T) {
	tests := []struct {
		name       string
		nodes      []string
		missing    []string
		edges      [][2]string
		wantLayers [][]string
		wantStuck  []string
	}{
		{
			name:       "empty",
			wantLayers: nil,
		},
		{
			name:       "chain",
			nodes:      []string{"app", "lib", "core"},
			edges:      [][2]string{{"app", "lib"}, {"lib", "core"}},
			wantLayers: [][]string{{"core"}, {"lib"}, {"app"}},
		},
		{
			name:       "diamond",
			nodes:      []string{"app", "a", "b", "core"},
			edges:      [][2]string{{"app", "a"}, {"app", "b"}, {"a", "core"}, {"b", "core"}},
			wantLayers: [][]string{{"core"}, {"a", "b"}, {"app"}},
		},
		{
			name:       "independent roots share a layer",
			nodes:      []string{"z", "y", "x"},
			wantLayers: [][]string{{"x", "y", "z"}},
		},
		{
			name:       "longest path decides",
			nodes:      []string{"app", "lib", "core"},
			edges:      [][2]string{{"app", "lib"}, {"app", "core"}, {"lib", "core"}},
			wantLayers: [][]string{{"core"}, {"lib"}, {"app"}},
		},
		{
			name:       "cycle is stuck",
			nodes:      []string{"a", "b"},
			edges:      [][2]string{{"a", "b"}, {"b", "a"}},
			wantLayers: nil,
			wantStuck:  []string{"a", "b"},
		},
		{
			name:       "dependents of a cycle are stuck",
			nodes:      []string{"app", "a", "b", "ok"},
			edges:      [][2]string{{"app", "a"}, {"a", "b"}, {"b", "a"}},
			wantLayers: [][]string{{"ok"}},
			wantStuck:  []string{"a", "app", "b"},
		},
		{
			name:       "missing dependency",
			nodes:      []string{"app", "lib"},
			missing:    []string{"ghost"},
			edges:      [][2]string{{"app", "lib"}, {"lib", "ghost"}},
			wantLayers: nil,
			wantStuck:  []string{"app", "lib"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := build(t, tt.nodes, tt.missing, tt.edges)
			layers, stuck := PeelLayers(g)
			if !reflect.DeepEqual(layers, tt.wantLayers) {
				t.Errorf("PeelLayers() layers = %v, want %v", layers, tt.wantLayers)
			}
			if !reflect.DeepEqual(stuck, tt.wantStuck) {
				t.Errorf("PeelLayers() stuck = %v, want %v", stuck, tt.wantStuck)
			}
			if len(stuck) == 0 && len(tt.missing) == 0 {
				if err := g.Validate(); err != nil {
					t.Errorf("Validate() after PeelLayers() = %v", err)
				}
			}
		})
	}
}

func TestFindCycles(t *testing.T) {
	tests := []struct {
		name  string
		nodes []string
		edges [][2]string
		want  [][]string
	}{
		{
			name:  "acyclic",
			nodes: []string{"a", "b", "c"},
			edges: [][2]string{{"a", "b"}, {"b", "c"}, {"a", "c"}},
			want:  nil,
		},
		{
			name:  "two-cycle",
			nodes: []string{"a", "b"},
			edges: [][2]string{{"a", "b"}, {"b", "a"}},
			want:  [][]string{{"a", "b"}},
		},
		{
			name:  "triangle",
			nodes: []string{"a", "b", "c"},
			edges: [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}},
			want:  [][]string{{"a", "b", "c"}},
		},
		{
			name:  "self loop",
			nodes: []string{"a"},
			edges: [][2]string{{"a", "a"}},
			want:  [][]string{{"a"}},
		},
		{
			name:  "two disjoint cycles",
			nodes: []string{"a", "b", "c", "d"},
			edges: [][2]string{{"a", "b"}, {"b", "a"}, {"c", "d"}, {"d", "c"}},
			want:  [][]string{{"a", "b"}, {"c", "d"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := build(t, tt.nodes, nil, tt.edges)
			if got := FindCycles(g); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FindCycles() = %v, want %v", got, tt.want)
			}
		})
	}
}
