package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/cdnlock/pkg/dag"
)

func loadingGraph(t *testing.T) *dag.DAG {
	t.Helper()
	g := dag.New()
	nodes := []dag.Node{
		{ID: "app#1", Row: 1, Meta: dag.Metadata{"name": "app", "version": "1.0.0"}},
		{ID: "lib#2", Row: 0, Meta: dag.Metadata{"name": "lib", "version": "2.1.0", "url": "bGli/2.1.0/lib.js"}},
	}
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	if err := g.AddEdge(dag.Edge{From: "app#1", To: "lib#2"}); err != nil {
		t.Fatal(err)
	}
	return g
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(loadingGraph(t), Options{})

	for _, want := range []string{
		"digraph G",
		`"app#1" [label="app@1.0.0"]`,
		`"lib#2" [label="lib@2.1.0"]`,
		`"app#1" -> "lib#2"`,
		"subgraph batch_0",
		"subgraph batch_1",
		"rank=same",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q:\n%s", want, dot)
		}
	}
	if strings.Index(dot, "batch_1") > strings.Index(dot, "batch_0") {
		t.Error("ToDOT() should emit later batches first")
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(loadingGraph(t), Options{Detailed: true})
	if !strings.Contains(dot, `batch: 0\nurl: bGli/2.1.0/lib.js`) {
		t.Errorf("ToDOT() detailed output missing batch/metadata:\n%s", dot)
	}
}

func TestToDOTMissing(t *testing.T) {
	g := dag.New()
	_ = g.AddNode(dag.Node{ID: "ghost#4", Kind: dag.NodeKindMissing})

	dot := ToDOT(g, Options{})
	if !strings.Contains(dot, "dashed") || !strings.Contains(dot, "color=red") {
		t.Errorf("ToDOT() missing node not highlighted:\n%s", dot)
	}
	if !strings.Contains(dot, `label="ghost#4"`) {
		t.Errorf("ToDOT() missing node should be labelled by key:\n%s", dot)
	}
}

func TestFmtLabel(t *testing.T) {
	tests := []struct {
		name     string
		node     dag.Node
		detailed bool
		want     string
	}{
		{"bare id", dag.Node{ID: "x#1"}, false, "x#1"},
		{"name and version", dag.Node{ID: "x#1", Meta: dag.Metadata{"name": "x", "version": "1.2.0"}}, false, "x@1.2.0"},
		{"detailed", dag.Node{ID: "x#1", Row: 3, Meta: dag.Metadata{"name": "x", "version": "1.2.0", "id": "eA"}}, true, "x@1.2.0\nbatch: 3\nid: eA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fmtLabel(tt.node, tt.detailed); got != tt.want {
				t.Errorf("fmtLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %q, want %q", got, want)
	}

	plain := []byte("<svg><g/></svg>")
	if got := normalizeViewBox(plain); string(got) != string(plain) {
		t.Errorf("normalizeViewBox() without viewBox changed input: %q", got)
	}
}

func TestRenderDOT(t *testing.T) {
	g := loadingGraph(t)
	data, err := Render(g, "dot", Options{})
	if err != nil {
		t.Fatalf("Render(dot) error: %v", err)
	}
	if string(data) != ToDOT(g, Options{}) {
		t.Error("Render(dot) should return ToDOT output")
	}
}
