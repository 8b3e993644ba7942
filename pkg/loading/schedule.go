package loading

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/matzehuels/cdnlock/pkg/dag"
	"github.com/matzehuels/cdnlock/pkg/dag/transform"
	cerrors "github.com/matzehuels/cdnlock/pkg/errors"
	"github.com/matzehuels/cdnlock/pkg/observability"
	"github.com/matzehuels/cdnlock/pkg/registry"
	"github.com/matzehuels/cdnlock/pkg/resolver"
)

// Node metadata keys.
const (
	MetaName    = "name"
	MetaVersion = "version"
	MetaURL     = "url"
	MetaID      = "id"
)

// Options configures [Schedule].
type Options struct {
	// Satisfied lists library keys the client already holds. They are
	// neither scheduled nor waited on.
	Satisfied []string
}

// Entry is one package of a batch.
type Entry struct {
	Key     string `json:"key"` // library key
	ID      string `json:"id"`  // URL-safe package id
	URL     string `json:"url"` // "<id>/<version>/<bundle>"
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Graph is a scheduled loading graph.
type Graph struct {
	Batches [][]Entry

	dag *dag.DAG
}

// DAG returns the underlying graph. Each node's Row is its batch index.
func (g *Graph) DAG() *dag.DAG { return g.dag }

// Definition returns the wire form of the graph: batches of (id, url) pairs.
func (g *Graph) Definition() [][][2]string {
	def := make([][][2]string, len(g.Batches))
	for i, batch := range g.Batches {
		def[i] = make([][2]string, len(batch))
		for j, e := range batch {
			def[i][j] = [2]string{e.ID, e.URL}
		}
	}
	return def
}

// Len returns the number of scheduled packages.
func (g *Graph) Len() int {
	n := 0
	for _, b := range g.Batches {
		n += len(b)
	}
	return n
}

// Schedule orders pkgs into batches. Packages are identified by library key
// and their Requires drive the edges. Entries within a batch are sorted by
// name, then version.
func Schedule(ctx context.Context, pkgs []*resolver.Package, opts Options) (g *Graph, err error) {
	start := time.Now()
	defer func() {
		n := 0
		if g != nil {
			n = len(g.Batches)
		}
		observability.Pipeline().OnScheduleComplete(ctx, n, time.Since(start), err)
	}()

	d, err := build(pkgs, opts.Satisfied)
	if err != nil {
		return nil, err
	}

	layers, stuck := transform.PeelLayers(d)
	if len(stuck) > 0 {
		return nil, stuckError(d, stuck)
	}

	g = &Graph{Batches: make([][]Entry, len(layers)), dag: d}
	for i, layer := range layers {
		batch := make([]Entry, 0, len(layer))
		for _, id := range layer {
			n, _ := d.Node(id)
			batch = append(batch, entry(n))
		}
		slices.SortFunc(batch, func(a, b Entry) int {
			return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.Version, b.Version))
		})
		g.Batches[i] = batch
	}
	return g, nil
}

func build(pkgs []*resolver.Package, satisfied []string) (*dag.DAG, error) {
	d := dag.New()
	for _, p := range pkgs {
		key := p.Key()
		if slices.Contains(satisfied, key) {
			continue
		}
		err := d.AddNode(dag.Node{
			ID: key,
			Meta: dag.Metadata{
				MetaName:    p.Name,
				MetaVersion: p.Version,
				MetaURL:     registry.URL(p.Metadata),
				MetaID:      registry.EncodeID(p.Name),
			},
		})
		if err != nil {
			return nil, cerrors.Wrap(cerrors.ErrCodeInternal, err, "schedule %s", key)
		}
	}

	for _, p := range pkgs {
		from := p.Key()
		if slices.Contains(satisfied, from) {
			continue
		}
		for _, to := range p.Requires {
			if slices.Contains(satisfied, to) {
				continue
			}
			if _, ok := d.Node(to); !ok {
				if err := d.AddNode(dag.Node{ID: to, Kind: dag.NodeKindMissing}); err != nil {
					return nil, cerrors.Wrap(cerrors.ErrCodeInternal, err, "schedule %s", to)
				}
			}
			if err := d.AddEdge(dag.Edge{From: from, To: to}); err != nil {
				return nil, cerrors.Wrap(cerrors.ErrCodeInternal, err, "schedule %s -> %s", from, to)
			}
		}
	}
	return d, nil
}

func stuckError(d *dag.DAG, stuck []string) *CircularDependenciesError {
	e := &CircularDependenciesError{Unmet: make(map[string][]string, len(stuck))}
	for _, id := range stuck {
		var unmet []string
		for _, dep := range d.Children(id) {
			n, _ := d.Node(dep)
			if n.IsMissing() || slices.Contains(stuck, dep) {
				unmet = append(unmet, dep)
			}
		}
		slices.Sort(unmet)
		e.Unmet[id] = unmet
	}
	e.Cycles = transform.FindCycles(d)
	return e
}

func entry(n *dag.Node) Entry {
	str := func(key string) string {
		s, _ := n.Meta[key].(string)
		return s
	}
	return Entry{
		Key:     n.ID,
		ID:      str(MetaID),
		URL:     str(MetaURL),
		Name:    str(MetaName),
		Version: str(MetaVersion),
	}
}
