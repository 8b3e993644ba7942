package dag

import (
	"errors"
	"maps"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [DAG.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [DAG.AddNode] when a node with the
	// same ID already exists in the graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [DAG.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [DAG.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrInvalidEdgeEndpoint is returned by [DAG.Validate] when an edge
	// references a node that doesn't exist.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")

	// ErrEdgeNotDescending is returned by [DAG.Validate] when an edge does not
	// point to a strictly lower row: a package would load before one of its
	// dependencies.
	ErrEdgeNotDescending = errors.New("edges must point to a lower row")

	// ErrMissingNode is returned by [DAG.Validate] when a node of kind
	// [NodeKindMissing] is still present.
	ErrMissingNode = errors.New("graph references a missing node")
)

// Metadata stores arbitrary key-value pairs attached to nodes,
// such as a package's version and URL.
type Metadata map[string]any

// NodeKind distinguishes real packages from placeholders.
type NodeKind int

const (
	// NodeKindPackage is a resolved package.
	NodeKindPackage NodeKind = iota
	// NodeKindMissing stands for a dependency that was declared but never
	// resolved. It can never be placed in a row, so neither can anything
	// that depends on it.
	NodeKindMissing
)

// Node is a vertex with an assigned row. In a loading graph the row is the
// batch index: row 0 loads first.
type Node struct {
	ID   string   // Unique identifier (a library key)
	Row  int      // Batch index
	Meta Metadata // Never nil after AddNode
	Kind NodeKind
}

// IsMissing reports whether n is a placeholder for an unresolved dependency.
func (n Node) IsMissing() bool { return n.Kind == NodeKindMissing }

// Edge points from a package to one of its dependencies.
type Edge struct {
	From string
	To   string
}

// DAG is a directed graph whose nodes are grouped into rows.
//
// The zero value is not usable - use New to create a valid DAG instance.
// DAG is not safe for concurrent use without external synchronization.
type DAG struct {
	nodes    map[string]*Node
	edges    []Edge
	outgoing map[string][]string // nodeID -> dependency IDs
	incoming map[string][]string // nodeID -> dependent IDs
	rows     map[int][]*Node
}

// New creates an empty DAG.
func New() *DAG {
	return &DAG{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		rows:     make(map[int][]*Node),
	}
}

// AddNode adds a node and indexes it by its Row.
func (d *DAG) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := d.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	node := &n
	d.nodes[node.ID] = node
	d.rows[node.Row] = append(d.rows[node.Row], node)
	return nil
}

// SetRows updates row assignments and rebuilds the row index. Nodes not
// present in rows keep their current row. Within a row, nodes are ordered by ID.
func (d *DAG) SetRows(rows map[string]int) {
	d.rows = make(map[int][]*Node)
	for _, n := range d.Nodes() {
		if newRow, ok := rows[n.ID]; ok {
			n.Row = newRow
		}
		d.rows[n.Row] = append(d.rows[n.Row], n)
	}
}

// AddEdge adds a directed edge between two existing nodes.
// Duplicate edges are ignored.
func (d *DAG) AddEdge(e Edge) error {
	if _, ok := d.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := d.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	if slices.Contains(d.outgoing[e.From], e.To) {
		return nil
	}
	d.edges = append(d.edges, e)
	d.outgoing[e.From] = append(d.outgoing[e.From], e.To)
	d.incoming[e.To] = append(d.incoming[e.To], e.From)
	return nil
}

// Nodes returns all nodes ordered by ID. The pointers refer to the graph's
// own nodes.
func (d *DAG) Nodes() []*Node {
	nodes := make([]*Node, 0, len(d.nodes))
	for _, id := range slices.Sorted(maps.Keys(d.nodes)) {
		nodes = append(nodes, d.nodes[id])
	}
	return nodes
}

// Edges returns a copy of all edges in insertion order.
func (d *DAG) Edges() []Edge { return slices.Clone(d.edges) }

// Children returns the dependencies of a node. Read-only view.
func (d *DAG) Children(id string) []string { return d.outgoing[id] }

// Parents returns the dependents of a node. Read-only view.
func (d *DAG) Parents(id string) []string { return d.incoming[id] }

// OutDegree returns the number of outgoing edges from the node.
func (d *DAG) OutDegree(id string) int { return len(d.outgoing[id]) }

// Node returns the node with the given ID.
func (d *DAG) Node(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// NodesInRow returns all nodes assigned to the given row.
func (d *DAG) NodesInRow(row int) []*Node { return d.rows[row] }

// RowIDs returns all row indices in ascending order.
func (d *DAG) RowIDs() []int {
	return slices.Sorted(maps.Keys(d.rows))
}

// Validate checks that the row assignment is a valid load order: every
// edge references existing package nodes and points to a strictly lower
// row. A graph that validates is acyclic.
func (d *DAG) Validate() error {
	for _, n := range d.nodes {
		if n.IsMissing() {
			return ErrMissingNode
		}
	}
	for _, e := range d.edges {
		src, okS := d.nodes[e.From]
		dst, okD := d.nodes[e.To]
		if !okS || !okD {
			return ErrInvalidEdgeEndpoint
		}
		if dst.Row >= src.Row {
			return ErrEdgeNotDescending
		}
	}
	return nil
}
