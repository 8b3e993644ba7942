// Package dag provides the small directed graph behind loading graphs.
//
// Nodes are packages identified by their library key ("name#apiKey"); an
// edge points from a package to a dependency. Each node carries a Row, which
// for a scheduled graph is the batch it loads in. [DAG.Validate] checks the
// property a client relies on: every dependency sits in a strictly lower
// row than the package that needs it.
//
//	g := dag.New()
//	g.AddNode(dag.Node{ID: "app#1", Row: 1})
//	g.AddNode(dag.Node{ID: "lib#2", Row: 0})
//	g.AddEdge(dag.Edge{From: "app#1", To: "lib#2"})
//	err := g.Validate() // nil
//
// Row assignment and cycle extraction live in the transform subpackage.
package dag
