// Package loading turns a resolved package set into a loading graph.
//
// A loading graph is an ordered list of batches. Every package of a batch
// depends only on packages of earlier batches (or on packages the client
// already holds), so a client can fetch a batch in parallel and install it
// once the previous batches are in place.
//
//	g, err := loading.Schedule(ctx, res.Packages, loading.Options{})
//	def := g.Definition() // [[["bGli", "bGli/2.1.0/lib.js"]], [["YXBw", "YXBw/1.0.0/app.js"]]]
//
// When no batch can be peeled the set contains a cycle, or a declared
// dependency that never resolved, and [Schedule] returns a
// [*CircularDependenciesError] naming, for every stuck package, the library
// keys it is still waiting on.
package loading
