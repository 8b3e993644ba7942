// Package transform computes load orders over a dag.DAG.
//
// [PeelLayers] assigns every package to a batch by repeatedly removing the
// packages whose dependencies have all been placed. Whatever cannot be
// placed is returned as stuck. [FindCycles] then explains why, by listing
// the dependency cycles among the stuck packages.
package transform
