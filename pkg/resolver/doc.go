// Package resolver expands root package queries into the complete set of
// package versions a client has to load.
//
// # Algorithm
//
// Resolution runs in rounds over a worklist. A synthetic root package
// declares the requested queries. Each round:
//
//  1. collects the dependency queries of the packages discovered in the
//     previous round, applying "using" pins, and drops the ones already
//     resolved;
//  2. resolves them concurrently against the registry (version list plus
//     [version.Selector]);
//  3. merges the results after every task has finished, and fails with a
//     [*DependenciesError] listing every failed query of the round;
//  4. fetches, concurrently, the metadata of each newly seen library key
//     (name plus API key); those packages seed the next round.
//
// Every (name, spec) pair and every library key is handled once, so the loop
// reaches a fixed point without separate cycle detection. Cycles in the
// resolved set are the loading scheduler's concern.
//
// # Caches
//
// All caches live in a [Context] owned by one Resolve call and are only
// written between rounds. Nothing is shared between calls, so concurrent
// Resolve calls need no coordination.
//
// # Collisions
//
// [CheckCollisions] reports library keys that resolved to more than one
// version. That is a latent bug in the dependency tree (two bundles would
// install the same runtime global) but does not fail resolution.
package resolver
