// Package pkg provides the core libraries of cdnlock.
//
// # Overview
//
// cdnlock turns a set of requested CDN libraries into a lock (one concrete
// version per library key) and a loading graph (batches of bundles a
// browser can fetch in parallel, each batch after the ones it depends on).
//
// # Architecture
//
// The data flow through cdnlock:
//
//	Request (libraries, pins, extra index, already loaded)
//	         ↓
//	    [resolver] package (worklist resolution against a [registry] Gateway)
//	         ↓
//	    [loading] package (batches via [dag] and [dag/transform])
//	         ↓
//	    lock + definition (JSON), or a diagram via [render/nodelink]
//
// [pipeline] wires these steps together with caching. Both the CLI and the
// [api] server run the same [pipeline.Runner].
//
// # Main Packages
//
// ## Domain Logic
//
// [version] - Version codec (sort keys, API keys) and range selection with
// WIP substitution.
//
// [registry] - The Gateway interface, package metadata, library keys and the
// in-memory Index. Subpackages provide an HTTP client ([registry/httpgw])
// and a MongoDB store ([registry/mongogw]).
//
// [resolver] - Concurrent resolution of queries into a lock, with per-query
// failure reporting and API collision detection.
//
// [loading] - Scheduling of a lock into loading batches and detection of
// unmet or circular dependencies.
//
// [dag] - Directed graph with row assignment; [dag/transform] peels it into
// layers and finds cycles.
//
// ## Infrastructure
//
// [cache] - Byte cache with file, Redis, memory and no-op backends.
//
// [config] - TOML configuration and project manifests.
//
// [errors] - Error codes shared by the CLI and the HTTP API.
//
// [observability] - Hooks for resolution, caching and registry HTTP calls,
// with a Prometheus implementation.
//
// [httputil] - Retry with backoff for registry calls.
//
// # Testing
//
// Run tests:
//
//	go test ./...                             # All tests
//	go test ./pkg/resolver/...                # Specific package
//	go test -tags integration ./pkg/cache/... # Include Redis integration tests
//
// [version]: https://pkg.go.dev/github.com/matzehuels/cdnlock/pkg/version
// [registry]: https://pkg.go.dev/github.com/matzehuels/cdnlock/pkg/registry
// [registry/httpgw]: https://pkg.go.dev/github.com/matzehuels/cdnlock/pkg/registry/httpgw
// [registry/mongogw]: https://pkg.go.dev/github.com/matzehuels/cdnlock/pkg/registry/mongogw
// [resolver]: https://pkg.go.dev/github.com/matzehuels/cdnlock/pkg/resolver
// [loading]: https://pkg.go.dev/github.com/matzehuels/cdnlock/pkg/loading
// [dag]: https://pkg.go.dev/github.com/matzehuels/cdnlock/pkg/dag
// [dag/transform]: https://pkg.go.dev/github.com/matzehuels/cdnlock/pkg/dag/transform
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/cdnlock/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/cdnlock/pkg/pipeline
// [pipeline.Runner]: https://pkg.go.dev/github.com/matzehuels/cdnlock/pkg/pipeline#Runner
// [api]: https://pkg.go.dev/github.com/matzehuels/cdnlock/pkg/api
// [cache]: https://pkg.go.dev/github.com/matzehuels/cdnlock/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/cdnlock/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/cdnlock/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/cdnlock/pkg/observability
// [httputil]: https://pkg.go.dev/github.com/matzehuels/cdnlock/pkg/httputil
package pkg
