// Package registry defines what the resolver needs to know about published
// packages and how to reach it.
//
// A [Gateway] answers two questions: which versions of a package exist
// ([Gateway.ListVersions]) and what a given version looks like
// ([Gateway.GetMetadata]). Absence is always reported as [ErrNotFound] so
// callers can tell a missing package from a failing registry.
//
// Implementations:
//
//   - [Index]: in-memory, built from metadata records or a JSON index file.
//     Backs the caller-supplied extra index and tests.
//   - httpgw.Client: remote registry over HTTP, cached and retried.
//   - mongogw.Store: metadata documents in MongoDB.
//
// [Overlay] layers an [Index] over another gateway so unpublished packages
// take precedence over published ones.
//
// # Package ids
//
// Package names such as "@youwol/http-clients" are not URL-safe, so the
// loading graph addresses packages by id: the name in unpadded URL-safe
// base64 ([EncodeID]). [URL] builds the "<id>/<version>/<bundle>" path a
// client fetches.
package registry
