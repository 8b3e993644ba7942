// Package api exposes the resolution pipeline over HTTP.
//
// Routes:
//
//	POST /v1/loading-graph     pipeline.Request in, pipeline.Response out
//	GET  /v1/libraries/{id}    version list of one package (id = base64url name)
//	GET  /healthz              liveness
//	GET  /metrics              Prometheus metrics, when a gatherer is configured
//
// Every response carries an X-Request-Id header; a client-supplied id is
// echoed back. Failures are reported as
//
//	{"code": "DEPENDENCIES_ERROR", "message": "...", "failures": [...]}
//
// with the HTTP status derived from the code by [StatusCode]. Dependency
// failures caused by an unreachable registry are reported as 502.
package api
