// Package httputil provides HTTP helpers shared by the registry clients.
//
// [Retry] re-runs an operation with exponential backoff, but only when the
// failure is wrapped in [RetryableError]. Registry clients wrap network
// errors and 5xx responses that way; a 404 is returned as-is so "not found"
// is never retried:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    return fetch(ctx)
//	})
//
// The delay doubles after each failure. A 429 or 503 carrying Retry-After
// (see [ParseRetryAfter]) waits at least as long as the server asked, up
// to [MaxDelay].
package httputil
