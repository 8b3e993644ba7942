// Package httpgw implements registry.Gateway against a remote registry
// over HTTP.
//
// Endpoints, relative to the base URL:
//
//	GET /libraries/{id}            -> registry.VersionList
//	GET /libraries/{id}/{version}  -> registry.Metadata
//
// where {id} is registry.EncodeID(name). A 404 maps to registry.ErrNotFound.
// Network errors and 5xx responses are retried with backoff and, once retries
// run out, carry the NETWORK_ERROR code. Successful responses are cached
// through a cache.Cache.
package httpgw

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/cdnlock/pkg/buildinfo"
	"github.com/matzehuels/cdnlock/pkg/cache"
	cerrors "github.com/matzehuels/cdnlock/pkg/errors"
	"github.com/matzehuels/cdnlock/pkg/httputil"
	"github.com/matzehuels/cdnlock/pkg/observability"
	"github.com/matzehuels/cdnlock/pkg/registry"
)

const (
	httpTimeout    = 10 * time.Second
	cacheNamespace = "registry"
)

// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
var ErrNetwork = errors.New("network error")

// Options configures a [Client].
type Options struct {
	BaseURL string
	Cache   cache.Cache // nil disables caching
	Keyer   cache.Keyer
	TTL     time.Duration // 0 uses cache.TTLHTTP
	Refresh bool          // bypass cache reads, still write fresh responses
	Headers map[string]string

	// Attempts and RetryDelay tune retries; zero values use 3 and 1s.
	Attempts   int
	RetryDelay time.Duration

	HTTPClient *http.Client
}

// WithDefaults returns a copy of o with zero fields replaced by defaults.
func (o Options) WithDefaults() Options {
	if o.Cache == nil {
		o.Cache = cache.NewNullCache()
	}
	if o.Keyer == nil {
		o.Keyer = cache.NewDefaultKeyer()
	}
	if o.TTL == 0 {
		o.TTL = cache.TTLHTTP
	}
	if o.Attempts == 0 {
		o.Attempts = 3
	}
	if o.RetryDelay == 0 {
		o.RetryDelay = time.Second
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: httpTimeout}
	}
	return o
}

// Client is a registry.Gateway backed by a remote registry.
type Client struct {
	opts    Options
	baseURL string
}

// New returns a Client for the registry at opts.BaseURL.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("httpgw: base URL is required")
	}
	if _, err := url.Parse(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("httpgw: %w", err)
	}
	return &Client{
		opts:    opts.WithDefaults(),
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
	}, nil
}

// ListVersions implements registry.Gateway.
func (c *Client) ListVersions(ctx context.Context, name string) (*registry.VersionList, error) {
	id := registry.EncodeID(name)
	var list registry.VersionList
	err := c.cached(ctx, id, &list, func() error {
		return c.get(ctx, c.baseURL+"/libraries/"+id, &list)
	})
	if err != nil {
		return nil, classify(err, "package "+name)
	}
	if list.Name == "" {
		list.Name = name
	}
	return &list, nil
}

// GetMetadata implements registry.Gateway.
func (c *Client) GetMetadata(ctx context.Context, name, version string) (*registry.Metadata, error) {
	id := registry.EncodeID(name)
	var meta registry.Metadata
	err := c.cached(ctx, id+"/"+version, &meta, func() error {
		return c.get(ctx, c.baseURL+"/libraries/"+id+"/"+url.PathEscape(version), &meta)
	})
	if err != nil {
		return nil, classify(err, name+"@"+version)
	}
	if err := meta.Normalize(); err != nil {
		return nil, fmt.Errorf("registry returned invalid metadata for %s@%s: %w", name, version, err)
	}
	return &meta, nil
}

// cached serves v from the cache or runs fetch (with retries) and stores the result.
func (c *Client) cached(ctx context.Context, key string, v any, fetch func() error) error {
	key = c.opts.Keyer.HTTPKey(cacheNamespace, key)
	hooks := observability.Cache()
	if !c.opts.Refresh {
		if data, hit, err := c.opts.Cache.Get(ctx, key); err == nil && hit {
			if json.Unmarshal(data, v) == nil {
				hooks.OnCacheHit(ctx, "http")
				return nil
			}
		}
		hooks.OnCacheMiss(ctx, "http")
	}
	if err := httputil.Retry(ctx, c.opts.Attempts, c.opts.RetryDelay, fetch); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		if c.opts.Cache.Set(ctx, key, data, c.opts.TTL) == nil {
			hooks.OnCacheSet(ctx, "http", len(data))
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	for k, val := range c.opts.Headers {
		req.Header.Set(k, val)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)
	start := time.Now()
	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
		return &httputil.RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", rawURL, err)
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return registry.ErrNotFound
	case code == http.StatusTooManyRequests || code >= 500:
		return &httputil.RetryableError{
			Err:   fmt.Errorf("%w: status %d", ErrNetwork, code),
			After: httputil.ParseRetryAfter(resp.Header.Get("Retry-After")),
		}
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}

// classify names what was fetched in not-found errors and codes network
// failures as NETWORK_ERROR.
func classify(err error, what string) error {
	switch {
	case errors.Is(err, registry.ErrNotFound):
		return fmt.Errorf("%w: %s", registry.ErrNotFound, what)
	case errors.Is(err, ErrNetwork):
		return cerrors.Wrap(cerrors.ErrCodeNetwork, err, "fetch %s", what)
	}
	return err
}

var _ registry.Gateway = (*Client)(nil)
