package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cdnlock/pkg/cache"
	cerrors "github.com/matzehuels/cdnlock/pkg/errors"
	"github.com/matzehuels/cdnlock/pkg/loading"
	"github.com/matzehuels/cdnlock/pkg/observability"
	"github.com/matzehuels/cdnlock/pkg/registry"
	"github.com/matzehuels/cdnlock/pkg/resolver"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating resolution logic.
//
// The Runner is stateless except for its collaborators: multiple goroutines
// can safely use the same Runner with different requests.
type Runner struct {
	Gateway  registry.Gateway
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger
	Resolver resolver.Options
}

// NewRunner creates a runner reading from gw.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(gw registry.Gateway, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Gateway: gw,
		Cache:   c,
		Keyer:   keyer,
		Logger:  logger,
	}
}

// Execute runs the complete validate → resolve → schedule pipeline.
//
// Errors carry a code from pkg/errors: INVALID_* for bad requests,
// DEPENDENCIES_ERROR when queries fail, CIRCULAR_DEPENDENCIES when the
// set cannot be ordered and API_COLLISION for collisions in strict mode.
func (r *Runner) Execute(ctx context.Context, req Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	key := r.Keyer.ResolveKey(r.keyOpts(req))
	if req.Cacheable() {
		if resp, ok := r.fromCache(ctx, key, req); ok {
			return resp, nil
		}
	}

	resp, err := r.run(ctx, req)
	if err != nil {
		return nil, err
	}

	if req.Cacheable() {
		if data, err := json.Marshal(resp); err == nil {
			if err := r.Cache.Set(ctx, key, data, cache.TTLResolve); err != nil {
				r.Logger.Warn("cache write failed", "error", err)
			} else {
				observability.Cache().OnCacheSet(ctx, "resolve", len(data))
			}
		}
	}
	return resp, nil
}

// keyOpts extends the request's key options with the runner's resolution
// policy.
func (r *Runner) keyOpts(req Request) cache.ResolveKeyOpts {
	opts := req.KeyOpts()
	opts.NoWIPFallback = !r.Resolver.WithDefaults().Selector.AllowWIPFallback
	return opts
}

func (r *Runner) run(ctx context.Context, req Request) (*Response, error) {
	if r.Gateway == nil {
		return nil, cerrors.New(cerrors.ErrCodeInternal, "runner has no registry gateway")
	}

	opts := r.Resolver
	if opts.Logger == nil {
		opts.Logger = r.Logger.Debugf
	}

	resolveStart := time.Now()
	res, err := resolver.New(r.Gateway, opts).Resolve(ctx, resolver.Request{
		Roots:      req.Roots(),
		Using:      req.Using,
		ExtraIndex: req.ExtraIndex,
	})
	if err != nil {
		return nil, err
	}
	resp := &Response{Notices: res.Notices}
	resp.Stats.ResolveTime = time.Since(resolveStart)
	resp.Stats.Rounds = res.Rounds
	resp.Stats.Packages = len(res.Packages)

	r.Logger.Info("resolved dependencies",
		"packages", len(res.Packages),
		"rounds", res.Rounds,
		"duration", resp.Stats.ResolveTime)

	collisions := resolver.CheckCollisions(res.Resolutions)
	if len(collisions) > 0 && req.Strict {
		msgs := make([]string, len(collisions))
		for i, c := range collisions {
			msgs[i] = c.String()
		}
		return nil, cerrors.New(cerrors.ErrCodeAPICollision, "%s", strings.Join(msgs, "; "))
	}
	for _, c := range collisions {
		resp.Warnings = append(resp.Warnings, c.String())
	}

	scheduleStart := time.Now()
	g, err := loading.Schedule(ctx, res.Packages, loading.Options{Satisfied: req.Loaded})
	if err != nil {
		return nil, err
	}
	resp.Graph = g
	resp.Definition = g.Definition()
	resp.Stats.ScheduleTime = time.Since(scheduleStart)
	resp.Stats.Batches = len(g.Batches)

	resp.Lock = make([]LockEntry, len(res.Packages))
	for i, p := range res.Packages {
		resp.Lock[i] = lockEntry(p)
	}

	r.Logger.Info("scheduled loading graph",
		"batches", len(g.Batches),
		"duration", resp.Stats.ScheduleTime)
	return resp, nil
}

// fromCache serves a cached response. The graph is rebuilt from the lock;
// a stale or unreadable entry counts as a miss.
func (r *Runner) fromCache(ctx context.Context, key string, req Request) (*Response, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "resolve")
		return nil, false
	}
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		r.Logger.Debug("discarding unreadable cache entry", "key", key, "error", err)
		observability.Cache().OnCacheMiss(ctx, "resolve")
		return nil, false
	}
	g, err := loading.Schedule(ctx, Packages(resp.Lock), loading.Options{Satisfied: req.Loaded})
	if err != nil {
		observability.Cache().OnCacheMiss(ctx, "resolve")
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "resolve")
	resp.Graph = g
	resp.CacheHit = true
	resp.Stats.Packages = len(resp.Lock)
	resp.Stats.Batches = len(g.Batches)
	r.Logger.Debug("served loading graph from cache", "key", key)
	return &resp, true
}

// Lookup returns the version list of one package through the runner's gateway.
func (r *Runner) Lookup(ctx context.Context, name string) (*registry.VersionList, error) {
	if err := cerrors.ValidateNpmPackageName(name); err != nil {
		return nil, err
	}
	list, err := r.Gateway.ListVersions(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("list versions of %s: %w", name, err)
	}
	return list, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
