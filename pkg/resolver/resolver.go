package resolver

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	cerrors "github.com/matzehuels/cdnlock/pkg/errors"
	"github.com/matzehuels/cdnlock/pkg/observability"
	"github.com/matzehuels/cdnlock/pkg/registry"
	"github.com/matzehuels/cdnlock/pkg/version"
)

// Request is the input of [Resolver.Resolve].
type Request struct {
	Roots []registry.Query

	// Using pins packages: a query for a pinned name resolves the pinned
	// spec instead of its own, wherever it appears in the tree.
	Using map[string]string

	// ExtraIndex holds unpublished packages. They join the registry's
	// candidates and win over it on conflicts.
	ExtraIndex []*registry.Metadata
}

// Resolver resolves package queries against a registry.Gateway.
// A Resolver is safe for concurrent use; each call owns its caches.
type Resolver struct {
	gateway registry.Gateway
	opts    Options
}

// New returns a Resolver reading from gw.
func New(gw registry.Gateway, opts Options) *Resolver {
	return &Resolver{gateway: gw, opts: opts.WithDefaults()}
}

type task struct {
	query   registry.Query
	parents []*Resolved // every package of the round that declared query
}

type outcome struct {
	sel version.Selection
	err error
}

// Resolve expands req.Roots into the full package set. On failure the error
// is a *DependenciesError listing every failed query of the failing round,
// or a context error.
func (r *Resolver) Resolve(ctx context.Context, req Request) (res *Result, err error) {
	start := time.Now()
	hooks := observability.Pipeline()
	hooks.OnResolveStart(ctx, len(req.Roots))
	defer func() {
		n := 0
		if res != nil {
			n = len(res.Packages)
		}
		hooks.OnResolveComplete(ctx, n, time.Since(start), err)
	}()

	gw := r.gateway
	if len(req.ExtraIndex) > 0 {
		extra, err := registry.NewIndex(req.ExtraIndex...)
		if err != nil {
			return nil, cerrors.Wrap(cerrors.ErrCodeInvalidInput, err, "invalid extra index")
		}
		gw = registry.NewOverlay(gw, extra)
	}
	if gw == nil {
		return nil, cerrors.New(cerrors.ErrCodeInternal, "resolver has no registry")
	}

	rc := NewContext()
	rootResolved := &Resolved{Name: rootName}
	root := &Package{
		Metadata: &registry.Metadata{Name: rootName, Dependencies: req.Roots},
		via:      rootResolved,
	}

	res = &Result{}
	frontier := []*Package{root}
	for len(frontier) > 0 {
		roundStart := time.Now()
		tasks := collect(rc, frontier, req.Using)
		if len(tasks) == 0 {
			break
		}
		if res.Rounds >= r.opts.MaxRounds {
			return nil, cerrors.New(cerrors.ErrCodeResolutionFailure,
				"resolution did not converge after %d rounds", r.opts.MaxRounds)
		}
		res.Rounds++
		r.opts.Logger("round %d: resolving %d queries", res.Rounds, len(tasks))

		resolved, notices, err := r.resolveRound(ctx, gw, rc, tasks)
		if err != nil {
			return nil, err
		}
		res.Notices = append(res.Notices, notices...)

		frontier, err = r.fetchRound(ctx, gw, rc, resolved)
		if err != nil {
			return nil, err
		}
		hooks.OnResolveRound(ctx, res.Rounds, len(tasks), time.Since(roundStart))
	}

	res.Packages = finalize(rc, req.Using)
	res.Resolutions = rc.allResolutions()
	slices.SortFunc(res.Resolutions, func(a, b *Resolved) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.Query, b.Query))
	})
	return res, nil
}

// effectiveSpec applies a "using" pin.
func effectiveSpec(q registry.Query, using map[string]string) string {
	if pinned, ok := using[q.Name]; ok && pinned != "" {
		return pinned
	}
	return q.Spec
}

// collect gathers the dependency queries of the frontier that are not yet
// resolved, deduplicated by (name, spec) and ordered by name then spec.
func collect(rc *Context, frontier []*Package, using map[string]string) []*task {
	byKey := make(map[queryKey]*task)
	var tasks []*task
	for _, pkg := range frontier {
		for _, dep := range pkg.Dependencies {
			q := registry.Query{Name: dep.Name, Spec: effectiveSpec(dep, using)}
			if _, done := rc.Resolution(q.Name, q.Spec); done {
				continue
			}
			key := queryKey{q.Name, q.Spec}
			t, ok := byKey[key]
			if !ok {
				t = &task{query: q}
				byKey[key] = t
				tasks = append(tasks, t)
			}
			if !slices.Contains(t.parents, pkg.via) {
				t.parents = append(t.parents, pkg.via)
			}
		}
	}
	slices.SortFunc(tasks, func(a, b *task) int {
		return cmp.Or(cmp.Compare(a.query.Name, b.query.Name), cmp.Compare(a.query.Spec, b.query.Spec))
	})
	return tasks
}

// resolveRound selects a version for every task concurrently, then merges.
// Tasks never observe each other's results.
func (r *Resolver) resolveRound(ctx context.Context, gw registry.Gateway, rc *Context, tasks []*task) ([]*Resolved, []string, error) {
	outcomes := make([]outcome, len(tasks))
	var g errgroup.Group
	g.SetLimit(r.opts.Concurrency)
	for i, t := range tasks {
		g.Go(func() error {
			versions, err := rc.listVersions(ctx, gw, t.query.Name)
			if err != nil {
				outcomes[i] = outcome{err: err}
				return nil
			}
			sel, err := r.opts.Selector.Select(t.query.Spec, versions)
			outcomes[i] = outcome{sel: sel, err: err}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var (
		resolved []*Resolved
		notices  []string
		failures []Failure
	)
	for i, t := range tasks {
		o := outcomes[i]
		if o.err != nil {
			r.opts.Logger("resolve failed: %s: %v", t.query, o.err)
			for _, parent := range t.parents {
				failures = append(failures, Failure{
					Query: t.query,
					Kind:  classify(o.err),
					Chain: parent.chain(),
					Err:   o.err,
				})
			}
			continue
		}
		res := &Resolved{
			Name:        t.query.Name,
			Query:       t.query.Spec,
			Version:     o.sel.Version,
			APIKey:      o.sel.APIKey,
			Parent:      t.parents[0],
			Substituted: o.sel.Substituted,
		}
		if res.Substituted {
			notices = append(notices, fmt.Sprintf("%s: %s resolved to %s (%s is not published)",
				t.query.Name, t.query.Spec, o.sel.Version, o.sel.Nominal))
		}
		rc.addResolution(res)
		resolved = append(resolved, res)
	}
	if len(failures) > 0 {
		return nil, nil, &DependenciesError{Failures: failures}
	}
	return resolved, notices, nil
}

// fetchRound loads the metadata of every library key first seen this round.
// When a round resolves one key to several versions, the most recent wins.
func (r *Resolver) fetchRound(ctx context.Context, gw registry.Gateway, rc *Context, resolved []*Resolved) ([]*Package, error) {
	best := make(map[string]*Resolved)
	for _, res := range resolved {
		key := res.Key()
		if _, known := rc.Package(key); known {
			continue
		}
		if cur, ok := best[key]; !ok || newer(res.Version, cur.Version) {
			best[key] = res
		}
	}
	if len(best) == 0 {
		return nil, nil
	}

	todo := make([]*Resolved, 0, len(best))
	for _, res := range best {
		todo = append(todo, res)
	}
	slices.SortFunc(todo, func(a, b *Resolved) int { return cmp.Compare(a.Key(), b.Key()) })

	metas := make([]*registry.Metadata, len(todo))
	errs := make([]error, len(todo))
	var g errgroup.Group
	g.SetLimit(r.opts.Concurrency)
	for i, res := range todo {
		g.Go(func() error {
			metas[i], errs[i] = gw.GetMetadata(ctx, res.Name, res.Version)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		fresh    []*Package
		failures []Failure
	)
	for i, res := range todo {
		if errs[i] != nil {
			r.opts.Logger("fetch failed: %s: %v", res, errs[i])
			failures = append(failures, Failure{
				Query: registry.Query{Name: res.Name, Spec: res.Query},
				Kind:  classify(errs[i]),
				Chain: res.Parent.chain(),
				Err:   errs[i],
			})
			continue
		}
		meta := metas[i]
		if meta.APIKey != res.APIKey {
			r.opts.Logger("%s: registry api key %q overridden by %q", res, meta.APIKey, res.APIKey)
			meta.APIKey = res.APIKey
		}
		pkg := &Package{Metadata: meta, via: res}
		if rc.addPackage(pkg) {
			fresh = append(fresh, pkg)
		}
	}
	if len(failures) > 0 {
		return nil, &DependenciesError{Failures: failures}
	}
	return fresh, nil
}

// finalize links every package to the library keys its dependencies resolved to.
func finalize(rc *Context, using map[string]string) []*Package {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	for _, pkg := range rc.order {
		var requires []string
		for _, dep := range pkg.Dependencies {
			res, ok := rc.resolutions[queryKey{dep.Name, effectiveSpec(dep, using)}]
			if ok && !slices.Contains(requires, res.Key()) {
				requires = append(requires, res.Key())
			}
		}
		slices.Sort(requires)
		pkg.Requires = requires
	}
	return slices.Clone(rc.order)
}

func newer(a, b string) bool {
	ka, errA := version.SortKey(a)
	kb, errB := version.SortKey(b)
	if errA != nil || errB != nil {
		return false
	}
	return ka > kb
}
