// Package pipeline provides the request pipeline shared by the CLI and the
// HTTP API.
//
// A [Request] names the libraries to install. The [Runner] validates it,
// resolves the full dependency set, checks for API collisions, schedules
// the loading graph and returns a [Response] holding the lock and the graph
// definition. By centralizing this logic, both entry points behave the same
// way, including caching.
//
// # Usage
//
//	runner := pipeline.NewRunner(gateway, cache, nil, logger)
//	resp, err := runner.Execute(ctx, pipeline.Request{
//	    Libraries: map[string]string{"@youwol/http-clients": "^3.0.0"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, batch := range resp.Definition {
//	    // fetch the batch in parallel
//	}
//
// # Caching
//
// Responses are cached under a key derived from the request for
// [cache.TTLResolve]. Requests with Refresh set bypass the cache, and so
// do requests carrying an extra index, since unpublished packages change
// without notice.
package pipeline

import (
	"cmp"
	"maps"
	"slices"
	"time"

	"github.com/matzehuels/cdnlock/pkg/cache"
	cerrors "github.com/matzehuels/cdnlock/pkg/errors"
	"github.com/matzehuels/cdnlock/pkg/loading"
	"github.com/matzehuels/cdnlock/pkg/registry"
	"github.com/matzehuels/cdnlock/pkg/resolver"
)

// =============================================================================
// Request
// =============================================================================

// Request describes the libraries a client wants to install.
// This struct is the JSON body of the HTTP API.
type Request struct {
	// Libraries maps a package name to a version spec.
	Libraries map[string]string `json:"libraries,omitempty"`
	// Queries lists additional "name@spec" queries, for callers that need
	// several specs of one name.
	Queries []registry.Query `json:"queries,omitempty"`

	// Using pins a name to one version wherever it appears.
	Using map[string]string `json:"using,omitempty"`

	// ExtraIndex holds unpublished packages, preferred over the registry.
	ExtraIndex []*registry.Metadata `json:"extraIndex,omitempty"`

	// Loaded lists library keys ("name#apiKey") the client already holds.
	// They stay in the lock but are left out of the definition.
	Loaded []string `json:"loaded,omitempty"`

	// Strict turns API collisions into an error.
	Strict bool `json:"strict,omitempty"`

	// Refresh bypasses the response cache.
	Refresh bool `json:"refresh,omitempty"`
}

// Roots returns the requested queries: Libraries ordered by name, then Queries.
func (r *Request) Roots() []registry.Query {
	roots := make([]registry.Query, 0, len(r.Libraries)+len(r.Queries))
	for _, name := range slices.Sorted(maps.Keys(r.Libraries)) {
		roots = append(roots, registry.Query{Name: name, Spec: r.Libraries[name]})
	}
	return append(roots, r.Queries...)
}

// Validate checks names and specs of every part of the request.
func (r *Request) Validate() error {
	roots := r.Roots()
	if len(roots) == 0 {
		return cerrors.New(cerrors.ErrCodeInvalidInput, "no libraries requested")
	}
	for _, q := range roots {
		if err := validateQuery(q.Name, q.Spec); err != nil {
			return err
		}
	}
	for name, ver := range r.Using {
		if err := validateQuery(name, ver); err != nil {
			return err
		}
	}
	for _, key := range r.Loaded {
		if err := cerrors.ValidateLibraryKey(key); err != nil {
			return err
		}
	}
	for i, m := range r.ExtraIndex {
		if m == nil {
			return cerrors.New(cerrors.ErrCodeInvalidInput, "extraIndex[%d] is null", i)
		}
		if err := validateQuery(m.Name, m.Version); err != nil {
			return err
		}
		if m.Bundle != "" {
			if err := cerrors.ValidatePath(m.Bundle); err != nil {
				return err
			}
		}
		for _, dep := range m.Dependencies {
			if err := validateQuery(dep.Name, dep.Spec); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateQuery(name, spec string) error {
	if err := cerrors.ValidateNpmPackageName(name); err != nil {
		return err
	}
	return cerrors.ValidateVersionSpec(spec)
}

// KeyOpts returns the cache key options of the request.
func (r *Request) KeyOpts() cache.ResolveKeyOpts {
	var roots []string
	for _, q := range r.Roots() {
		roots = append(roots, q.String())
	}
	slices.Sort(roots)
	loaded := slices.Clone(r.Loaded)
	slices.Sort(loaded)
	return cache.ResolveKeyOpts{
		Roots:  roots,
		Using:  r.Using,
		Loaded: loaded,
		Strict: r.Strict,
	}
}

// Cacheable reports whether the response may be served from or stored in
// the cache.
func (r *Request) Cacheable() bool {
	return !r.Refresh && len(r.ExtraIndex) == 0
}

// =============================================================================
// Response
// =============================================================================

// LockEntry is one package of the lock.
type LockEntry struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Version        string   `json:"version"`
	APIKey         string   `json:"apiKey"`
	Namespace      string   `json:"namespace,omitempty"`
	Type           string   `json:"type,omitempty"`
	Fingerprint    string   `json:"fingerprint,omitempty"`
	ExportedSymbol string   `json:"exportedSymbol,omitempty"`
	Bundle         string   `json:"bundle"`
	Requires       []string `json:"requires,omitempty"` // library keys
}

// Key returns the library key of the entry.
func (e LockEntry) Key() string { return registry.LibraryKey(e.Name, e.APIKey) }

// Response is the outcome of a successful [Runner.Execute].
type Response struct {
	Lock       []LockEntry    `json:"lock"`
	Definition [][][2]string  `json:"definition"`
	Warnings   []string       `json:"warnings,omitempty"`
	Notices    []string       `json:"notices,omitempty"`
	Graph      *loading.Graph `json:"-"`
	Stats      Stats          `json:"-"`
	CacheHit   bool           `json:"-"`
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Packages     int
	Batches      int
	Rounds       int
	ResolveTime  time.Duration
	ScheduleTime time.Duration
}

func lockEntry(p *resolver.Package) LockEntry {
	return LockEntry{
		ID:             registry.EncodeID(p.Name),
		Name:           p.Name,
		Version:        p.Version,
		APIKey:         p.APIKey,
		Namespace:      p.Namespace,
		Type:           p.Type,
		Fingerprint:    p.Fingerprint,
		ExportedSymbol: p.ExportedSymbol,
		Bundle:         p.Bundle,
		Requires:       p.Requires,
	}
}

// Packages rebuilds scheduler input from a lock.
func Packages(lock []LockEntry) []*resolver.Package {
	pkgs := make([]*resolver.Package, len(lock))
	for i, e := range lock {
		pkgs[i] = &resolver.Package{
			Metadata: &registry.Metadata{
				Name:           e.Name,
				Version:        e.Version,
				APIKey:         e.APIKey,
				Namespace:      e.Namespace,
				Type:           e.Type,
				Fingerprint:    e.Fingerprint,
				ExportedSymbol: e.ExportedSymbol,
				Bundle:         e.Bundle,
			},
			Requires: e.Requires,
		}
	}
	return pkgs
}

// SortLock orders entries by name, then API key.
func SortLock(lock []LockEntry) {
	slices.SortFunc(lock, func(a, b LockEntry) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.APIKey, b.APIKey))
	})
}
