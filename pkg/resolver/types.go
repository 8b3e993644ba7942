package resolver

import (
	"github.com/matzehuels/cdnlock/pkg/registry"
)

// rootName names the synthetic package declaring the requested queries.
const rootName = "#root"

// Resolved is the outcome of resolving one query.
type Resolved struct {
	Name    string
	Query   string // the spec actually resolved, after "using" pins
	Version string
	APIKey  string

	// Parent is the resolution of the package that declared this dependency,
	// nil for the synthetic root. Only used for diagnostics.
	Parent *Resolved

	// Substituted is set when the version is a "-wip" build standing in for
	// an unpublished release.
	Substituted bool
}

// Key returns the library key the resolution occupies.
func (r *Resolved) Key() string { return registry.LibraryKey(r.Name, r.APIKey) }

// String returns "name@version".
func (r *Resolved) String() string { return r.Name + "@" + r.Version }

func (r *Resolved) isRoot() bool { return r == nil || r.Name == rootName }

// chain returns the requesting packages from the outermost one down to r,
// root excluded. A requested root yields an empty, non-nil slice.
func (r *Resolved) chain() []string {
	out := []string{}
	for p := r; !p.isRoot(); p = p.Parent {
		out = append(out, p.String())
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Package is a resolved package: its metadata plus the library keys its
// dependencies resolved to.
type Package struct {
	*registry.Metadata

	// Requires lists the library keys of the dependencies, sorted and
	// deduplicated.
	Requires []string

	via *Resolved
}

// Result is the outcome of [Resolver.Resolve].
type Result struct {
	// Packages is the lock: one package per library key, in discovery order
	// (round by round, by name within a round).
	Packages []*Package

	// Resolutions lists every resolved query, ordered by name then spec.
	Resolutions []*Resolved

	// Notices are non-fatal diagnostics such as WIP substitutions.
	Notices []string

	// Rounds is the number of rounds the resolution took.
	Rounds int
}
