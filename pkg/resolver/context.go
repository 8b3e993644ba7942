package resolver

import (
	"context"
	"sync"

	"github.com/matzehuels/cdnlock/pkg/registry"
	"github.com/matzehuels/cdnlock/pkg/version"
)

type queryKey struct{ name, spec string }

// Context holds the caches of one resolution: version lists by name,
// resolutions by (name, spec) and packages by library key. Caches only grow.
// Resolve creates a fresh Context per call.
type Context struct {
	mu          sync.Mutex
	versions    map[string][]string
	resolutions map[queryKey]*Resolved
	packages    map[string]*Package
	order       []*Package
}

// NewContext returns an empty Context.
func NewContext() *Context {
	return &Context{
		versions:    make(map[string][]string),
		resolutions: make(map[queryKey]*Resolved),
		packages:    make(map[string]*Package),
	}
}

// Versions returns the cached version list of name, most recent first.
func (c *Context) Versions(name string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.versions[name]
	return v, ok
}

// Resolution returns the cached resolution of (name, spec).
func (c *Context) Resolution(name, spec string) (*Resolved, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.resolutions[queryKey{name, spec}]
	return r, ok
}

// Package returns the cached package occupying a library key.
func (c *Context) Package(key string) (*Package, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.packages[key]
	return p, ok
}

// listVersions serves the version list of name from the cache or the gateway.
// Two tasks of one round may both miss and fetch; the second write is
// identical and harmless.
func (c *Context) listVersions(ctx context.Context, gw registry.Gateway, name string) ([]string, error) {
	if v, ok := c.Versions(name); ok {
		return v, nil
	}
	list, err := gw.ListVersions(ctx, name)
	if err != nil {
		return nil, err
	}
	sorted := version.SortDescending(list.Versions)
	c.mu.Lock()
	c.versions[name] = sorted
	c.mu.Unlock()
	return sorted, nil
}

func (c *Context) addResolution(r *Resolved) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := queryKey{r.Name, r.Query}
	if _, ok := c.resolutions[key]; !ok {
		c.resolutions[key] = r
	}
}

func (c *Context) addPackage(p *Package) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := p.Key()
	if _, ok := c.packages[key]; ok {
		return false
	}
	c.packages[key] = p
	c.order = append(c.order, p)
	return true
}

func (c *Context) allResolutions() []*Resolved {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Resolved, 0, len(c.resolutions))
	for _, r := range c.resolutions {
		out = append(out, r)
	}
	return out
}
