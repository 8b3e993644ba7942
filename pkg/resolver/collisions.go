package resolver

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/cdnlock/pkg/registry"
	"github.com/matzehuels/cdnlock/pkg/version"
)

// Collision reports a library key that resolved to several versions.
type Collision struct {
	Name     string   `json:"name"`
	APIKey   string   `json:"apiKey"`
	Versions []string `json:"versions"` // most recent first
}

// String renders the collision as a warning line.
func (c Collision) String() string {
	return fmt.Sprintf("API collision: %s (API %s) resolved to %s",
		c.Name, c.APIKey, strings.Join(c.Versions, ", "))
}

// CheckCollisions groups resolutions by library key and returns the groups
// holding more than one distinct version, ordered by name then API key.
func CheckCollisions(resolutions []*Resolved) []Collision {
	groups := make(map[string]*Collision)
	var keys []string
	for _, r := range resolutions {
		key := registry.LibraryKey(r.Name, r.APIKey)
		c, ok := groups[key]
		if !ok {
			c = &Collision{Name: r.Name, APIKey: r.APIKey}
			groups[key] = c
			keys = append(keys, key)
		}
		if !slices.Contains(c.Versions, r.Version) {
			c.Versions = append(c.Versions, r.Version)
		}
	}

	slices.Sort(keys)
	var out []Collision
	for _, key := range keys {
		c := groups[key]
		if len(c.Versions) < 2 {
			continue
		}
		c.Versions = version.SortDescending(c.Versions)
		out = append(out, *c)
	}
	return out
}
