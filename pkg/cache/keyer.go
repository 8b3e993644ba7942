package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Keyer generates cache keys for the different cached artifacts.
type Keyer interface {
	// HTTPKey returns the key of a raw registry response.
	HTTPKey(namespace, key string) string

	// ResolveKey returns the key of a computed loading graph.
	ResolveKey(opts ResolveKeyOpts) string
}

// ResolveKeyOpts holds the request parameters that influence a loading graph.
type ResolveKeyOpts struct {
	Roots  []string          `json:"roots"` // "name@spec", sorted
	Using  map[string]string `json:"using,omitempty"`
	Loaded []string          `json:"loaded,omitempty"` // sorted
	Strict bool              `json:"strict,omitempty"`

	// NoWIPFallback is set when the resolver may not substitute "-wip"
	// builds, so both policies never share an entry.
	NoWIPFallback bool `json:"noWipFallback,omitempty"`
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// ResolveKey returns "resolve:<sha256 of the JSON-encoded opts>". Callers
// must sort slices first; map ordering is handled by the JSON encoder.
func (DefaultKeyer) ResolveKey(opts ResolveKeyOpts) string {
	data, _ := json.Marshal(opts)
	sum := sha256.Sum256(data)
	return "resolve:" + hex.EncodeToString(sum[:])
}

var _ Keyer = DefaultKeyer{}
