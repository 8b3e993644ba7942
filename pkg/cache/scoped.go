package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments (or
// registries) can share one Redis database without seeing each other's keys.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// HTTPKey generates a prefixed key for registry response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// ResolveKey generates a prefixed key for loading graph caching.
func (k *ScopedKeyer) ResolveKey(opts ResolveKeyOpts) string {
	return k.prefix + k.inner.ResolveKey(opts)
}
