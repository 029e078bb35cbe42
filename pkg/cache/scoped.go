package cache

// ScopedKeyer wraps a Keyer with a prefix, so that several catalogs or
// deployments can share one Redis without colliding.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "hivegraph:prod:")
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
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(digest string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(digest, opts)
}

// DocumentKey generates a prefixed document key.
func (k *ScopedKeyer) DocumentKey(digest, format string) string {
	return k.prefix + k.inner.DocumentKey(digest, format)
}
