package cache

// ScopedKeyer wraps a Keyer with a prefix so that several projects can
// share one cache backend without colliding.
//
//	k := NewScopedKeyer(NewDefaultKeyer(), "project:api:")
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

func (k *ScopedKeyer) TreeKey(source string, opts TreeKeyOpts) string {
	return k.prefix + k.inner.TreeKey(source, opts)
}

func (k *ScopedKeyer) SceneKey(treeHash string, settings any) string {
	return k.prefix + k.inner.SceneKey(treeHash, settings)
}

func (k *ScopedKeyer) ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(sceneHash, opts)
}
