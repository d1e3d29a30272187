package cache

// ScopedKeyer prefixes every key of an inner Keyer. The API server scopes
// keys per tenant so that uploaded models never share entries.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "tenant:acme:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer returns a keyer adding prefix to the keys of inner.
// A nil inner uses DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) ModelKey(modelHash string) string {
	return k.prefix + k.inner.ModelKey(modelHash)
}

func (k *ScopedKeyer) QueryKey(modelHash string, opts QueryKeyOpts) string {
	return k.prefix + k.inner.QueryKey(modelHash, opts)
}

func (k *ScopedKeyer) RenderKey(modelHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(modelHash, opts)
}
