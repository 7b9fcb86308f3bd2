package storage

// Prefixed scopes a store to the keys under a fixed namespace. Each contract
// instance gets one so instances never observe each other's state.
type Prefixed struct {
	parent Store
	prefix []byte
}

// NewPrefixed returns a store that transparently prepends prefix to every key.
func NewPrefixed(parent Store, prefix []byte) *Prefixed {
	return &Prefixed{parent: parent, prefix: clone(prefix)}
}

func (p *Prefixed) key(k []byte) []byte { return concat(p.prefix, k) }

func (p *Prefixed) Get(key []byte) ([]byte, error) { return p.parent.Get(p.key(key)) }

func (p *Prefixed) Has(key []byte) (bool, error) { return p.parent.Has(p.key(key)) }

func (p *Prefixed) Put(key, value []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	return p.parent.Put(p.key(key), value)
}

func (p *Prefixed) Delete(key []byte) error { return p.parent.Delete(p.key(key)) }

func (p *Prefixed) Iterate(r Range, order Order, fn IterFunc) error {
	r.Prefix = p.key(r.Prefix)
	return p.parent.Iterate(r, order, fn)
}

// ReadOnly wraps a store so that writes fail with ErrReadOnly. Queries run
// against ReadOnly views.
type ReadOnly struct {
	Reader
}

func (ReadOnly) Put([]byte, []byte) error { return ErrReadOnly }

func (ReadOnly) Delete([]byte) error { return ErrReadOnly }
