package storage

import "sync"

// Synchronized serialises access to a store that is not safe for concurrent
// use, such as an open bbolt transaction shared by parallel delegate queries.
type Synchronized struct {
	mu    sync.Mutex
	inner Store
}

// NewSynchronized wraps s.
func NewSynchronized(s Store) *Synchronized {
	return &Synchronized{inner: s}
}

func (s *Synchronized) Get(key []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Get(key)
}

func (s *Synchronized) Has(key []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Has(key)
}

func (s *Synchronized) Put(key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Put(key, value)
}

func (s *Synchronized) Delete(key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Delete(key)
}

// Iterate collects the matching entries under the lock and invokes fn after
// releasing it, so fn may call back into the store.
func (s *Synchronized) Iterate(r Range, order Order, fn IterFunc) error {
	type kv struct{ k, v []byte }
	var entries []kv
	s.mu.Lock()
	err := s.inner.Iterate(r, order, func(k, v []byte) (bool, error) {
		entries = append(entries, kv{k, v})
		return true, nil
	})
	s.mu.Unlock()
	if err != nil {
		return err
	}
	for _, e := range entries {
		more, err := fn(e.k, e.v)
		if err != nil || !more {
			return err
		}
	}
	return nil
}
