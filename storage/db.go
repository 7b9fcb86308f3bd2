package storage

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound = errors.New("storage: key not found")
	ErrReadOnly = errors.New("storage: read-only transaction")
	ErrClosed   = errors.New("storage: transaction closed")
	ErrEmptyKey = errors.New("storage: empty key")
)

// Order selects the direction of a range scan.
type Order int

const (
	Ascending Order = iota
	Descending
)

// Bound is one end of a range scan. Exclusive bounds skip the key itself.
type Bound struct {
	Key       []byte
	Exclusive bool
}

// Range describes a scan over the keys sharing Prefix. Start and End are
// relative to the prefix; a nil bound leaves that side open.
type Range struct {
	Prefix []byte
	Start  *Bound
	End    *Bound
}

// PrefixRange scans every key under prefix.
func PrefixRange(prefix []byte) Range {
	return Range{Prefix: prefix}
}

// IterFunc receives each key (prefix stripped) and value of a scan. Returning
// false stops the scan.
type IterFunc func(key, value []byte) (bool, error)

// Reader is the read side of a key-value store.
type Reader interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	Iterate(r Range, order Order, fn IterFunc) error
}

// Store is a mutable key-value store.
type Store interface {
	Reader
	Put(key, value []byte) error
	Delete(key []byte) error
}

// Tx is an atomic unit of work. Writes become visible to other transactions
// only after Commit; Discard drops them.
type Tx interface {
	Store
	Commit() error
	Discard()
}

// Database is a generic interface for a transactional key-value store. This
// allows the host to run on any backend (in-memory or persistent).
type Database interface {
	Begin(writable bool) (Tx, error)
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory  = "memory"
	BackendLevelDB = "leveldb"
	BackendBolt    = "bolt"
)

// Open creates or opens the database for the named backend. The path is
// ignored for the in-memory backend.
func Open(backend, path string) (Database, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendMemory:
		return NewMemDB()
	case BackendLevelDB, "":
		return OpenLevelDB(path)
	case BackendBolt:
		return OpenBoltDB(path)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", backend)
	}
}

func concat(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte{}, b...)
}
