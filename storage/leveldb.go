package storage

import (
	"errors"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	ldbstorage "github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelDB is a key-value store using LevelDB. Writable transactions map onto
// LevelDB transactions, read-only ones onto snapshots.
type LevelDB struct {
	db *leveldb.DB
}

// OpenLevelDB creates or opens a LevelDB database at the specified path.
func OpenLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &LevelDB{db: db}, nil
}

// NewMemDB returns a LevelDB instance backed by volatile memory, for testing
// and ephemeral hosts.
func NewMemDB() (*LevelDB, error) {
	db, err := leveldb.Open(ldbstorage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}
	return &LevelDB{db: db}, nil
}

// Begin starts a transaction. Only one writable transaction may be open at a
// time; LevelDB blocks other writers until it is committed or discarded.
func (ldb *LevelDB) Begin(writable bool) (Tx, error) {
	if writable {
		tr, err := ldb.db.OpenTransaction()
		if err != nil {
			return nil, err
		}
		return &levelTx{tr: tr}, nil
	}
	snap, err := ldb.db.GetSnapshot()
	if err != nil {
		return nil, err
	}
	return &levelSnapshot{snap: snap}, nil
}

// Close closes the database connection.
func (ldb *LevelDB) Close() error {
	return ldb.db.Close()
}

func translateLevelErr(err error) error {
	if errors.Is(err, leveldb.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func levelSlice(prefix []byte) *util.Range {
	if len(prefix) == 0 {
		return nil
	}
	return &util.Range{Start: prefix, Limit: prefixEnd(prefix)}
}

type levelTx struct {
	mu   sync.Mutex
	tr   *leveldb.Transaction
	done bool
}

func (t *levelTx) Get(key []byte) ([]byte, error) {
	if t.done {
		return nil, ErrClosed
	}
	v, err := t.tr.Get(key, nil)
	if err != nil {
		return nil, translateLevelErr(err)
	}
	return v, nil
}

func (t *levelTx) Has(key []byte) (bool, error) {
	if t.done {
		return false, ErrClosed
	}
	return t.tr.Has(key, nil)
}

func (t *levelTx) Put(key, value []byte) error {
	if t.done {
		return ErrClosed
	}
	if len(key) == 0 {
		return ErrEmptyKey
	}
	return t.tr.Put(key, value, nil)
}

func (t *levelTx) Delete(key []byte) error {
	if t.done {
		return ErrClosed
	}
	return t.tr.Delete(key, nil)
}

func (t *levelTx) Iterate(r Range, order Order, fn IterFunc) error {
	if t.done {
		return ErrClosed
	}
	it := t.tr.NewIterator(levelSlice(r.Prefix), nil)
	defer it.Release()
	if err := iterate(levelCursor{it}, r, order, fn); err != nil {
		return err
	}
	return it.Error()
}

func (t *levelTx) Commit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return ErrClosed
	}
	t.done = true
	return t.tr.Commit()
}

func (t *levelTx) Discard() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return
	}
	t.done = true
	t.tr.Discard()
}

type levelSnapshot struct {
	snap *leveldb.Snapshot
	once sync.Once
}

func (s *levelSnapshot) Get(key []byte) ([]byte, error) {
	v, err := s.snap.Get(key, nil)
	if err != nil {
		return nil, translateLevelErr(err)
	}
	return v, nil
}

func (s *levelSnapshot) Has(key []byte) (bool, error) {
	return s.snap.Has(key, nil)
}

func (s *levelSnapshot) Put([]byte, []byte) error { return ErrReadOnly }

func (s *levelSnapshot) Delete([]byte) error { return ErrReadOnly }

func (s *levelSnapshot) Iterate(r Range, order Order, fn IterFunc) error {
	it := s.snap.NewIterator(levelSlice(r.Prefix), nil)
	defer it.Release()
	if err := iterate(levelCursor{it}, r, order, fn); err != nil {
		return err
	}
	return it.Error()
}

func (s *levelSnapshot) Commit() error {
	s.Discard()
	return nil
}

func (s *levelSnapshot) Discard() {
	s.once.Do(s.snap.Release)
}

type levelCursor struct {
	it iterator.Iterator
}

func (c levelCursor) seek(key []byte) bool { return c.it.Seek(key) }
func (c levelCursor) last() bool           { return c.it.Last() }
func (c levelCursor) next() bool           { return c.it.Next() }
func (c levelCursor) prev() bool           { return c.it.Prev() }
func (c levelCursor) key() []byte          { return c.it.Key() }
func (c levelCursor) value() []byte        { return c.it.Value() }
