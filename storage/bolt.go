package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
)

var boltStateBucket = []byte("state")

// BoltDB wraps a bbolt database holding every key in a single bucket so range
// scans follow plain byte order.
type BoltDB struct {
	db *bbolt.DB
}

// OpenBoltDB opens or creates the bbolt database at dbPath. The parent
// directory is created if it does not exist.
func OpenBoltDB(dbPath string) (*BoltDB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("storage: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("storage: open bolt db: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltStateBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: create bucket: %w", err)
	}
	return &BoltDB{db: db}, nil
}

// Begin starts a bbolt transaction.
func (b *BoltDB) Begin(writable bool) (Tx, error) {
	tx, err := b.db.Begin(writable)
	if err != nil {
		return nil, err
	}
	bucket := tx.Bucket(boltStateBucket)
	if bucket == nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("storage: missing bucket %q", boltStateBucket)
	}
	return &boltTx{tx: tx, bucket: bucket, writable: writable}, nil
}

// Close closes the underlying database.
func (b *BoltDB) Close() error { return b.db.Close() }

type boltTx struct {
	tx       *bbolt.Tx
	bucket   *bbolt.Bucket
	writable bool
	done     bool
}

func (t *boltTx) Get(key []byte) ([]byte, error) {
	if t.done {
		return nil, ErrClosed
	}
	v := t.bucket.Get(key)
	if v == nil {
		return nil, ErrNotFound
	}
	return clone(v), nil
}

func (t *boltTx) Has(key []byte) (bool, error) {
	if t.done {
		return false, ErrClosed
	}
	return t.bucket.Get(key) != nil, nil
}

func (t *boltTx) Put(key, value []byte) error {
	if t.done {
		return ErrClosed
	}
	if !t.writable {
		return ErrReadOnly
	}
	if len(key) == 0 {
		return ErrEmptyKey
	}
	if value == nil {
		value = []byte{}
	}
	return t.bucket.Put(clone(key), clone(value))
}

func (t *boltTx) Delete(key []byte) error {
	if t.done {
		return ErrClosed
	}
	if !t.writable {
		return ErrReadOnly
	}
	return t.bucket.Delete(key)
}

func (t *boltTx) Iterate(r Range, order Order, fn IterFunc) error {
	if t.done {
		return ErrClosed
	}
	return iterate(&boltCursor{c: t.bucket.Cursor()}, r, order, fn)
}

func (t *boltTx) Commit() error {
	if t.done {
		return ErrClosed
	}
	t.done = true
	if !t.writable {
		return t.tx.Rollback()
	}
	return t.tx.Commit()
}

func (t *boltTx) Discard() {
	if t.done {
		return
	}
	t.done = true
	_ = t.tx.Rollback()
}

type boltCursor struct {
	c *bbolt.Cursor
	k []byte
	v []byte
}

func (c *boltCursor) set(k, v []byte) bool {
	c.k, c.v = k, v
	return k != nil
}

func (c *boltCursor) seek(key []byte) bool { return c.set(c.c.Seek(key)) }
func (c *boltCursor) last() bool           { return c.set(c.c.Last()) }
func (c *boltCursor) next() bool           { return c.set(c.c.Next()) }
func (c *boltCursor) prev() bool           { return c.set(c.c.Prev()) }
func (c *boltCursor) key() []byte          { return c.k }
func (c *boltCursor) value() []byte        { return c.v }
