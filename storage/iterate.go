package storage

import "bytes"

// cursor is the minimal positioned iterator each backend provides. Every
// positioning call reports whether the cursor rests on a valid entry.
type cursor interface {
	seek(key []byte) bool
	last() bool
	next() bool
	prev() bool
	key() []byte
	value() []byte
}

// prefixEnd returns the smallest key greater than every key with the given
// prefix, or nil when no such key exists (empty or all-0xff prefix).
func prefixEnd(prefix []byte) []byte {
	end := clone(prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

type bounds struct {
	prefix    []byte
	lower     []byte
	lowerExcl bool
	upper     []byte
	upperExcl bool
}

func newBounds(r Range) bounds {
	b := bounds{prefix: r.Prefix, lower: r.Prefix}
	if r.Start != nil {
		b.lower = concat(r.Prefix, r.Start.Key)
		b.lowerExcl = r.Start.Exclusive
	}
	if r.End != nil {
		b.upper = concat(r.Prefix, r.End.Key)
		b.upperExcl = r.End.Exclusive
	} else {
		b.upper = prefixEnd(r.Prefix)
		b.upperExcl = true
	}
	return b
}

func (b bounds) aboveLower(k []byte) bool {
	c := bytes.Compare(k, b.lower)
	return c > 0 || (c == 0 && !b.lowerExcl)
}

func (b bounds) belowUpper(k []byte) bool {
	if b.upper == nil {
		return true
	}
	c := bytes.Compare(k, b.upper)
	return c < 0 || (c == 0 && !b.upperExcl)
}

// iterate walks c within r in the requested order, handing keys to fn with
// the prefix removed.
func iterate(c cursor, r Range, order Order, fn IterFunc) error {
	b := newBounds(r)
	emit := func() (bool, error) {
		k := c.key()
		return fn(clone(k[len(b.prefix):]), clone(c.value()))
	}

	if order == Descending {
		var ok bool
		if b.upper == nil {
			ok = c.last()
		} else {
			ok = c.seek(b.upper)
			if !ok {
				ok = c.last()
			} else if !b.belowUpper(c.key()) {
				ok = c.prev()
			}
		}
		for ok {
			k := c.key()
			if !b.aboveLower(k) {
				return nil
			}
			if bytes.HasPrefix(k, b.prefix) && b.belowUpper(k) {
				more, err := emit()
				if err != nil || !more {
					return err
				}
			}
			ok = c.prev()
		}
		return nil
	}

	ok := c.seek(b.lower)
	for ok {
		k := c.key()
		if !b.belowUpper(k) || !bytes.HasPrefix(k, b.prefix) {
			return nil
		}
		if b.aboveLower(k) {
			more, err := emit()
			if err != nil || !more {
				return err
			}
		}
		ok = c.next()
	}
	return nil
}
