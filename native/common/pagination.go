package common

import (
	"launchpad/crypto"
	"launchpad/storage"
)

// DefaultLimit is the page size used when a request does not set one.
const DefaultLimit = 1024

// OrderBy is the client-facing scan direction.
type OrderBy string

const (
	OrderAsc  OrderBy = "asc"
	OrderDesc OrderBy = "desc"
)

// PageRequest selects one page of an address keyed registry.
type PageRequest struct {
	StartAfter *crypto.Address
	Limit      uint32
	Order      OrderBy
}

// storageOrder maps the request onto a storage scan direction. Anything other
// than an explicit ascending request scans descending.
func (p PageRequest) storageOrder() storage.Order {
	if p.Order == OrderAsc {
		return storage.Ascending
	}
	return storage.Descending
}

func (p PageRequest) limit() int {
	if p.Limit == 0 {
		return DefaultLimit
	}
	return int(p.Limit)
}

// Range returns the scan range under prefix. The cursor is always excluded:
// ascending scans start strictly after it, descending scans end strictly
// before it.
func (p PageRequest) Range(prefix []byte) storage.Range {
	r := storage.Range{Prefix: prefix}
	if p.StartAfter == nil {
		return r
	}
	bound := &storage.Bound{Key: p.StartAfter.Bytes(), Exclusive: true}
	if p.storageOrder() == storage.Ascending {
		r.Start = bound
	} else {
		r.End = bound
	}
	return r
}

// PageAddresses scans the address keyed records under prefix and returns up
// to the requested number of addresses for which keep reports true.
func PageAddresses(r storage.Reader, prefix []byte, req PageRequest, keep func(value []byte) (bool, error)) ([]crypto.Address, error) {
	limit := req.limit()
	out := make([]crypto.Address, 0)
	err := r.Iterate(req.Range(prefix), req.storageOrder(), func(key, value []byte) (bool, error) {
		addr, err := crypto.NewAddress(key)
		if err != nil {
			return false, StorageError(err)
		}
		if keep != nil {
			ok, err := keep(value)
			if err != nil {
				return false, err
			}
			if !ok {
				return true, nil
			}
		}
		out = append(out, addr)
		return len(out) < limit, nil
	})
	if err != nil {
		return nil, StorageError(err)
	}
	return out, nil
}
