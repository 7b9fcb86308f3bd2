package storage

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
)

// GetRLP decodes the value stored at key into v. It reports false without an
// error when the key is absent.
func GetRLP(r Reader, key []byte, v interface{}) (bool, error) {
	raw, err := r.Get(key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := rlp.DecodeBytes(raw, v); err != nil {
		return false, fmt.Errorf("storage: decode %x: %w", key, err)
	}
	return true, nil
}

// PutRLP encodes v and stores it at key.
func PutRLP(s Store, key []byte, v interface{}) error {
	raw, err := rlp.EncodeToBytes(v)
	if err != nil {
		return fmt.Errorf("storage: encode %x: %w", key, err)
	}
	return s.Put(key, raw)
}
