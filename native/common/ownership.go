package common

import (
	"errors"

	"launchpad/crypto"
	"launchpad/storage"
)

var (
	keyOwner        = []byte{0x00}
	keyPendingOwner = []byte{0x01}
)

// Handshake stores a contract's owner and the owner it proposed to hand over
// to. Ownership only changes once the proposed account accepts.
type Handshake struct {
	store storage.Store
}

// NewHandshake binds the handshake to a contract's store.
func NewHandshake(store storage.Store) *Handshake {
	return &Handshake{store: store}
}

// Init records the first owner. Called from instantiation only.
func (h *Handshake) Init(owner crypto.Address) error {
	if owner.IsZero() {
		return &CodedError{Code: CodeInvalidAddress, Err: errors.New("owner required")}
	}
	return StorageError(h.store.Put(keyOwner, owner.Bytes()))
}

// Owner returns the current owner.
func (h *Handshake) Owner() (crypto.Address, error) {
	raw, err := h.store.Get(keyOwner)
	if err != nil {
		return crypto.Address{}, StorageError(err)
	}
	addr, err := crypto.NewAddress(raw)
	if err != nil {
		return crypto.Address{}, StorageError(err)
	}
	return addr, nil
}

// PendingOwner returns the proposed owner, if any.
func (h *Handshake) PendingOwner() (crypto.Address, bool, error) {
	raw, err := h.store.Get(keyPendingOwner)
	if errors.Is(err, storage.ErrNotFound) {
		return crypto.Address{}, false, nil
	}
	if err != nil {
		return crypto.Address{}, false, StorageError(err)
	}
	addr, err := crypto.NewAddress(raw)
	if err != nil {
		return crypto.Address{}, false, StorageError(err)
	}
	return addr, true, nil
}

// RequireOwner fails with ErrUnauthorized unless caller is the current owner.
// A pending owner has no privileges until it accepts.
func (h *Handshake) RequireOwner(caller crypto.Address) error {
	owner, err := h.Owner()
	if err != nil {
		return err
	}
	if caller != owner {
		return ErrUnauthorized
	}
	return nil
}

// Propose records newOwner as the pending owner. A later proposal replaces
// an earlier one.
func (h *Handshake) Propose(caller, newOwner crypto.Address) error {
	if err := h.RequireOwner(caller); err != nil {
		return err
	}
	if newOwner.IsZero() {
		return &CodedError{Code: CodeInvalidAddress, Err: errors.New("proposed owner required")}
	}
	return StorageError(h.store.Put(keyPendingOwner, newOwner.Bytes()))
}

// Accept completes the handover when caller is the pending owner and returns
// the previous owner.
func (h *Handshake) Accept(caller crypto.Address) (crypto.Address, error) {
	pending, ok, err := h.PendingOwner()
	if err != nil {
		return crypto.Address{}, err
	}
	if !ok {
		return crypto.Address{}, ErrPendingOwnerMissing
	}
	if caller != pending {
		return crypto.Address{}, ErrUnauthorized
	}
	prev, err := h.Owner()
	if err != nil {
		return crypto.Address{}, err
	}
	if err := h.store.Put(keyOwner, pending.Bytes()); err != nil {
		return crypto.Address{}, StorageError(err)
	}
	if err := h.store.Delete(keyPendingOwner); err != nil {
		return crypto.Address{}, StorageError(err)
	}
	return prev, nil
}

// OwnerInfo is the owner section of every contract's config response.
type OwnerInfo struct {
	Owner        crypto.Address  `json:"owner"`
	PendingOwner *crypto.Address `json:"pending_owner,omitempty"`
}

// Info loads the owner and pending owner for config queries.
func (h *Handshake) Info() (OwnerInfo, error) {
	owner, err := h.Owner()
	if err != nil {
		return OwnerInfo{}, err
	}
	info := OwnerInfo{Owner: owner}
	pending, ok, err := h.PendingOwner()
	if err != nil {
		return OwnerInfo{}, err
	}
	if ok {
		info.PendingOwner = &pending
	}
	return info, nil
}
