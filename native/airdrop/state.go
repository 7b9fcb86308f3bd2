package airdrop

import (
	"errors"

	"launchpad/crypto"
	"launchpad/native/common"
	"launchpad/storage"
)

var (
	keyConfig     = []byte{0x10}
	prefixAccount = []byte{0x20}
)

type storeState struct {
	store  storage.Store
	owners *common.Handshake
}

func newStoreState(store storage.Store) *storeState {
	return &storeState{store: store, owners: common.NewHandshake(store)}
}

func (s *storeState) Owners() *common.Handshake { return s.owners }

func (s *storeState) ConfigGet() (*Config, error) {
	cfg := new(Config)
	ok, err := storage.GetRLP(s.store, keyConfig, cfg)
	if err != nil {
		return nil, common.StorageError(err)
	}
	if !ok {
		return nil, common.StorageError(errors.New("airdrop: config missing"))
	}
	return cfg, nil
}

func (s *storeState) ConfigPut(cfg *Config) error {
	return common.StorageError(storage.PutRLP(s.store, keyConfig, cfg))
}

func accountKey(addr crypto.Address) []byte {
	return append(append([]byte{}, prefixAccount...), addr.Bytes()...)
}

func (s *storeState) AccountGet(addr crypto.Address) (*Account, bool, error) {
	acct := new(Account)
	ok, err := storage.GetRLP(s.store, accountKey(addr), acct)
	if err != nil {
		return nil, false, common.StorageError(err)
	}
	if !ok {
		return nil, false, nil
	}
	return acct, true, nil
}

func (s *storeState) AccountPut(addr crypto.Address, acct *Account) error {
	return common.StorageError(storage.PutRLP(s.store, accountKey(addr), acct))
}
