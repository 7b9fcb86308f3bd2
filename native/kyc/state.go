package kyc

import (
	"errors"

	"launchpad/crypto"
	"launchpad/native/common"
	"launchpad/storage"
)

var (
	keyConfig        = []byte{0x10}
	prefixKycAddress = []byte{0x20}
	prefixTouAddress = []byte{0x21}
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
		return nil, common.StorageError(errors.New("kyc: config missing"))
	}
	return cfg, nil
}

func (s *storeState) ConfigPut(cfg *Config) error {
	return common.StorageError(storage.PutRLP(s.store, keyConfig, cfg))
}

func flagKey(prefix []byte, addr crypto.Address) []byte {
	return append(append([]byte{}, prefix...), addr.Bytes()...)
}

func (s *storeState) flag(prefix []byte, addr crypto.Address) (bool, error) {
	raw, err := s.store.Get(flagKey(prefix, addr))
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, common.StorageError(err)
	}
	return len(raw) == 1 && raw[0] == 1, nil
}

func (s *storeState) setFlag(prefix []byte, addr crypto.Address, value bool) error {
	v := []byte{0}
	if value {
		v[0] = 1
	}
	return common.StorageError(s.store.Put(flagKey(prefix, addr), v))
}

func (s *storeState) Verified(addr crypto.Address) (bool, error) {
	return s.flag(prefixKycAddress, addr)
}

func (s *storeState) SetVerified(addr crypto.Address, verified bool) error {
	return s.setFlag(prefixKycAddress, addr, verified)
}

func (s *storeState) Accepted(addr crypto.Address) (bool, error) {
	return s.flag(prefixTouAddress, addr)
}

func (s *storeState) SetAccepted(addr crypto.Address) error {
	return s.setFlag(prefixTouAddress, addr, true)
}
