package ido

import (
	"errors"

	"launchpad/crypto"
	"launchpad/native/common"
	"launchpad/storage"
)

var (
	keyConfig         = []byte{0x10}
	keyState          = []byte{0x11}
	prefixParticipant = []byte{0x20}
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
		return nil, common.StorageError(errors.New("ido: config missing"))
	}
	return cfg, nil
}

func (s *storeState) ConfigPut(cfg *Config) error {
	return common.StorageError(storage.PutRLP(s.store, keyConfig, cfg))
}

func (s *storeState) StateGet() (*State, error) {
	st := new(State)
	if _, err := storage.GetRLP(s.store, keyState, st); err != nil {
		return nil, common.StorageError(err)
	}
	return st, nil
}

func (s *storeState) StatePut(st *State) error {
	return common.StorageError(storage.PutRLP(s.store, keyState, st))
}

func participantKey(addr crypto.Address) []byte {
	return append(append([]byte{}, prefixParticipant...), addr.Bytes()...)
}

func (s *storeState) Joined(addr crypto.Address) (bool, error) {
	raw, err := s.store.Get(participantKey(addr))
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, common.StorageError(err)
	}
	return isJoined(raw), nil
}

func (s *storeState) MarkJoined(addr crypto.Address) error {
	return common.StorageError(s.store.Put(participantKey(addr), []byte{1}))
}

func (s *storeState) Participants(req common.PageRequest) ([]crypto.Address, error) {
	return common.PageAddresses(s.store, prefixParticipant, req, func(value []byte) (bool, error) {
		return isJoined(value), nil
	})
}

func isJoined(raw []byte) bool {
	return len(raw) == 1 && raw[0] == 1
}
