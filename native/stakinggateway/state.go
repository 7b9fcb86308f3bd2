package stakinggateway

import (
	"errors"

	"launchpad/native/common"
	"launchpad/storage"
)

var keyConfig = []byte{0x10}

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
		return nil, common.StorageError(errors.New("stakinggateway: config missing"))
	}
	return cfg, nil
}

func (s *storeState) ConfigPut(cfg *Config) error {
	return common.StorageError(storage.PutRLP(s.store, keyConfig, cfg))
}
