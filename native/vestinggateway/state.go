package vestinggateway

import (
	"launchpad/crypto"
	"launchpad/native/common"
	"launchpad/storage"
)

var keyVestingAddresses = []byte{0x10}

type storeState struct {
	store  storage.Store
	owners *common.Handshake
}

func newStoreState(store storage.Store) *storeState {
	return &storeState{store: store, owners: common.NewHandshake(store)}
}

func (s *storeState) Owners() *common.Handshake { return s.owners }

// VestingAddresses returns the stored list. A gateway that never stored one
// routes nowhere.
func (s *storeState) VestingAddresses() ([]crypto.Address, error) {
	var list []crypto.Address
	if _, err := storage.GetRLP(s.store, keyVestingAddresses, &list); err != nil {
		return nil, common.StorageError(err)
	}
	return list, nil
}

func (s *storeState) VestingAddressesPut(list []crypto.Address) error {
	return common.StorageError(storage.PutRLP(s.store, keyVestingAddresses, list))
}
