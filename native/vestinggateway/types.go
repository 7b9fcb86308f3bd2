package vestinggateway

import "launchpad/crypto"

// MaxVestingAddresses bounds the number of vesting contracts the gateway
// routes to.
const MaxVestingAddresses = 6

type InstantiateMsg struct {
	Owner crypto.Address `json:"owner"`
}

type ExecuteMsg struct {
	UpdateConfig           *UpdateConfigMsg     `json:"update_config,omitempty"`
	UpdateVestingAddresses *VestingAddressesMsg `json:"update_vesting_addresses,omitempty"`
	AddVestingAddress      *VestingAddressMsg   `json:"add_vesting_address,omitempty"`
	RemoveVestingAddress   *VestingAddressMsg   `json:"remove_vesting_address,omitempty"`
	AcceptOwnership        *struct{}            `json:"accept_ownership,omitempty"`
}

type UpdateConfigMsg struct {
	Owner *crypto.Address `json:"owner,omitempty"`
}

// VestingAddressesMsg replaces the whole list. Entries are kept as raw
// strings; ones that do not parse are skipped.
type VestingAddressesMsg struct {
	VestingAddresses []string `json:"vesting_addresses"`
}

type VestingAddressMsg struct {
	VestingAddress string `json:"vesting_address"`
}

type QueryMsg struct {
	Config            *struct{}        `json:"config,omitempty"`
	VestingAddresses  *struct{}        `json:"vesting_addresses,omitempty"`
	FindVestingByUser *FindByUserQuery `json:"find_vesting_by_user,omitempty"`
}

type FindByUserQuery struct {
	UserAddress crypto.Address `json:"user_address"`
}

type ConfigResponse struct {
	Owner        crypto.Address  `json:"owner"`
	PendingOwner *crypto.Address `json:"pending_owner,omitempty"`
}

type VestingAddressesResponse struct {
	VestingAddresses []crypto.Address `json:"vesting_addresses"`
}

// VestingByUserResponse names the first vesting contract holding the user,
// if any.
type VestingByUserResponse struct {
	VestingAddress *crypto.Address `json:"vesting_address"`
}

// Delegate wire shapes.

// UserVestingQuery asks a vesting contract whether it holds a schedule for
// an address.
type UserVestingQuery struct {
	UserVesting *AddressQuery `json:"user_vesting"`
}

type AddressQuery struct {
	Address crypto.Address `json:"address"`
}

type UserVestingResponse struct {
	IsInVesting bool `json:"is_in_vesting"`
}
