package stakinggateway

import (
	"math/big"

	"launchpad/crypto"
)

// MaxStakingContracts bounds the number of staking contracts a gateway tracks.
const MaxStakingContracts = 5

// Config is the persisted gateway configuration.
type Config struct {
	StakingContracts []crypto.Address
}

type InstantiateMsg struct {
	Owner            crypto.Address   `json:"owner"`
	StakingContracts []crypto.Address `json:"staking_contracts"`
}

type ExecuteMsg struct {
	UpdateConfig    *UpdateConfigMsg `json:"update_config,omitempty"`
	AcceptOwnership *struct{}        `json:"accept_ownership,omitempty"`
}

// UpdateConfigMsg changes the fields that are set. Owner starts a handover.
type UpdateConfigMsg struct {
	Owner            *crypto.Address  `json:"owner,omitempty"`
	StakingContracts []crypto.Address `json:"staking_contracts,omitempty"`
}

type QueryMsg struct {
	Config       *struct{}  `json:"config,omitempty"`
	CanUserStake *UserQuery `json:"can_user_stake,omitempty"`
	BondAmount   *UserQuery `json:"bond_amount,omitempty"`
	Addresses    *struct{}  `json:"addresses,omitempty"`
}

type UserQuery struct {
	User crypto.Address `json:"user"`
}

type ConfigResponse struct {
	Owner            crypto.Address   `json:"owner"`
	PendingOwner     *crypto.Address  `json:"pending_owner,omitempty"`
	StakingContracts []crypto.Address `json:"staking_contracts"`
}

// CanStakeStatus tells whether the user may bond in one staking contract.
type CanStakeStatus struct {
	StakingContract crypto.Address `json:"staking_contract"`
	CanStake        bool           `json:"can_stake"`
}

type CanStakeResponse struct {
	Statuses []CanStakeStatus `json:"statuses"`
}

// BondAmountResponse names the single contract holding the user's bond.
// Contract is absent and BondAmount zero when the user is not bonded.
type BondAmountResponse struct {
	User       crypto.Address  `json:"user"`
	Contract   *crypto.Address `json:"contract,omitempty"`
	BondAmount *big.Int        `json:"bond_amount"`
}

type AddressesResponse struct {
	Addresses []crypto.Address `json:"addresses"`
}

// Delegate wire shapes.

// StakerInfoQuery asks a staking contract for an account's bond.
type StakerInfoQuery struct {
	StakerInfo *StakerQuery `json:"staker_info"`
}

type StakerQuery struct {
	Staker crypto.Address `json:"staker"`
}

type StakerInfoResponse struct {
	Staker     crypto.Address `json:"staker"`
	BondAmount *big.Int       `json:"bond_amount"`
}
