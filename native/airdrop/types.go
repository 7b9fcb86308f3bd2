package airdrop

import (
	"math/big"

	"launchpad/crypto"
)

// Config is the persisted airdrop configuration.
type Config struct {
	Token       crypto.Address
	LpStaking   []crypto.Address
	SttStaking  []crypto.Address
	Ido         []crypto.Address
	ClaimFee    *big.Int
	NativeDenom string
}

// Account is one claimant's entitlement.
type Account struct {
	Amount         *big.Int
	AlreadyClaimed *big.Int
}

type InstantiateMsg struct {
	Owner               crypto.Address   `json:"owner"`
	Token               crypto.Address   `json:"token"`
	LpStakingAddresses  []crypto.Address `json:"lp_staking_addresses"`
	SttStakingAddresses []crypto.Address `json:"stt_staking_addresses"`
	IdoAddresses        []crypto.Address `json:"ido_addresses"`
	ClaimFee            *big.Int         `json:"claim_fee"`
	NativeDenom         string           `json:"native_denom,omitempty"`
}

type ExecuteMsg struct {
	UpdateConfig            *UpdateConfigMsg      `json:"update_config,omitempty"`
	EndGenesisAirdrop       *struct{}             `json:"end_genesis_airdrop,omitempty"`
	RegisterAirdropAccounts *RegisterAccountsMsg  `json:"register_airdrop_accounts,omitempty"`
	Claim                   *struct{}             `json:"claim,omitempty"`
	NativeWithdraw          *NativeWithdrawMsg    `json:"native_withdraw,omitempty"`
	EmergencyWithdraw       *EmergencyWithdrawMsg `json:"emergency_withdraw,omitempty"`
	AcceptOwnership         *struct{}             `json:"accept_ownership,omitempty"`
}

// UpdateConfigMsg replaces the fields that are set. A set delegate list
// replaces the whole category.
type UpdateConfigMsg struct {
	Owner               *crypto.Address  `json:"owner,omitempty"`
	LpStakingAddresses  []crypto.Address `json:"lp_staking_addresses,omitempty"`
	SttStakingAddresses []crypto.Address `json:"stt_staking_addresses,omitempty"`
	IdoAddresses        []crypto.Address `json:"ido_addresses,omitempty"`
	ClaimFee            *big.Int         `json:"claim_fee,omitempty"`
}

type RegisterAccountsMsg struct {
	AirdropAccounts []AccountEntry `json:"airdrop_accounts"`
}

// AccountEntry is one row of a bulk registration.
type AccountEntry struct {
	Address        crypto.Address `json:"address"`
	Amount         *big.Int       `json:"amount"`
	AlreadyClaimed *big.Int       `json:"already_claimed"`
}

type NativeWithdrawMsg struct {
	To crypto.Address `json:"to"`
}

type EmergencyWithdrawMsg struct {
	Amount *big.Int       `json:"amount"`
	To     crypto.Address `json:"to"`
}

type QueryMsg struct {
	Config   *struct{}      `json:"config,omitempty"`
	UserInfo *UserInfoQuery `json:"user_info,omitempty"`
}

type UserInfoQuery struct {
	Address crypto.Address `json:"address"`
}

type ConfigResponse struct {
	Owner               crypto.Address   `json:"owner"`
	PendingOwner        *crypto.Address  `json:"pending_owner,omitempty"`
	Token               crypto.Address   `json:"token"`
	LpStakingAddresses  []crypto.Address `json:"lp_staking_addresses"`
	SttStakingAddresses []crypto.Address `json:"stt_staking_addresses"`
	IdoAddresses        []crypto.Address `json:"ido_addresses"`
	ClaimFee            *big.Int         `json:"claim_fee"`
	NativeDenom         string           `json:"native_denom"`
}

type UserInfoResponse struct {
	ClaimedAmount        *big.Int       `json:"claimed_amount"`
	InitialClaimAmount   *big.Int       `json:"initial_claim_amount"`
	CurrentPassedMission PassedMissions `json:"current_passed_missions"`
}

// PassedMissions reports which unlock categories the account satisfies now.
type PassedMissions struct {
	IsInLpStaking  bool `json:"is_in_lp_staking"`
	IsInSttStaking bool `json:"is_in_stt_staking"`
	IsInIdo        bool `json:"is_in_ido"`
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

// FunderInfoQuery asks an IDO contract whether an account joined.
type FunderInfoQuery struct {
	FunderInfo *AddressQuery `json:"funder_info"`
}

type AddressQuery struct {
	Address crypto.Address `json:"address"`
}

type FunderInfoResponse struct {
	IsJoined bool `json:"is_joined"`
}
