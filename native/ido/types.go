package ido

import (
	"math/big"

	"launchpad/crypto"
	"launchpad/native/common"
)

// Config is the persisted offering configuration. Times are unix seconds.
type Config struct {
	PrefundAddress  crypto.Address
	KycVault        crypto.Address
	IdoToken        crypto.Address
	IdoTokenPrice   *big.Int
	EndDate         uint64
	Paused          bool
	HasSnapshotTime bool
	SnapshotTime    uint64
	MinimumPrefund  *big.Int
}

// State holds the running participant counter.
type State struct {
	NumberOfParticipants uint64
}

type InstantiateMsg struct {
	Owner                crypto.Address `json:"owner"`
	PrefundAddress       crypto.Address `json:"prefund_address"`
	KycTermsVaultAddress crypto.Address `json:"kyc_terms_vault_address"`
	IdoToken             crypto.Address `json:"ido_token"`
	IdoTokenPrice        *big.Int       `json:"ido_token_price"`
	EndDate              uint64         `json:"end_date"`
	Paused               bool           `json:"paused"`
	MinimumPrefund       *big.Int       `json:"minimum_prefund"`
}

type ExecuteMsg struct {
	JoinIdo         *struct{}        `json:"join_ido,omitempty"`
	AcceptOwnership *struct{}        `json:"accept_ownership,omitempty"`
	UpdateConfig    *UpdateConfigMsg `json:"update_config,omitempty"`
}

// UpdateConfigMsg changes the fields that are set. Owner starts a handover.
type UpdateConfigMsg struct {
	Owner                *crypto.Address `json:"owner,omitempty"`
	PrefundAddress       *crypto.Address `json:"prefund_address,omitempty"`
	KycTermsVaultAddress *crypto.Address `json:"kyc_terms_vault_address,omitempty"`
	IdoToken             *crypto.Address `json:"ido_token,omitempty"`
	IdoTokenPrice        *big.Int        `json:"ido_token_price,omitempty"`
	EndDate              *uint64         `json:"end_date,omitempty"`
	Paused               *bool           `json:"paused,omitempty"`
	SnapshotTime         *uint64         `json:"snapshot_time,omitempty"`
	MinimumPrefund       *big.Int        `json:"minimum_prefund,omitempty"`
}

type QueryMsg struct {
	FunderInfo   *AddressQuery      `json:"funder_info,omitempty"`
	Config       *struct{}          `json:"config,omitempty"`
	State        *struct{}          `json:"state,omitempty"`
	Status       *StatusQuery       `json:"status,omitempty"`
	SnapshotTime *struct{}          `json:"snapshot_time,omitempty"`
	Participants *ParticipantsQuery `json:"participants,omitempty"`
}

type AddressQuery struct {
	Address crypto.Address `json:"address"`
}

type StatusQuery struct {
	BlockTime *uint64 `json:"block_time,omitempty"`
}

type ParticipantsQuery struct {
	StartAfter *crypto.Address `json:"start_after,omitempty"`
	Limit      *uint32         `json:"limit,omitempty"`
	OrderBy    common.OrderBy  `json:"order_by,omitempty"`
}

type ConfigResponse struct {
	Owner                crypto.Address  `json:"owner"`
	PendingOwner         *crypto.Address `json:"pending_owner,omitempty"`
	PrefundAddress       crypto.Address  `json:"prefund_address"`
	KycTermsVaultAddress crypto.Address  `json:"kyc_terms_vault_address"`
	IdoToken             crypto.Address  `json:"ido_token"`
	IdoTokenPrice        *big.Int        `json:"ido_token_price"`
	EndDate              uint64          `json:"end_date"`
	Paused               bool            `json:"paused"`
	SnapshotTime         *uint64         `json:"snapshot_time,omitempty"`
	MinimumPrefund       *big.Int        `json:"minimum_prefund"`
}

type StateResponse struct {
	NumberOfParticipants uint64 `json:"number_of_participants"`
}

type StatusResponse struct {
	IsClosed     bool    `json:"is_closed"`
	IsPaused     bool    `json:"is_paused"`
	SnapshotTime *uint64 `json:"snapshot_time,omitempty"`
}

// ParticipantResponse answers funder_info. It is also the shape other
// contracts read to learn whether an address joined.
type ParticipantResponse struct {
	IsJoined bool `json:"is_joined"`
}

type ParticipantsResponse struct {
	Users []crypto.Address `json:"users"`
}

// Delegate wire shapes.

// PrefundQuery asks the prefund contract for an account's deposit.
type PrefundQuery struct {
	FunderInfo *AddressQuery `json:"funder_info"`
}

type FunderInfoResponse struct {
	AvailableFunds *big.Int `json:"available_funds"`
	SpentFunds     *big.Int `json:"spent_funds"`
}

// KycQuery asks the KYC vault for verification and terms acceptance.
type KycQuery struct {
	IsAcceptedVerified *AddressQuery `json:"is_accepted_verified"`
}

type KycStatusResponse struct {
	Address    crypto.Address `json:"address"`
	IsAccepted bool           `json:"is_accepted"`
	IsVerified bool           `json:"is_verified"`
}
