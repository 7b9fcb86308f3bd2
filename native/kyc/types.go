package kyc

import (
	"launchpad/crypto"
)

// Config is the persisted vault configuration. The owner lives in the
// ownership handshake record.
type Config struct {
	KycProvider crypto.Address
}

// InstantiateMsg configures a new vault.
type InstantiateMsg struct {
	Owner              crypto.Address `json:"owner"`
	KycProviderAddress crypto.Address `json:"kyc_provider_address"`
}

// ExecuteMsg carries exactly one action.
type ExecuteMsg struct {
	AcceptTermsOfUse    *struct{}        `json:"accept_terms_of_use,omitempty"`
	UpdateConfig        *UpdateConfigMsg `json:"update_config,omitempty"`
	AcceptOwnership     *struct{}        `json:"accept_ownership,omitempty"`
	RegisterAddress     *AddressMsg      `json:"register_address,omitempty"`
	RegisterAddresses   *AddressesMsg    `json:"register_addresses,omitempty"`
	UnregisterAddress   *AddressMsg      `json:"unregister_address,omitempty"`
	UnregisterAddresses *AddressesMsg    `json:"unregister_addresses,omitempty"`
}

type UpdateConfigMsg struct {
	Owner              *crypto.Address `json:"owner,omitempty"`
	KycProviderAddress *crypto.Address `json:"kyc_provider_address,omitempty"`
}

type AddressMsg struct {
	Address crypto.Address `json:"address"`
}

type AddressesMsg struct {
	Addresses []crypto.Address `json:"addresses"`
}

// QueryMsg carries exactly one query.
type QueryMsg struct {
	IsVerified         *AddressMsg `json:"is_verified,omitempty"`
	IsAccepted         *AddressMsg `json:"is_accepted,omitempty"`
	IsAcceptedVerified *AddressMsg `json:"is_accepted_verified,omitempty"`
	Config             *struct{}   `json:"config,omitempty"`
}

type ConfigResponse struct {
	Owner              crypto.Address  `json:"owner"`
	PendingOwner       *crypto.Address `json:"pending_owner,omitempty"`
	KycProviderAddress crypto.Address  `json:"kyc_provider_address"`
}

type IsVerifiedResponse struct {
	Address    crypto.Address `json:"address"`
	IsVerified bool           `json:"is_verified"`
}

type IsAcceptedResponse struct {
	Address    crypto.Address `json:"address"`
	IsAccepted bool           `json:"is_accepted"`
}

type IsAcceptedVerifiedResponse struct {
	Address    crypto.Address `json:"address"`
	IsAccepted bool           `json:"is_accepted"`
	IsVerified bool           `json:"is_verified"`
}
