package kyc

import (
	"strconv"
	"strings"

	"launchpad/core/types"
	"launchpad/crypto"
)

const (
	moduleName = "kyc"

	// EventTypeAddressesRegistered is emitted when the provider marks
	// addresses as verified.
	EventTypeAddressesRegistered = "kyc.addresses.registered"
	// EventTypeAddressesUnregistered is emitted when the provider revokes
	// verification.
	EventTypeAddressesUnregistered = "kyc.addresses.unregistered"
	// EventTypeTermsAccepted is emitted when an account accepts the terms of use.
	EventTypeTermsAccepted = "kyc.terms.accepted"
)

func addressesEvent(register bool, addrs []crypto.Address) *types.Event {
	eventType := EventTypeAddressesUnregistered
	if register {
		eventType = EventTypeAddressesRegistered
	}
	return &types.Event{
		Type: eventType,
		Attributes: map[string]string{
			"addresses": strings.Join(crypto.HumanizeAll(addrs), ","),
			"count":     strconv.Itoa(len(addrs)),
		},
	}
}

func termsAcceptedEvent(addr crypto.Address) *types.Event {
	return &types.Event{
		Type:       EventTypeTermsAccepted,
		Attributes: map[string]string{"address": addr.String()},
	}
}
