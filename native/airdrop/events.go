package airdrop

import (
	"math/big"
	"strconv"

	"launchpad/core/types"
	"launchpad/crypto"
)

const (
	moduleName = "airdrop"

	EventTypeClaimed            = "airdrop.claimed"
	EventTypeAccountsRegistered = "airdrop.accounts.registered"
	EventTypeEnded              = "airdrop.ended"
	EventTypeWithdrawn          = "airdrop.withdrawn"
)

func claimedEvent(addr crypto.Address, amount, claimed *big.Int, tiers uint64) *types.Event {
	return &types.Event{
		Type: EventTypeClaimed,
		Attributes: map[string]string{
			"address": addr.String(),
			"amount":  amount.String(),
			"claimed": claimed.String(),
			"tiers":   strconv.FormatUint(tiers, 10),
		},
	}
}

func accountsRegisteredEvent(count int) *types.Event {
	return types.NewEvent(EventTypeAccountsRegistered, "count", strconv.Itoa(count))
}

func endedEvent(native, burned *big.Int) *types.Event {
	return types.NewEvent(EventTypeEnded, "native", native.String(), "burned", burned.String())
}

func withdrawnEvent(to crypto.Address, token, native *big.Int) *types.Event {
	return types.NewEvent(EventTypeWithdrawn, "to", to.String(), "token", token.String(), "native", native.String())
}
