package common

import (
	"launchpad/core/types"
	"launchpad/crypto"
)

// OwnerProposedEvent is emitted by every contract when an ownership handover
// is proposed.
func OwnerProposedEvent(module string, owner, pending crypto.Address) *types.Event {
	return &types.Event{
		Type: module + ".owner.proposed",
		Attributes: map[string]string{
			"owner":        owner.String(),
			"pendingOwner": pending.String(),
		},
	}
}

// OwnerAcceptedEvent is emitted when the pending owner completes a handover.
func OwnerAcceptedEvent(module string, previous, owner crypto.Address) *types.Event {
	return &types.Event{
		Type: module + ".owner.accepted",
		Attributes: map[string]string{
			"previousOwner": previous.String(),
			"owner":         owner.String(),
		},
	}
}

// ConfigUpdatedEvent is emitted after an owner changes contract parameters.
func ConfigUpdatedEvent(module string, fields ...string) *types.Event {
	return types.NewEvent(module+".config.updated", fields...)
}
