package ido

import (
	"strconv"

	"launchpad/core/types"
	"launchpad/crypto"
)

const (
	moduleName = "ido"

	// EventTypeJoined is emitted when an account is admitted to the offering.
	EventTypeJoined = "ido.participant.joined"
)

func joinedEvent(addr crypto.Address, participants uint64) *types.Event {
	return &types.Event{
		Type: EventTypeJoined,
		Attributes: map[string]string{
			"address":      addr.String(),
			"participants": strconv.FormatUint(participants, 10),
		},
	}
}
