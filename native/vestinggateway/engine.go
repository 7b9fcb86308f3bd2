package vestinggateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"launchpad/core/events"
	"launchpad/core/types"
	"launchpad/crypto"
	"launchpad/native/common"
)

const moduleName = "vestinggateway"

const (
	EventTypeAddressAdded   = "vestinggateway.address.added"
	EventTypeAddressRemoved = "vestinggateway.address.removed"
)

var (
	errNilState   = errors.New("vestinggateway engine: state not configured")
	errNilQuerier = errors.New("vestinggateway engine: querier not configured")

	ErrAddressAlreadyRegistered = common.NewError(common.CodeAddressAlreadyRegistered, "vestinggateway: vesting address already registered")
	ErrAddressNotRegistered     = common.NewError(common.CodeAddressNotRegistered, "vestinggateway: vesting address not registered")
)

type engineState interface {
	Owners() *common.Handshake
	VestingAddresses() ([]crypto.Address, error)
	VestingAddressesPut(list []crypto.Address) error
}

// Engine keeps the list of vesting contracts and finds the one holding a user.
type Engine struct {
	state   engineState
	querier common.Querier
	emitter events.Emitter
}

// NewEngine constructs a gateway engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{emitter: events.NoopEmitter{}}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetQuerier configures access to the vesting contracts.
func (e *Engine) SetQuerier(q common.Querier) { e.querier = q }

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) emit(evt events.Event) {
	if e.emitter != nil && evt != nil {
		e.emitter.Emit(evt)
	}
}

// Instantiate records the owner and starts with an empty list.
func (e *Engine) Instantiate(msg InstantiateMsg) error {
	if e.state == nil {
		return errNilState
	}
	if err := e.state.Owners().Init(msg.Owner); err != nil {
		return err
	}
	return e.state.VestingAddressesPut([]crypto.Address{})
}

// UpdateConfig proposes a new owner when one is set.
func (e *Engine) UpdateConfig(caller crypto.Address, msg UpdateConfigMsg) error {
	if e.state == nil {
		return errNilState
	}
	owners := e.state.Owners()
	if err := owners.RequireOwner(caller); err != nil {
		return err
	}
	if msg.Owner == nil {
		return nil
	}
	if err := owners.Propose(caller, *msg.Owner); err != nil {
		return err
	}
	e.emit(events.Wrap(common.OwnerProposedEvent(moduleName, caller, *msg.Owner)))
	return nil
}

// AcceptOwnership completes a pending ownership handover.
func (e *Engine) AcceptOwnership(caller crypto.Address) error {
	if e.state == nil {
		return errNilState
	}
	prev, err := e.state.Owners().Accept(caller)
	if err != nil {
		return err
	}
	e.emit(events.Wrap(common.OwnerAcceptedEvent(moduleName, prev, caller)))
	return nil
}

// UpdateVestingAddresses replaces the list. Entries that are not valid
// addresses are dropped; the length limit applies to the raw input.
func (e *Engine) UpdateVestingAddresses(caller crypto.Address, raw []string) error {
	if e.state == nil {
		return errNilState
	}
	if err := e.state.Owners().RequireOwner(caller); err != nil {
		return err
	}
	if len(raw) > MaxVestingAddresses {
		return fmt.Errorf("%w: %d vesting addresses, at most %d", common.ErrTooManyDelegates, len(raw), MaxVestingAddresses)
	}
	list := make([]crypto.Address, 0, len(raw))
	for _, s := range raw {
		addr, err := crypto.DecodeAddress(s)
		if err != nil {
			continue
		}
		list = append(list, addr)
	}
	if err := e.state.VestingAddressesPut(list); err != nil {
		return err
	}
	e.emit(events.Wrap(common.ConfigUpdatedEvent(moduleName,
		"vestingAddresses", strings.Join(crypto.HumanizeAll(list), ","))))
	return nil
}

// AddVestingAddress appends one vesting contract.
func (e *Engine) AddVestingAddress(caller crypto.Address, raw string) error {
	if e.state == nil {
		return errNilState
	}
	if err := e.state.Owners().RequireOwner(caller); err != nil {
		return err
	}
	addr, err := crypto.DecodeAddress(raw)
	if err != nil {
		return common.InvalidAddress(err)
	}
	list, err := e.state.VestingAddresses()
	if err != nil {
		return err
	}
	if len(list) >= MaxVestingAddresses {
		return fmt.Errorf("%w: at most %d vesting addresses", common.ErrTooManyDelegates, MaxVestingAddresses)
	}
	for _, existing := range list {
		if existing == addr {
			return ErrAddressAlreadyRegistered
		}
	}
	if err := e.state.VestingAddressesPut(append(list, addr)); err != nil {
		return err
	}
	e.emit(events.Wrap(types.NewEvent(EventTypeAddressAdded, "address", addr.String())))
	return nil
}

// RemoveVestingAddress drops one vesting contract, keeping the order of the
// rest.
func (e *Engine) RemoveVestingAddress(caller crypto.Address, raw string) error {
	if e.state == nil {
		return errNilState
	}
	if err := e.state.Owners().RequireOwner(caller); err != nil {
		return err
	}
	addr, err := crypto.DecodeAddress(raw)
	if err != nil {
		return common.InvalidAddress(err)
	}
	list, err := e.state.VestingAddresses()
	if err != nil {
		return err
	}
	idx := -1
	for i, existing := range list {
		if existing == addr {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrAddressNotRegistered
	}
	list = append(list[:idx], list[idx+1:]...)
	if err := e.state.VestingAddressesPut(list); err != nil {
		return err
	}
	e.emit(events.Wrap(types.NewEvent(EventTypeAddressRemoved, "address", addr.String())))
	return nil
}

// FindVestingByUser asks the vesting contracts in list order and returns the
// first one holding user. Reads stop at the first hit; a failed read before
// that fails the query.
func (e *Engine) FindVestingByUser(ctx context.Context, user crypto.Address) (VestingByUserResponse, error) {
	if e.state == nil {
		return VestingByUserResponse{}, errNilState
	}
	if e.querier == nil {
		return VestingByUserResponse{}, errNilQuerier
	}
	list, err := e.state.VestingAddresses()
	if err != nil {
		return VestingByUserResponse{}, err
	}
	for _, vesting := range list {
		var resp UserVestingResponse
		if _, err := common.Read(ctx, e.querier, common.FailClosed, vesting,
			UserVestingQuery{UserVesting: &AddressQuery{Address: user}}, &resp); err != nil {
			return VestingByUserResponse{}, err
		}
		if resp.IsInVesting {
			found := vesting
			return VestingByUserResponse{VestingAddress: &found}, nil
		}
	}
	return VestingByUserResponse{}, nil
}

// VestingAddresses lists the vesting contracts in order.
func (e *Engine) VestingAddresses() (VestingAddressesResponse, error) {
	if e.state == nil {
		return VestingAddressesResponse{}, errNilState
	}
	list, err := e.state.VestingAddresses()
	if err != nil {
		return VestingAddressesResponse{}, err
	}
	return VestingAddressesResponse{VestingAddresses: append([]crypto.Address{}, list...)}, nil
}

// Config returns the ownership details.
func (e *Engine) Config() (ConfigResponse, error) {
	if e.state == nil {
		return ConfigResponse{}, errNilState
	}
	info, err := e.state.Owners().Info()
	if err != nil {
		return ConfigResponse{}, err
	}
	return ConfigResponse{Owner: info.Owner, PendingOwner: info.PendingOwner}, nil
}
