package stakinggateway

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"launchpad/core/events"
	"launchpad/crypto"
	"launchpad/native/common"
)

const moduleName = "stakinggateway"

var (
	errNilState   = errors.New("stakinggateway engine: state not configured")
	errNilQuerier = errors.New("stakinggateway engine: querier not configured")

	ErrMultipleBonds = common.NewError(common.CodeMultipleBonds, "stakinggateway: user cannot stake in more than one contract")
)

type engineState interface {
	Owners() *common.Handshake
	ConfigGet() (*Config, error)
	ConfigPut(cfg *Config) error
}

// bond is one staking contract's answer for a user.
type bond struct {
	contract crypto.Address
	amount   *big.Int
}

// Engine routes staking decisions across a bounded set of staking contracts.
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

// SetQuerier configures access to the staking contracts.
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

func checkContracts(list []crypto.Address) error {
	if len(list) > MaxStakingContracts {
		return fmt.Errorf("%w: %d staking contracts, at most %d", common.ErrTooManyDelegates, len(list), MaxStakingContracts)
	}
	return nil
}

// Instantiate stores the initial configuration.
func (e *Engine) Instantiate(msg InstantiateMsg) error {
	if e.state == nil {
		return errNilState
	}
	if err := checkContracts(msg.StakingContracts); err != nil {
		return err
	}
	if err := e.state.Owners().Init(msg.Owner); err != nil {
		return err
	}
	return e.state.ConfigPut(&Config{StakingContracts: append([]crypto.Address(nil), msg.StakingContracts...)})
}

// UpdateConfig applies the set fields. Only the owner may call it.
func (e *Engine) UpdateConfig(caller crypto.Address, msg UpdateConfigMsg) error {
	if e.state == nil {
		return errNilState
	}
	owners := e.state.Owners()
	if err := owners.RequireOwner(caller); err != nil {
		return err
	}
	cfg, err := e.state.ConfigGet()
	if err != nil {
		return err
	}
	if msg.Owner != nil {
		if err := owners.Propose(caller, *msg.Owner); err != nil {
			return err
		}
		e.emit(events.Wrap(common.OwnerProposedEvent(moduleName, caller, *msg.Owner)))
	}
	if msg.StakingContracts == nil {
		return nil
	}
	if err := checkContracts(msg.StakingContracts); err != nil {
		return err
	}
	cfg.StakingContracts = append([]crypto.Address(nil), msg.StakingContracts...)
	if err := e.state.ConfigPut(cfg); err != nil {
		return err
	}
	e.emit(events.Wrap(common.ConfigUpdatedEvent(moduleName,
		"stakingContracts", strings.Join(crypto.HumanizeAll(cfg.StakingContracts), ","))))
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

// bonds reads user's bond at every staking contract. Any failed read fails
// the whole query.
func (e *Engine) bonds(ctx context.Context, user crypto.Address) ([]bond, error) {
	if e.state == nil {
		return nil, errNilState
	}
	if e.querier == nil {
		return nil, errNilQuerier
	}
	cfg, err := e.state.ConfigGet()
	if err != nil {
		return nil, err
	}
	out := make([]bond, len(cfg.StakingContracts))
	err = common.Gather(ctx, cfg.StakingContracts, func(ctx context.Context, i int, delegate crypto.Address) error {
		var resp StakerInfoResponse
		if _, err := common.Read(ctx, e.querier, common.FailClosed, delegate,
			StakerInfoQuery{StakerInfo: &StakerQuery{Staker: user}}, &resp); err != nil {
			return err
		}
		out[i] = bond{contract: delegate, amount: common.Copy(resp.BondAmount)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// bonded returns the single bond with a nonzero amount, or nil when the user
// holds none.
func bonded(list []bond) (*bond, error) {
	var found *bond
	for i := range list {
		if list[i].amount.Sign() == 0 {
			continue
		}
		if found != nil {
			return nil, ErrMultipleBonds
		}
		found = &list[i]
	}
	return found, nil
}

// CanUserStake reports for every staking contract whether user may bond
// there. A user already bonded somewhere may only add to that contract.
func (e *Engine) CanUserStake(ctx context.Context, user crypto.Address) (CanStakeResponse, error) {
	list, err := e.bonds(ctx, user)
	if err != nil {
		return CanStakeResponse{}, err
	}
	current, err := bonded(list)
	if err != nil {
		return CanStakeResponse{}, err
	}
	statuses := make([]CanStakeStatus, 0, len(list))
	for _, b := range list {
		statuses = append(statuses, CanStakeStatus{
			StakingContract: b.contract,
			CanStake:        current == nil || b.contract == current.contract,
		})
	}
	return CanStakeResponse{Statuses: statuses}, nil
}

// BondAmount returns the contract holding user's bond and its amount.
func (e *Engine) BondAmount(ctx context.Context, user crypto.Address) (BondAmountResponse, error) {
	list, err := e.bonds(ctx, user)
	if err != nil {
		return BondAmountResponse{}, err
	}
	current, err := bonded(list)
	if err != nil {
		return BondAmountResponse{}, err
	}
	if current == nil {
		return BondAmountResponse{User: user, BondAmount: new(big.Int)}, nil
	}
	contract := current.contract
	return BondAmountResponse{User: user, Contract: &contract, BondAmount: current.amount}, nil
}

// Addresses lists the tracked staking contracts in configuration order.
func (e *Engine) Addresses() (AddressesResponse, error) {
	if e.state == nil {
		return AddressesResponse{}, errNilState
	}
	cfg, err := e.state.ConfigGet()
	if err != nil {
		return AddressesResponse{}, err
	}
	return AddressesResponse{Addresses: append([]crypto.Address{}, cfg.StakingContracts...)}, nil
}

// Config returns the configuration with ownership details.
func (e *Engine) Config() (ConfigResponse, error) {
	if e.state == nil {
		return ConfigResponse{}, errNilState
	}
	info, err := e.state.Owners().Info()
	if err != nil {
		return ConfigResponse{}, err
	}
	cfg, err := e.state.ConfigGet()
	if err != nil {
		return ConfigResponse{}, err
	}
	return ConfigResponse{
		Owner:            info.Owner,
		PendingOwner:     info.PendingOwner,
		StakingContracts: append([]crypto.Address{}, cfg.StakingContracts...),
	}, nil
}
