package airdrop

import (
	"context"
	"errors"
	"math/big"
	"strings"

	"launchpad/core/events"
	"launchpad/core/types"
	"launchpad/crypto"
	"launchpad/host"
	"launchpad/native/common"
)

// Each satisfied category unlocks another quarter of the allocation on top of
// the base quarter.
const tierDenominator = 4

var (
	errNilState   = errors.New("airdrop engine: state not configured")
	errNilQuerier = errors.New("airdrop engine: querier not configured")

	ErrAlreadyClaimed = common.NewError(common.CodeAlreadyClaimed, "airdrop: already claimed")
	ErrDoMoreTasks    = common.NewError(common.CodeDoMoreTasks, "airdrop: do more tasks to unlock further tokens")
	ErrRecordNotFound = common.NewError(common.CodeRecordNotFound, "airdrop: no allocation for address")
)

// Querier adds native balance reads to delegate queries.
type Querier interface {
	common.Querier
	Balance(ctx context.Context, addr crypto.Address, denom string) (*big.Int, error)
}

type engineState interface {
	Owners() *common.Handshake
	ConfigGet() (*Config, error)
	ConfigPut(cfg *Config) error
	AccountGet(addr crypto.Address) (*Account, bool, error)
	AccountPut(addr crypto.Address, acct *Account) error
}

// stakedCheck holds when the subject has a nonzero bond at the delegate.
func stakedCheck(ctx context.Context, q common.Querier, delegate, subject crypto.Address) (bool, error) {
	var resp StakerInfoResponse
	if err := q.QueryContract(ctx, delegate, StakerInfoQuery{StakerInfo: &StakerQuery{Staker: subject}}, &resp); err != nil {
		return false, err
	}
	return resp.BondAmount != nil && resp.BondAmount.Sign() > 0, nil
}

// joinedCheck holds when the subject joined the offering at the delegate.
func joinedCheck(ctx context.Context, q common.Querier, delegate, subject crypto.Address) (bool, error) {
	var resp FunderInfoResponse
	if err := q.QueryContract(ctx, delegate, FunderInfoQuery{FunderInfo: &AddressQuery{Address: subject}}, &resp); err != nil {
		return false, err
	}
	return resp.IsJoined, nil
}

// Mission checks are advisory: an unreadable delegate never aborts a claim,
// it only withholds the tier it would have unlocked.
var (
	stakingMission = common.Predicate{Check: stakedCheck, Policy: common.FailOpen}
	idoMission     = common.Predicate{Check: joinedCheck, Policy: common.FailOpen}
)

// Engine runs the genesis airdrop.
type Engine struct {
	state   engineState
	querier Querier
	emitter events.Emitter
	self    crypto.Address
}

// NewEngine constructs an airdrop engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{emitter: events.NoopEmitter{}}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetQuerier configures access to delegates and native balances.
func (e *Engine) SetQuerier(q Querier) { e.querier = q }

// SetAddress tells the engine the address it holds funds under.
func (e *Engine) SetAddress(addr crypto.Address) { e.self = addr }

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

// Instantiate stores the initial configuration.
func (e *Engine) Instantiate(msg InstantiateMsg) error {
	if e.state == nil {
		return errNilState
	}
	if err := common.CheckAmount(common.Copy(msg.ClaimFee)); err != nil {
		return err
	}
	denom := msg.NativeDenom
	if denom == "" {
		denom = types.DefaultDenom
	}
	if err := e.state.Owners().Init(msg.Owner); err != nil {
		return err
	}
	return e.state.ConfigPut(&Config{
		Token:       msg.Token,
		LpStaking:   append([]crypto.Address(nil), msg.LpStakingAddresses...),
		SttStaking:  append([]crypto.Address(nil), msg.SttStakingAddresses...),
		Ido:         append([]crypto.Address(nil), msg.IdoAddresses...),
		ClaimFee:    common.Copy(msg.ClaimFee),
		NativeDenom: denom,
	})
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
	var changed []string
	if msg.LpStakingAddresses != nil {
		cfg.LpStaking = append([]crypto.Address(nil), msg.LpStakingAddresses...)
		changed = append(changed, "lpStakingAddresses", strings.Join(crypto.HumanizeAll(cfg.LpStaking), ","))
	}
	if msg.SttStakingAddresses != nil {
		cfg.SttStaking = append([]crypto.Address(nil), msg.SttStakingAddresses...)
		changed = append(changed, "sttStakingAddresses", strings.Join(crypto.HumanizeAll(cfg.SttStaking), ","))
	}
	if msg.IdoAddresses != nil {
		cfg.Ido = append([]crypto.Address(nil), msg.IdoAddresses...)
		changed = append(changed, "idoAddresses", strings.Join(crypto.HumanizeAll(cfg.Ido), ","))
	}
	if msg.ClaimFee != nil {
		if err := common.CheckAmount(msg.ClaimFee); err != nil {
			return err
		}
		cfg.ClaimFee = common.Copy(msg.ClaimFee)
		changed = append(changed, "claimFee", msg.ClaimFee.String())
	}
	if msg.Owner != nil {
		if err := owners.Propose(caller, *msg.Owner); err != nil {
			return err
		}
		e.emit(events.Wrap(common.OwnerProposedEvent(moduleName, caller, *msg.Owner)))
	}
	if err := e.state.ConfigPut(cfg); err != nil {
		return err
	}
	if len(changed) > 0 {
		e.emit(events.Wrap(common.ConfigUpdatedEvent(moduleName, changed...)))
	}
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

// RegisterAccounts overwrites the entitlement of every listed account. It is
// used both for the initial load and for later top-ups.
func (e *Engine) RegisterAccounts(caller crypto.Address, accounts []AccountEntry) error {
	if e.state == nil {
		return errNilState
	}
	if err := e.state.Owners().RequireOwner(caller); err != nil {
		return err
	}
	for _, entry := range accounts {
		amount, claimed := common.Copy(entry.Amount), common.Copy(entry.AlreadyClaimed)
		if err := common.CheckAmount(amount); err != nil {
			return err
		}
		if err := common.CheckAmount(claimed); err != nil {
			return err
		}
		if err := e.state.AccountPut(entry.Address, &Account{Amount: amount, AlreadyClaimed: claimed}); err != nil {
			return err
		}
	}
	e.emit(events.Wrap(accountsRegisteredEvent(len(accounts))))
	return nil
}

// Claim pays out the part of caller's allocation unlocked by the missions
// completed so far. The claim fee must be attached in the native denom.
func (e *Engine) Claim(ctx context.Context, caller crypto.Address, funds types.Coins) ([]host.Msg, error) {
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
	if err := common.RequireFee(funds, cfg.NativeDenom, cfg.ClaimFee); err != nil {
		return nil, err
	}
	acct, ok, err := e.state.AccountGet(caller)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrRecordNotFound
	}
	allocated, claimed := common.Copy(acct.Amount), common.Copy(acct.AlreadyClaimed)
	if claimed.Cmp(allocated) >= 0 {
		return nil, ErrAlreadyClaimed
	}

	missions, err := e.missions(ctx, cfg, caller)
	if err != nil {
		return nil, err
	}
	tiers := missions.tiers()
	unlocked, err := common.MulRatio(allocated, tiers, tierDenominator)
	if err != nil {
		return nil, err
	}
	if unlocked.Cmp(claimed) <= 0 {
		return nil, ErrDoMoreTasks
	}
	delta := new(big.Int).Sub(unlocked, claimed)
	if err := e.state.AccountPut(caller, &Account{Amount: allocated, AlreadyClaimed: unlocked}); err != nil {
		return nil, err
	}
	e.emit(events.Wrap(claimedEvent(caller, delta, unlocked, tiers)))
	return []host.Msg{host.TokenTransfer{Token: cfg.Token, Recipient: caller, Amount: delta}}, nil
}

// EndGenesisAirdrop returns the native balance to the owner and burns every
// undistributed token.
func (e *Engine) EndGenesisAirdrop(ctx context.Context, caller crypto.Address) ([]host.Msg, error) {
	if e.state == nil {
		return nil, errNilState
	}
	if e.querier == nil {
		return nil, errNilQuerier
	}
	owners := e.state.Owners()
	if err := owners.RequireOwner(caller); err != nil {
		return nil, err
	}
	cfg, err := e.state.ConfigGet()
	if err != nil {
		return nil, err
	}
	owner, err := owners.Owner()
	if err != nil {
		return nil, err
	}
	native, err := e.nativeBalance(ctx, cfg)
	if err != nil {
		return nil, err
	}
	var msgs []host.Msg
	if native.Sign() > 0 {
		msgs = append(msgs, host.BankSend{To: owner, Coins: types.Coins{{Denom: cfg.NativeDenom, Amount: native}}})
	}
	burned := e.tokenBalance(ctx, cfg)
	if burned.Sign() > 0 {
		msgs = append(msgs, host.TokenBurn{Token: cfg.Token, Amount: burned})
	}
	e.emit(events.Wrap(endedEvent(native, burned)))
	return msgs, nil
}

// NativeWithdraw sends the whole native balance to to.
func (e *Engine) NativeWithdraw(ctx context.Context, caller, to crypto.Address) ([]host.Msg, error) {
	if e.state == nil {
		return nil, errNilState
	}
	if e.querier == nil {
		return nil, errNilQuerier
	}
	if err := e.state.Owners().RequireOwner(caller); err != nil {
		return nil, err
	}
	cfg, err := e.state.ConfigGet()
	if err != nil {
		return nil, err
	}
	native, err := e.nativeBalance(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if native.Sign() == 0 {
		return nil, common.ErrBalanceIsEmpty
	}
	e.emit(events.Wrap(withdrawnEvent(to, new(big.Int), native)))
	return []host.Msg{host.BankSend{To: to, Coins: types.Coins{{Denom: cfg.NativeDenom, Amount: native}}}}, nil
}

// EmergencyWithdraw transfers amount of the token to to, along with any native
// balance.
func (e *Engine) EmergencyWithdraw(ctx context.Context, caller crypto.Address, msg EmergencyWithdrawMsg) ([]host.Msg, error) {
	if e.state == nil {
		return nil, errNilState
	}
	if e.querier == nil {
		return nil, errNilQuerier
	}
	if err := e.state.Owners().RequireOwner(caller); err != nil {
		return nil, err
	}
	if err := common.CheckAmount(msg.Amount); err != nil {
		return nil, err
	}
	cfg, err := e.state.ConfigGet()
	if err != nil {
		return nil, err
	}
	native, err := e.nativeBalance(ctx, cfg)
	if err != nil {
		return nil, err
	}
	msgs := []host.Msg{host.TokenTransfer{Token: cfg.Token, Recipient: msg.To, Amount: common.Copy(msg.Amount)}}
	if native.Sign() > 0 {
		msgs = append(msgs, host.BankSend{To: msg.To, Coins: types.Coins{{Denom: cfg.NativeDenom, Amount: native}}})
	}
	e.emit(events.Wrap(withdrawnEvent(msg.To, msg.Amount, native)))
	return msgs, nil
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
		Owner:               info.Owner,
		PendingOwner:        info.PendingOwner,
		Token:               cfg.Token,
		LpStakingAddresses:  nonNil(cfg.LpStaking),
		SttStakingAddresses: nonNil(cfg.SttStaking),
		IdoAddresses:        nonNil(cfg.Ido),
		ClaimFee:            common.Copy(cfg.ClaimFee),
		NativeDenom:         cfg.NativeDenom,
	}, nil
}

// UserInfo reports addr's entitlement and the missions it satisfies now.
func (e *Engine) UserInfo(ctx context.Context, addr crypto.Address) (UserInfoResponse, error) {
	if e.state == nil {
		return UserInfoResponse{}, errNilState
	}
	if e.querier == nil {
		return UserInfoResponse{}, errNilQuerier
	}
	cfg, err := e.state.ConfigGet()
	if err != nil {
		return UserInfoResponse{}, err
	}
	acct, ok, err := e.state.AccountGet(addr)
	if err != nil {
		return UserInfoResponse{}, err
	}
	if !ok {
		return UserInfoResponse{}, ErrRecordNotFound
	}
	missions, err := e.missions(ctx, cfg, addr)
	if err != nil {
		return UserInfoResponse{}, err
	}
	return UserInfoResponse{
		ClaimedAmount:        common.Copy(acct.AlreadyClaimed),
		InitialClaimAmount:   common.Copy(acct.Amount),
		CurrentPassedMission: missions,
	}, nil
}

func (e *Engine) missions(ctx context.Context, cfg *Config, subject crypto.Address) (PassedMissions, error) {
	var (
		out PassedMissions
		err error
	)
	if out.IsInLpStaking, _, err = common.AnyOf(ctx, e.querier, stakingMission, cfg.LpStaking, subject); err != nil {
		return PassedMissions{}, err
	}
	if out.IsInSttStaking, _, err = common.AnyOf(ctx, e.querier, stakingMission, cfg.SttStaking, subject); err != nil {
		return PassedMissions{}, err
	}
	if out.IsInIdo, _, err = common.AnyOf(ctx, e.querier, idoMission, cfg.Ido, subject); err != nil {
		return PassedMissions{}, err
	}
	return out, nil
}

func (m PassedMissions) tiers() uint64 {
	n := uint64(1)
	for _, ok := range []bool{m.IsInLpStaking, m.IsInSttStaking, m.IsInIdo} {
		if ok {
			n++
		}
	}
	return n
}

func (e *Engine) nativeBalance(ctx context.Context, cfg *Config) (*big.Int, error) {
	bal, err := e.querier.Balance(ctx, e.self, cfg.NativeDenom)
	if err != nil {
		return nil, err
	}
	return common.Copy(bal), nil
}

// tokenBalance reads the contract's own token holding. A failed read counts
// as nothing to burn.
func (e *Engine) tokenBalance(ctx context.Context, cfg *Config) *big.Int {
	var resp host.TokenBalanceResponse
	ok, _ := common.Read(ctx, e.querier, common.FailOpen, cfg.Token,
		host.TokenQueryMsg{Balance: &host.TokenBalanceQuery{Address: e.self}}, &resp)
	if !ok {
		return new(big.Int)
	}
	return common.Copy(resp.Balance)
}

func nonNil(addrs []crypto.Address) []crypto.Address {
	if addrs == nil {
		return []crypto.Address{}
	}
	return addrs
}
