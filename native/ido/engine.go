package ido

import (
	"context"
	"errors"
	"math/big"
	"strconv"
	"time"

	"launchpad/core/events"
	"launchpad/crypto"
	"launchpad/native/common"
)

var (
	errNilState   = errors.New("ido engine: state not configured")
	errNilQuerier = errors.New("ido engine: querier not configured")

	ErrAlreadyJoined        = common.NewError(common.CodeAlreadyJoined, "ido: already joined")
	ErrPaused               = common.NewError(common.CodeIdoPaused, "ido: paused")
	ErrClosed               = common.NewError(common.CodeIdoClosed, "ido: closed")
	ErrNotEnoughDeposit     = common.NewError(common.CodeNotEnoughDeposit, "ido: not enough deposit")
	ErrKycFailed            = common.NewError(common.CodeKycFailed, "ido: kyc not verified")
	ErrTouFailed            = common.NewError(common.CodeTouFailed, "ido: terms of use not accepted")
	ErrEndDateInThePast     = common.NewError(common.CodeEndDateInThePast, "ido: end date in the past")
	ErrSnapshotTimeFromPast = common.NewError(common.CodeSnapshotTimeFromPast, "ido: snapshot time in the past")
)

type engineState interface {
	Owners() *common.Handshake
	ConfigGet() (*Config, error)
	ConfigPut(cfg *Config) error
	StateGet() (*State, error)
	StatePut(st *State) error
	Joined(addr crypto.Address) (bool, error)
	MarkJoined(addr crypto.Address) error
	Participants(req common.PageRequest) ([]crypto.Address, error)
}

// Engine gates admission to an offering.
type Engine struct {
	state   engineState
	querier common.Querier
	emitter events.Emitter
	nowFn   func() time.Time
}

// NewEngine constructs an IDO engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn:   time.Now,
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetQuerier configures access to the prefund and KYC delegates.
func (e *Engine) SetQuerier(q common.Querier) { e.querier = q }

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source.
func (e *Engine) SetNowFunc(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	e.nowFn = now
}

func (e *Engine) now() uint64 {
	return uint64(e.nowFn().Unix())
}

func (e *Engine) emit(evt events.Event) {
	if e.emitter != nil && evt != nil {
		e.emitter.Emit(evt)
	}
}

// Instantiate stores the initial configuration. The end date must lie in the
// future.
func (e *Engine) Instantiate(msg InstantiateMsg) error {
	if e.state == nil {
		return errNilState
	}
	if msg.EndDate <= e.now() {
		return ErrEndDateInThePast
	}
	for _, amt := range []*big.Int{msg.IdoTokenPrice, msg.MinimumPrefund} {
		if err := common.CheckAmount(amt); err != nil {
			return err
		}
	}
	if err := e.state.Owners().Init(msg.Owner); err != nil {
		return err
	}
	cfg := &Config{
		PrefundAddress: msg.PrefundAddress,
		KycVault:       msg.KycTermsVaultAddress,
		IdoToken:       msg.IdoToken,
		IdoTokenPrice:  common.Copy(msg.IdoTokenPrice),
		EndDate:        msg.EndDate,
		Paused:         msg.Paused,
		MinimumPrefund: common.Copy(msg.MinimumPrefund),
	}
	if err := e.state.ConfigPut(cfg); err != nil {
		return err
	}
	return e.state.StatePut(&State{})
}

// Join admits caller. The checks run in a fixed order and the first failing
// one decides the error.
func (e *Engine) Join(ctx context.Context, caller crypto.Address) error {
	if e.state == nil {
		return errNilState
	}
	if e.querier == nil {
		return errNilQuerier
	}
	joined, err := e.state.Joined(caller)
	if err != nil {
		return err
	}
	if joined {
		return ErrAlreadyJoined
	}
	cfg, err := e.state.ConfigGet()
	if err != nil {
		return err
	}
	if cfg.Paused {
		return ErrPaused
	}
	if e.now() > cfg.EndDate {
		return ErrClosed
	}

	var funder FunderInfoResponse
	if _, err := common.Read(ctx, e.querier, common.FailClosed, cfg.PrefundAddress,
		PrefundQuery{FunderInfo: &AddressQuery{Address: caller}}, &funder); err != nil {
		return err
	}
	if common.Copy(funder.AvailableFunds).Cmp(common.Copy(cfg.MinimumPrefund)) < 0 {
		return ErrNotEnoughDeposit
	}

	var kyc KycStatusResponse
	if _, err := common.Read(ctx, e.querier, common.FailClosed, cfg.KycVault,
		KycQuery{IsAcceptedVerified: &AddressQuery{Address: caller}}, &kyc); err != nil {
		return err
	}
	if !kyc.IsVerified {
		return ErrKycFailed
	}
	if !kyc.IsAccepted {
		return ErrTouFailed
	}

	st, err := e.state.StateGet()
	if err != nil {
		return err
	}
	st.NumberOfParticipants++
	if err := e.state.StatePut(st); err != nil {
		return err
	}
	if err := e.state.MarkJoined(caller); err != nil {
		return err
	}
	e.emit(events.Wrap(joinedEvent(caller, st.NumberOfParticipants)))
	return nil
}

// UpdateConfig applies the set fields. Only the owner may call it; end date
// and snapshot time must lie strictly in the future.
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
	now := e.now()
	var changed []string
	if msg.PrefundAddress != nil {
		cfg.PrefundAddress = *msg.PrefundAddress
		changed = append(changed, "prefundAddress", msg.PrefundAddress.String())
	}
	if msg.KycTermsVaultAddress != nil {
		cfg.KycVault = *msg.KycTermsVaultAddress
		changed = append(changed, "kycTermsVaultAddress", msg.KycTermsVaultAddress.String())
	}
	if msg.IdoToken != nil {
		cfg.IdoToken = *msg.IdoToken
		changed = append(changed, "idoToken", msg.IdoToken.String())
	}
	if msg.IdoTokenPrice != nil {
		if err := common.CheckAmount(msg.IdoTokenPrice); err != nil {
			return err
		}
		cfg.IdoTokenPrice = common.Copy(msg.IdoTokenPrice)
		changed = append(changed, "idoTokenPrice", msg.IdoTokenPrice.String())
	}
	if msg.EndDate != nil {
		if *msg.EndDate <= now {
			return ErrEndDateInThePast
		}
		cfg.EndDate = *msg.EndDate
		changed = append(changed, "endDate", strconv.FormatUint(*msg.EndDate, 10))
	}
	if msg.Paused != nil {
		cfg.Paused = *msg.Paused
		changed = append(changed, "paused", strconv.FormatBool(*msg.Paused))
	}
	if msg.MinimumPrefund != nil {
		if err := common.CheckAmount(msg.MinimumPrefund); err != nil {
			return err
		}
		cfg.MinimumPrefund = common.Copy(msg.MinimumPrefund)
		changed = append(changed, "minimumPrefund", msg.MinimumPrefund.String())
	}
	if msg.SnapshotTime != nil {
		if *msg.SnapshotTime <= now {
			return ErrSnapshotTimeFromPast
		}
		cfg.HasSnapshotTime = true
		cfg.SnapshotTime = *msg.SnapshotTime
		changed = append(changed, "snapshotTime", strconv.FormatUint(*msg.SnapshotTime, 10))
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
		Owner:                info.Owner,
		PendingOwner:         info.PendingOwner,
		PrefundAddress:       cfg.PrefundAddress,
		KycTermsVaultAddress: cfg.KycVault,
		IdoToken:             cfg.IdoToken,
		IdoTokenPrice:        common.Copy(cfg.IdoTokenPrice),
		EndDate:              cfg.EndDate,
		Paused:               cfg.Paused,
		SnapshotTime:         snapshotOf(cfg),
		MinimumPrefund:       common.Copy(cfg.MinimumPrefund),
	}, nil
}

// Status reports whether the offering is closed at blockTime (or now) and
// whether it is paused.
func (e *Engine) Status(blockTime *uint64) (StatusResponse, error) {
	if e.state == nil {
		return StatusResponse{}, errNilState
	}
	cfg, err := e.state.ConfigGet()
	if err != nil {
		return StatusResponse{}, err
	}
	at := e.now()
	if blockTime != nil {
		at = *blockTime
	}
	return StatusResponse{IsClosed: cfg.EndDate < at, IsPaused: cfg.Paused, SnapshotTime: snapshotOf(cfg)}, nil
}

// SnapshotTime returns the configured snapshot time, if any.
func (e *Engine) SnapshotTime() (*uint64, error) {
	if e.state == nil {
		return nil, errNilState
	}
	cfg, err := e.state.ConfigGet()
	if err != nil {
		return nil, err
	}
	return snapshotOf(cfg), nil
}

// State returns the participant counter.
func (e *Engine) State() (StateResponse, error) {
	if e.state == nil {
		return StateResponse{}, errNilState
	}
	st, err := e.state.StateGet()
	if err != nil {
		return StateResponse{}, err
	}
	return StateResponse{NumberOfParticipants: st.NumberOfParticipants}, nil
}

// Participant reports whether addr joined. Unknown addresses have not.
func (e *Engine) Participant(addr crypto.Address) (ParticipantResponse, error) {
	if e.state == nil {
		return ParticipantResponse{}, errNilState
	}
	joined, err := e.state.Joined(addr)
	if err != nil {
		return ParticipantResponse{}, err
	}
	return ParticipantResponse{IsJoined: joined}, nil
}

// Participants pages through the joined addresses by canonical byte order.
// Without an explicit ascending order the scan runs descending.
func (e *Engine) Participants(q ParticipantsQuery) (ParticipantsResponse, error) {
	if e.state == nil {
		return ParticipantsResponse{}, errNilState
	}
	req := common.PageRequest{StartAfter: q.StartAfter, Order: q.OrderBy}
	if q.Limit != nil {
		req.Limit = *q.Limit
	}
	users, err := e.state.Participants(req)
	if err != nil {
		return ParticipantsResponse{}, err
	}
	return ParticipantsResponse{Users: users}, nil
}

func snapshotOf(cfg *Config) *uint64 {
	if !cfg.HasSnapshotTime {
		return nil
	}
	v := cfg.SnapshotTime
	return &v
}
