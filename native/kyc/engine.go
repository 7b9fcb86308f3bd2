package kyc

import (
	"errors"

	"launchpad/core/events"
	"launchpad/crypto"
	"launchpad/native/common"
)

var (
	errNilState           = errors.New("kyc engine: state not configured")
	ErrTouAlreadyAccepted = common.NewError(common.CodeTouAlreadyAccepted, "kyc: terms of use already accepted")
)

type engineState interface {
	Owners() *common.Handshake
	ConfigGet() (*Config, error)
	ConfigPut(cfg *Config) error
	Verified(addr crypto.Address) (bool, error)
	SetVerified(addr crypto.Address, verified bool) error
	Accepted(addr crypto.Address) (bool, error)
	SetAccepted(addr crypto.Address) error
}

// Engine keeps the KYC verification and terms-of-use registry.
type Engine struct {
	state   engineState
	emitter events.Emitter
}

// NewEngine constructs a KYC engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{emitter: events.NoopEmitter{}}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

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

// Instantiate stores the owner and the provider allowed to register addresses.
func (e *Engine) Instantiate(owner, provider crypto.Address) error {
	if e.state == nil {
		return errNilState
	}
	if err := e.state.Owners().Init(owner); err != nil {
		return err
	}
	return e.state.ConfigPut(&Config{KycProvider: provider})
}

// UpdateConfig proposes a new owner and/or replaces the KYC provider.
func (e *Engine) UpdateConfig(caller crypto.Address, owner, provider *crypto.Address) error {
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
	if owner != nil {
		if err := owners.Propose(caller, *owner); err != nil {
			return err
		}
		e.emit(events.Wrap(common.OwnerProposedEvent(moduleName, caller, *owner)))
	}
	if provider != nil {
		cfg.KycProvider = *provider
		e.emit(events.Wrap(common.ConfigUpdatedEvent(moduleName, "kycProvider", provider.String())))
	}
	return e.state.ConfigPut(cfg)
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

// SetVerified registers or unregisters addresses. Only the configured KYC
// provider may call it.
func (e *Engine) SetVerified(caller crypto.Address, addrs []crypto.Address, verified bool) error {
	if e.state == nil {
		return errNilState
	}
	cfg, err := e.state.ConfigGet()
	if err != nil {
		return err
	}
	if caller != cfg.KycProvider {
		return common.ErrUnauthorized
	}
	for _, addr := range addrs {
		if err := e.state.SetVerified(addr, verified); err != nil {
			return err
		}
	}
	e.emit(events.Wrap(addressesEvent(verified, addrs)))
	return nil
}

// AcceptTermsOfUse records the caller's acceptance. It can happen only once.
func (e *Engine) AcceptTermsOfUse(caller crypto.Address) error {
	if e.state == nil {
		return errNilState
	}
	accepted, err := e.state.Accepted(caller)
	if err != nil {
		return err
	}
	if accepted {
		return ErrTouAlreadyAccepted
	}
	if err := e.state.SetAccepted(caller); err != nil {
		return err
	}
	e.emit(events.Wrap(termsAcceptedEvent(caller)))
	return nil
}

// Status reports verification and acceptance for addr. Unknown addresses are
// neither verified nor accepted.
func (e *Engine) Status(addr crypto.Address) (IsAcceptedVerifiedResponse, error) {
	if e.state == nil {
		return IsAcceptedVerifiedResponse{}, errNilState
	}
	verified, err := e.state.Verified(addr)
	if err != nil {
		return IsAcceptedVerifiedResponse{}, err
	}
	accepted, err := e.state.Accepted(addr)
	if err != nil {
		return IsAcceptedVerifiedResponse{}, err
	}
	return IsAcceptedVerifiedResponse{Address: addr, IsAccepted: accepted, IsVerified: verified}, nil
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
	return ConfigResponse{Owner: info.Owner, PendingOwner: info.PendingOwner, KycProviderAddress: cfg.KycProvider}, nil
}
