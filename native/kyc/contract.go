package kyc

import (
	"encoding/json"

	"launchpad/crypto"
	"launchpad/host"
	"launchpad/native/common"
	"launchpad/storage"
)

// Kind is the code name the vault is registered under.
const Kind = "kyc"

// Contract adapts the engine to the host call interface.
type Contract struct{}

func engineFor(store storage.Store, resp *host.Response) *Engine {
	e := NewEngine()
	e.SetState(newStoreState(store))
	if resp != nil {
		e.SetEmitter(resp)
	}
	return e
}

func (Contract) Instantiate(ctx *host.Context, raw json.RawMessage) (*host.Response, error) {
	var msg InstantiateMsg
	if err := common.DecodeInit(raw, &msg); err != nil {
		return nil, err
	}
	resp := host.NewResponse()
	if err := engineFor(ctx.Store, resp).Instantiate(msg.Owner, msg.KycProviderAddress); err != nil {
		return nil, err
	}
	return resp, nil
}

func (Contract) Execute(ctx *host.Context, raw json.RawMessage) (*host.Response, error) {
	var msg ExecuteMsg
	if err := common.DecodeMessage(raw, &msg); err != nil {
		return nil, err
	}
	resp := host.NewResponse()
	engine := engineFor(ctx.Store, resp)
	caller := ctx.Env.Caller

	var err error
	switch {
	case msg.AcceptTermsOfUse != nil:
		err = engine.AcceptTermsOfUse(caller)
	case msg.UpdateConfig != nil:
		err = engine.UpdateConfig(caller, msg.UpdateConfig.Owner, msg.UpdateConfig.KycProviderAddress)
	case msg.AcceptOwnership != nil:
		err = engine.AcceptOwnership(caller)
	case msg.RegisterAddress != nil:
		err = engine.SetVerified(caller, singleton(msg.RegisterAddress), true)
	case msg.RegisterAddresses != nil:
		err = engine.SetVerified(caller, msg.RegisterAddresses.Addresses, true)
	case msg.UnregisterAddress != nil:
		err = engine.SetVerified(caller, singleton(msg.UnregisterAddress), false)
	case msg.UnregisterAddresses != nil:
		err = engine.SetVerified(caller, msg.UnregisterAddresses.Addresses, false)
	default:
		err = common.InvalidMessage("kyc: unknown action")
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (Contract) Query(ctx *host.QueryContext, raw json.RawMessage) (interface{}, error) {
	var msg QueryMsg
	if err := common.DecodeMessage(raw, &msg); err != nil {
		return nil, err
	}
	engine := engineFor(storage.ReadOnly{Reader: ctx.Store}, nil)
	switch {
	case msg.Config != nil:
		return engine.Config()
	case msg.IsVerified != nil:
		st, err := engine.Status(msg.IsVerified.Address)
		return IsVerifiedResponse{Address: st.Address, IsVerified: st.IsVerified}, err
	case msg.IsAccepted != nil:
		st, err := engine.Status(msg.IsAccepted.Address)
		return IsAcceptedResponse{Address: st.Address, IsAccepted: st.IsAccepted}, err
	case msg.IsAcceptedVerified != nil:
		return engine.Status(msg.IsAcceptedVerified.Address)
	}
	return nil, common.InvalidMessage("kyc: unknown query")
}

func singleton(msg *AddressMsg) []crypto.Address {
	return []crypto.Address{msg.Address}
}
