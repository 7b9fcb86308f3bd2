package vestinggateway

import (
	"encoding/json"

	"launchpad/host"
	"launchpad/native/common"
	"launchpad/storage"
)

// Kind is the code name the gateway is registered under.
const Kind = "vestinggateway"

// Contract adapts the engine to the host call interface.
type Contract struct{}

func engineFor(store storage.Store, q common.Querier, resp *host.Response) *Engine {
	e := NewEngine()
	e.SetState(newStoreState(store))
	e.SetQuerier(q)
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
	if err := engineFor(ctx.Store, ctx.Querier, resp).Instantiate(msg); err != nil {
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
	engine := engineFor(ctx.Store, ctx.Querier, resp)
	caller := ctx.Env.Caller

	var err error
	switch {
	case msg.UpdateConfig != nil:
		err = engine.UpdateConfig(caller, *msg.UpdateConfig)
	case msg.UpdateVestingAddresses != nil:
		err = engine.UpdateVestingAddresses(caller, msg.UpdateVestingAddresses.VestingAddresses)
	case msg.AddVestingAddress != nil:
		err = engine.AddVestingAddress(caller, msg.AddVestingAddress.VestingAddress)
	case msg.RemoveVestingAddress != nil:
		err = engine.RemoveVestingAddress(caller, msg.RemoveVestingAddress.VestingAddress)
	case msg.AcceptOwnership != nil:
		err = engine.AcceptOwnership(caller)
	default:
		err = common.InvalidMessage("vestinggateway: unknown action")
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
	engine := engineFor(storage.ReadOnly{Reader: ctx.Store}, ctx.Querier, nil)
	switch {
	case msg.Config != nil:
		return engine.Config()
	case msg.VestingAddresses != nil:
		return engine.VestingAddresses()
	case msg.FindVestingByUser != nil:
		return engine.FindVestingByUser(ctx, msg.FindVestingByUser.UserAddress)
	}
	return nil, common.InvalidMessage("vestinggateway: unknown query")
}
