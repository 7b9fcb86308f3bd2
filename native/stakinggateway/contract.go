package stakinggateway

import (
	"encoding/json"

	"launchpad/host"
	"launchpad/native/common"
	"launchpad/storage"
)

// Kind is the code name the gateway is registered under.
const Kind = "stakinggateway"

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

	var err error
	switch {
	case msg.UpdateConfig != nil:
		err = engine.UpdateConfig(ctx.Env.Caller, *msg.UpdateConfig)
	case msg.AcceptOwnership != nil:
		err = engine.AcceptOwnership(ctx.Env.Caller)
	default:
		err = common.InvalidMessage("stakinggateway: unknown action")
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
	case msg.CanUserStake != nil:
		return engine.CanUserStake(ctx, msg.CanUserStake.User)
	case msg.BondAmount != nil:
		return engine.BondAmount(ctx, msg.BondAmount.User)
	case msg.Addresses != nil:
		return engine.Addresses()
	}
	return nil, common.InvalidMessage("stakinggateway: unknown query")
}
