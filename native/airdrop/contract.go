package airdrop

import (
	"encoding/json"

	"launchpad/host"
	"launchpad/native/common"
	"launchpad/storage"
)

// Kind is the code name the airdrop is registered under.
const Kind = "airdrop"

// Contract adapts the engine to the host call interface.
type Contract struct{}

func engineFor(store storage.Store, env host.Env, q host.Querier, resp *host.Response) *Engine {
	e := NewEngine()
	e.SetState(newStoreState(store))
	e.SetQuerier(q)
	e.SetAddress(env.Contract)
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
	if err := engineFor(ctx.Store, ctx.Env, ctx.Querier, resp).Instantiate(msg); err != nil {
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
	engine := engineFor(ctx.Store, ctx.Env, ctx.Querier, resp)
	caller := ctx.Env.Caller

	var (
		msgs []host.Msg
		err  error
	)
	switch {
	case msg.Claim != nil:
		msgs, err = engine.Claim(ctx, caller, ctx.Env.Funds)
	case msg.RegisterAirdropAccounts != nil:
		err = engine.RegisterAccounts(caller, msg.RegisterAirdropAccounts.AirdropAccounts)
	case msg.UpdateConfig != nil:
		err = engine.UpdateConfig(caller, *msg.UpdateConfig)
	case msg.AcceptOwnership != nil:
		err = engine.AcceptOwnership(caller)
	case msg.EndGenesisAirdrop != nil:
		msgs, err = engine.EndGenesisAirdrop(ctx, caller)
	case msg.NativeWithdraw != nil:
		msgs, err = engine.NativeWithdraw(ctx, caller, msg.NativeWithdraw.To)
	case msg.EmergencyWithdraw != nil:
		msgs, err = engine.EmergencyWithdraw(ctx, caller, *msg.EmergencyWithdraw)
	default:
		err = common.InvalidMessage("airdrop: unknown action")
	}
	if err != nil {
		return nil, err
	}
	for _, m := range msgs {
		resp.AddMessage(m)
	}
	return resp, nil
}

func (Contract) Query(ctx *host.QueryContext, raw json.RawMessage) (interface{}, error) {
	var msg QueryMsg
	if err := common.DecodeMessage(raw, &msg); err != nil {
		return nil, err
	}
	engine := engineFor(storage.ReadOnly{Reader: ctx.Store}, ctx.Env, ctx.Querier, nil)
	switch {
	case msg.Config != nil:
		return engine.Config()
	case msg.UserInfo != nil:
		return engine.UserInfo(ctx, msg.UserInfo.Address)
	}
	return nil, common.InvalidMessage("airdrop: unknown query")
}
