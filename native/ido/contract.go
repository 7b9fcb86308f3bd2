package ido

import (
	"encoding/json"
	"time"

	"launchpad/host"
	"launchpad/native/common"
	"launchpad/storage"
)

// Kind is the code name the offering is registered under.
const Kind = "ido"

// Contract adapts the engine to the host call interface.
type Contract struct{}

func engineFor(store storage.Store, env host.Env, q common.Querier, resp *host.Response) *Engine {
	e := NewEngine()
	e.SetState(newStoreState(store))
	e.SetQuerier(q)
	e.SetNowFunc(func() time.Time { return env.Now })
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

	var err error
	switch {
	case msg.JoinIdo != nil:
		err = engine.Join(ctx, ctx.Env.Caller)
	case msg.AcceptOwnership != nil:
		err = engine.AcceptOwnership(ctx.Env.Caller)
	case msg.UpdateConfig != nil:
		err = engine.UpdateConfig(ctx.Env.Caller, *msg.UpdateConfig)
	default:
		err = common.InvalidMessage("ido: unknown action")
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
	engine := engineFor(storage.ReadOnly{Reader: ctx.Store}, ctx.Env, ctx.Querier, nil)
	switch {
	case msg.Config != nil:
		return engine.Config()
	case msg.State != nil:
		return engine.State()
	case msg.Status != nil:
		return engine.Status(msg.Status.BlockTime)
	case msg.SnapshotTime != nil:
		return engine.SnapshotTime()
	case msg.FunderInfo != nil:
		return engine.Participant(msg.FunderInfo.Address)
	case msg.Participants != nil:
		return engine.Participants(*msg.Participants)
	}
	return nil, common.InvalidMessage("ido: unknown query")
}
