package host

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"launchpad/core/types"
	"launchpad/crypto"
	"launchpad/native/common"
	"launchpad/storage"
)

// Attributes the host adds to every contract event.
const (
	AttrContract = "_contract_address"
	AttrMsgID    = "_msg_id"
)

// view is a consistent read position over state: the open transaction of
// the current message, or a read-only snapshot for external queries.
type view struct {
	host  *Host
	store storage.Store
	now   time.Time
}

type execution struct {
	view
	deploying map[crypto.Address]Instance
	events    []*types.Event
	data      json.RawMessage
}

func (v *view) instance(addr crypto.Address) (Instance, Contract, error) {
	inst, ok := v.host.Lookup(addr)
	if !ok {
		return Instance{}, nil, fmt.Errorf("%w: %s", ErrUnknownContract, addr)
	}
	v.host.regMu.RLock()
	code, ok := v.host.codes[inst.Kind]
	v.host.regMu.RUnlock()
	if !ok {
		return Instance{}, nil, fmt.Errorf("%w: %s", ErrUnknownCode, inst.Kind)
	}
	return inst, code, nil
}

func (x *execution) instance(addr crypto.Address) (Instance, Contract, error) {
	if inst, ok := x.deploying[addr]; ok {
		x.host.regMu.RLock()
		code, ok := x.host.codes[inst.Kind]
		x.host.regMu.RUnlock()
		if ok {
			return inst, code, nil
		}
	}
	return x.view.instance(addr)
}

func (v *view) contractStore(addr crypto.Address) storage.Store {
	return storage.NewPrefixed(v.store, contractPrefix(addr))
}

// call runs one contract invocation and the outbound instructions it queues.
func (x *execution) call(ctx context.Context, addr, caller crypto.Address, funds types.Coins, msg json.RawMessage, depth int, instantiate bool) error {
	if depth > x.host.maxDepth {
		return ErrDepthExceeded
	}
	_, code, err := x.instance(addr)
	if err != nil {
		return err
	}
	if len(funds) > 0 {
		if err := bankFor(x.store).Send(caller, addr, funds); err != nil {
			return err
		}
	}

	hctx := &Context{
		Context: ctx,
		Env:     Env{Now: x.now, Caller: caller, Contract: addr, Funds: funds},
		Store:   x.contractStore(addr),
		Querier: &querier{view: &x.view, depth: depth + 1},
	}
	var resp *Response
	if instantiate {
		resp, err = code.Instantiate(hctx, msg)
	} else {
		resp, err = code.Execute(hctx, msg)
	}
	if err != nil {
		return err
	}
	if resp == nil {
		return nil
	}
	if depth == 0 {
		x.data = resp.Data
	}
	for _, evt := range resp.Events {
		out := evt.Clone()
		if out.Attributes == nil {
			out.Attributes = make(map[string]string)
		}
		out.Attributes[AttrContract] = addr.String()
		x.events = append(x.events, out)
	}
	for _, m := range resp.Messages {
		if err := x.dispatch(ctx, addr, m, depth); err != nil {
			return fmt.Errorf("%s from %s: %w", m.Kind(), addr, err)
		}
	}
	return nil
}

func (x *execution) dispatch(ctx context.Context, from crypto.Address, msg Msg, depth int) error {
	x.host.metrics.RecordOutbound(msg.Kind())
	if token, tmsg, ok := tokenMessage(msg); ok {
		raw, err := json.Marshal(tmsg)
		if err != nil {
			return common.InvalidMessage("encode token message: %v", err)
		}
		return x.call(ctx, token, from, nil, raw, depth+1, false)
	}
	switch m := msg.(type) {
	case BankSend:
		return bankFor(x.store).Send(from, m.To, m.Coins)
	case *BankSend:
		return bankFor(x.store).Send(from, m.To, m.Coins)
	}
	return fmt.Errorf("host: unsupported outbound message %T", msg)
}

func (v *view) query(ctx context.Context, addr crypto.Address, msg json.RawMessage, depth int) (interface{}, error) {
	if depth > v.host.maxDepth {
		return nil, ErrDepthExceeded
	}
	inst, code, err := v.instance(addr)
	if err != nil {
		return nil, err
	}
	qctx := &QueryContext{
		Context: ctx,
		Env:     Env{Now: v.now, Contract: addr},
		Store:   storage.ReadOnly{Reader: v.contractStore(addr)},
		Querier: &querier{view: v, depth: depth + 1},
	}
	out, err := code.Query(qctx, msg)
	v.host.metrics.RecordQuery(inst.Kind, err)
	return out, err
}

// querier is handed to contracts. Nested queries see the same view as the
// message that issued them.
type querier struct {
	view  *view
	depth int
}

func (q *querier) QueryContract(ctx context.Context, contract crypto.Address, req, resp interface{}) error {
	ctx, span := q.view.host.tracer.Start(ctx, "host.query_contract", trace.WithAttributes(
		attribute.String("contract", contract.String()),
		attribute.Int("depth", q.depth),
	))
	defer span.End()

	err := q.roundTrip(ctx, contract, req, resp)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, common.Code(err))
	}
	return err
}

func (q *querier) roundTrip(ctx context.Context, contract crypto.Address, req, resp interface{}) error {
	raw, err := json.Marshal(req)
	if err != nil {
		return common.InvalidMessage("encode query: %v", err)
	}
	out, err := q.view.query(ctx, contract, raw, q.depth)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("host: encode query response: %w", err)
	}
	if err := json.Unmarshal(encoded, resp); err != nil {
		return fmt.Errorf("host: decode query response: %w", err)
	}
	return nil
}

func (q *querier) Balance(_ context.Context, addr crypto.Address, denom string) (*big.Int, error) {
	return bankFor(q.view.store).Balance(addr, denom)
}
