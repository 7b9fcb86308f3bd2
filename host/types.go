package host

import (
	"context"
	"encoding/json"
	"math/big"
	"time"

	"launchpad/core/events"
	"launchpad/core/types"
	"launchpad/crypto"
	"launchpad/storage"
)

// Env describes the message being executed. It is handed to contracts
// explicitly; nothing about the caller or clock is ambient.
type Env struct {
	Now      time.Time
	Caller   crypto.Address
	Contract crypto.Address
	Funds    types.Coins
}

// Querier gives contracts read-only access to other contracts and to the
// native bank within the current message's view of state.
type Querier interface {
	QueryContract(ctx context.Context, contract crypto.Address, req, resp interface{}) error
	Balance(ctx context.Context, addr crypto.Address, denom string) (*big.Int, error)
}

// Context is passed to Instantiate and Execute.
type Context struct {
	context.Context
	Env     Env
	Store   storage.Store
	Querier Querier
}

// QueryContext is passed to Query. The store is read-only.
type QueryContext struct {
	context.Context
	Env     Env
	Store   storage.Reader
	Querier Querier
}

// Contract is the code behind a deployed instance. Implementations hold no
// state of their own; everything persists in the store they are handed.
type Contract interface {
	Instantiate(ctx *Context, msg json.RawMessage) (*Response, error)
	Execute(ctx *Context, msg json.RawMessage) (*Response, error)
	Query(ctx *QueryContext, msg json.RawMessage) (interface{}, error)
}

// Msg is an outbound instruction queued by a contract. Instructions run after
// the contract returns and only take effect if the whole message commits.
type Msg interface {
	Kind() string
}

// TokenTransfer moves Amount of the token at Token from the issuing contract
// to Recipient.
type TokenTransfer struct {
	Token     crypto.Address
	Recipient crypto.Address
	Amount    *big.Int
}

func (TokenTransfer) Kind() string { return "token_transfer" }

// TokenBurn destroys Amount of the issuing contract's holding of Token.
type TokenBurn struct {
	Token  crypto.Address
	Amount *big.Int
}

func (TokenBurn) Kind() string { return "token_burn" }

// BankSend moves native coins from the issuing contract to To.
type BankSend struct {
	To    crypto.Address
	Coins types.Coins
}

func (BankSend) Kind() string { return "bank_send" }

// Response collects the outcome of a successful execution.
type Response struct {
	Messages []Msg
	Events   []*types.Event
	Data     json.RawMessage
}

// NewResponse returns an empty response.
func NewResponse() *Response { return &Response{} }

// AddMessage queues an outbound instruction.
func (r *Response) AddMessage(msg Msg) *Response {
	r.Messages = append(r.Messages, msg)
	return r
}

// AddEvent records an event to publish once the message commits.
func (r *Response) AddEvent(evt *types.Event) *Response {
	if evt != nil {
		r.Events = append(r.Events, evt)
	}
	return r
}

// Result is returned to the submitter of a committed message.
type Result struct {
	MsgID  string
	Events []*types.Event
	Data   json.RawMessage
}

// Emit lets a Response collect events from engines that publish through an
// events.Emitter.
func (r *Response) Emit(evt events.Event) {
	r.AddEvent(events.Payload(evt))
}
