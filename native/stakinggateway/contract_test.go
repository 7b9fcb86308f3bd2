package stakinggateway

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"launchpad/crypto"
	"launchpad/host"
	"launchpad/native/common"
	"launchpad/storage"
)

// stakingContract lets callers bond and answers staker_info. An instance
// created with {"broken":true} rejects every query.
type stakingContract struct{}

func (stakingContract) Instantiate(ctx *host.Context, raw json.RawMessage) (*host.Response, error) {
	var init struct {
		Broken bool `json:"broken"`
	}
	if err := json.Unmarshal(raw, &init); err != nil {
		return nil, err
	}
	if init.Broken {
		return host.NewResponse(), ctx.Store.Put([]byte("broken"), []byte{1})
	}
	return host.NewResponse(), nil
}

func (stakingContract) Execute(ctx *host.Context, raw json.RawMessage) (*host.Response, error) {
	var m struct {
		Bond *struct {
			Amount *big.Int `json:"amount"`
		} `json:"bond"`
	}
	if err := json.Unmarshal(raw, &m); err != nil || m.Bond == nil {
		return nil, common.InvalidMessage("unknown staking message")
	}
	return host.NewResponse(), ctx.Store.Put(ctx.Env.Caller.Bytes(), m.Bond.Amount.Bytes())
}

func (stakingContract) Query(ctx *host.QueryContext, raw json.RawMessage) (interface{}, error) {
	if ok, err := ctx.Store.Has([]byte("broken")); err != nil || ok {
		return nil, errors.New("staking contract is broken")
	}
	var q StakerInfoQuery
	if err := json.Unmarshal(raw, &q); err != nil || q.StakerInfo == nil {
		return nil, common.InvalidMessage("unknown staking query")
	}
	amount := new(big.Int)
	v, err := ctx.Store.Get(q.StakerInfo.Staker.Bytes())
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return nil, err
	default:
		amount.SetBytes(v)
	}
	return StakerInfoResponse{Staker: q.StakerInfo.Staker, BondAmount: amount}, nil
}

func TestGatewayThroughHost(t *testing.T) {
	db, err := storage.NewMemDB()
	require.NoError(t, err)
	defer db.Close()

	h := host.New(db)
	require.NoError(t, h.RegisterCode(Kind, Contract{}))
	require.NoError(t, h.RegisterCode("staking", stakingContract{}))
	ctx := context.Background()

	var pools []crypto.Address
	for _, label := range []string{"a", "b", "c"} {
		addr, _, err := h.Deploy(ctx, "staking", label, owner, json.RawMessage(`{}`))
		require.NoError(t, err)
		pools = append(pools, addr)
	}
	init, err := json.Marshal(InstantiateMsg{Owner: owner, StakingContracts: pools})
	require.NoError(t, err)
	gw, _, err := h.Deploy(ctx, Kind, "gateway", owner, init)
	require.NoError(t, err)

	_, err = h.Execute(ctx, pools[1], alice, nil, json.RawMessage(`{"bond":{"amount":100}}`))
	require.NoError(t, err)

	var bond BondAmountResponse
	require.NoError(t, h.QueryInto(ctx, gw, QueryMsg{BondAmount: &UserQuery{User: alice}}, &bond))
	require.Equal(t, pools[1], *bond.Contract)
	require.Equal(t, big.NewInt(100), bond.BondAmount)

	_, err = h.Execute(ctx, pools[2], alice, nil, json.RawMessage(`{"bond":{"amount":125}}`))
	require.NoError(t, err)
	err = h.QueryInto(ctx, gw, QueryMsg{CanUserStake: &UserQuery{User: alice}}, &CanStakeResponse{})
	require.Equal(t, common.CodeMultipleBonds, common.Code(err))

	broken, _, err := h.Deploy(ctx, "staking", "broken", owner, json.RawMessage(`{"broken":true}`))
	require.NoError(t, err)
	update, err := json.Marshal(ExecuteMsg{UpdateConfig: &UpdateConfigMsg{StakingContracts: []crypto.Address{pools[0], broken}}})
	require.NoError(t, err)
	_, err = h.Execute(ctx, gw, owner, nil, update)
	require.NoError(t, err)
	err = h.QueryInto(ctx, gw, QueryMsg{BondAmount: &UserQuery{User: alice}}, &BondAmountResponse{})
	require.Equal(t, common.CodeDelegateQuery, common.Code(err))

	var addrs AddressesResponse
	require.NoError(t, h.QueryInto(ctx, gw, QueryMsg{Addresses: &struct{}{}}, &addrs))
	require.Equal(t, []crypto.Address{pools[0], broken}, addrs.Addresses)
}
