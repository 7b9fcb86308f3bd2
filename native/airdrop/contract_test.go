package airdrop

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"launchpad/core/types"
	"launchpad/crypto"
	"launchpad/host"
	"launchpad/native/common"
	"launchpad/storage"
)

var errTokenBalance = common.NewError(common.CodeInsufficientFunds, "token: insufficient balance")

func readAmount(s storage.Reader, key []byte) (*big.Int, error) {
	raw, err := s.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		return new(big.Int), nil
	}
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(raw), nil
}

// tokenContract holds balances keyed by address bytes.
type tokenContract struct{}

type tokenInit struct {
	Holder crypto.Address `json:"holder"`
	Supply *big.Int       `json:"supply"`
}

func (tokenContract) Instantiate(ctx *host.Context, raw json.RawMessage) (*host.Response, error) {
	var init tokenInit
	if err := json.Unmarshal(raw, &init); err != nil {
		return nil, err
	}
	return host.NewResponse(), ctx.Store.Put(init.Holder.Bytes(), init.Supply.Bytes())
}

func (tokenContract) Execute(ctx *host.Context, raw json.RawMessage) (*host.Response, error) {
	var m host.TokenExecuteMsg
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	from, err := readAmount(ctx.Store, ctx.Env.Caller.Bytes())
	if err != nil {
		return nil, err
	}
	switch {
	case m.Transfer != nil:
		if from.Cmp(m.Transfer.Amount) < 0 {
			return nil, errTokenBalance
		}
		to, err := readAmount(ctx.Store, m.Transfer.Recipient.Bytes())
		if err != nil {
			return nil, err
		}
		if err := ctx.Store.Put(ctx.Env.Caller.Bytes(), from.Sub(from, m.Transfer.Amount).Bytes()); err != nil {
			return nil, err
		}
		return host.NewResponse(), ctx.Store.Put(m.Transfer.Recipient.Bytes(), to.Add(to, m.Transfer.Amount).Bytes())
	case m.Burn != nil:
		if from.Cmp(m.Burn.Amount) < 0 {
			return nil, errTokenBalance
		}
		return host.NewResponse(), ctx.Store.Put(ctx.Env.Caller.Bytes(), from.Sub(from, m.Burn.Amount).Bytes())
	}
	return nil, common.InvalidMessage("unknown token message")
}

func (tokenContract) Query(ctx *host.QueryContext, raw json.RawMessage) (interface{}, error) {
	var q host.TokenQueryMsg
	if err := json.Unmarshal(raw, &q); err != nil || q.Balance == nil {
		return nil, common.InvalidMessage("unknown token query")
	}
	bal, err := readAmount(ctx.Store, q.Balance.Address.Bytes())
	if err != nil {
		return nil, err
	}
	return host.TokenBalanceResponse{Balance: bal}, nil
}

// stakingContract lets callers bond an amount and answers staker_info.
type stakingContract struct{}

type bondMsg struct {
	Bond *struct {
		Amount *big.Int `json:"amount"`
	} `json:"bond"`
}

func (stakingContract) Instantiate(*host.Context, json.RawMessage) (*host.Response, error) {
	return host.NewResponse(), nil
}

func (stakingContract) Execute(ctx *host.Context, raw json.RawMessage) (*host.Response, error) {
	var m bondMsg
	if err := json.Unmarshal(raw, &m); err != nil || m.Bond == nil {
		return nil, common.InvalidMessage("unknown staking message")
	}
	return host.NewResponse(), ctx.Store.Put(ctx.Env.Caller.Bytes(), m.Bond.Amount.Bytes())
}

func (stakingContract) Query(ctx *host.QueryContext, raw json.RawMessage) (interface{}, error) {
	var q StakerInfoQuery
	if err := json.Unmarshal(raw, &q); err != nil || q.StakerInfo == nil {
		return nil, common.InvalidMessage("unknown staking query")
	}
	bond, err := readAmount(ctx.Store, q.StakerInfo.Staker.Bytes())
	if err != nil {
		return nil, err
	}
	return StakerInfoResponse{Staker: q.StakerInfo.Staker, BondAmount: bond}, nil
}

func mustJSON(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func fee(n int64) types.Coins { return types.Coins{types.NewCoin(types.DefaultDenom, n)} }

func tokenBalanceOf(t *testing.T, h *host.Host, tokenAddr, who crypto.Address) *big.Int {
	t.Helper()
	var resp host.TokenBalanceResponse
	require.NoError(t, h.QueryInto(context.Background(), tokenAddr, host.TokenQueryMsg{Balance: &host.TokenBalanceQuery{Address: who}}, &resp))
	return resp.Balance
}

func TestAirdropThroughHost(t *testing.T) {
	db, err := storage.NewMemDB()
	require.NoError(t, err)
	defer db.Close()

	h := host.New(db)
	h.SetNowFunc(func() time.Time { return time.Unix(1_700_000_000, 0) })
	require.NoError(t, h.RegisterCode(Kind, Contract{}))
	require.NoError(t, h.RegisterCode("token", tokenContract{}))
	require.NoError(t, h.RegisterCode("staking", stakingContract{}))
	ctx := context.Background()

	require.NoError(t, h.Mint(ctx, alice, fee(100)))
	require.NoError(t, h.Mint(ctx, bob, fee(100)))

	stakingAddr, _, err := h.Deploy(ctx, "staking", "lp", owner, json.RawMessage(`{}`))
	require.NoError(t, err)
	dropAddr := crypto.ContractAddress(owner, "airdrop")
	tokenAddr, _, err := h.Deploy(ctx, "token", "token", owner, mustJSON(t, tokenInit{Holder: dropAddr, Supply: big.NewInt(1_000)}))
	require.NoError(t, err)
	deployed, _, err := h.Deploy(ctx, Kind, "airdrop", owner, mustJSON(t, InstantiateMsg{
		Owner:              owner,
		Token:              tokenAddr,
		LpStakingAddresses: []crypto.Address{stakingAddr},
		ClaimFee:           big.NewInt(10),
	}))
	require.NoError(t, err)
	require.Equal(t, dropAddr, deployed)

	_, err = h.Execute(ctx, dropAddr, owner, nil, mustJSON(t, ExecuteMsg{RegisterAirdropAccounts: &RegisterAccountsMsg{
		AirdropAccounts: []AccountEntry{
			{Address: alice, Amount: big.NewInt(400), AlreadyClaimed: big.NewInt(0)},
			{Address: bob, Amount: big.NewInt(8_000), AlreadyClaimed: big.NewInt(0)},
		},
	}}))
	require.NoError(t, err)

	claim := json.RawMessage(`{"claim":{}}`)
	_, err = h.Execute(ctx, dropAddr, alice, nil, claim)
	require.Equal(t, common.CodeInsufficientFee, common.Code(err))

	res, err := h.Execute(ctx, dropAddr, alice, fee(10), claim)
	require.NoError(t, err)
	require.NotEmpty(t, res.MsgID)
	require.Equal(t, big.NewInt(100), tokenBalanceOf(t, h, tokenAddr, alice))

	// A rejected claim keeps the attached fee with the caller.
	_, err = h.Execute(ctx, dropAddr, alice, fee(10), claim)
	require.Equal(t, common.CodeDoMoreTasks, common.Code(err))
	bal, err := h.Balance(ctx, alice, types.DefaultDenom)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(90), bal)

	_, err = h.Execute(ctx, stakingAddr, alice, nil, json.RawMessage(`{"bond":{"amount":5}}`))
	require.NoError(t, err)
	_, err = h.Execute(ctx, dropAddr, alice, fee(10), claim)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(200), tokenBalanceOf(t, h, tokenAddr, alice))

	// The token rejects bob's transfer, so his ledger entry must not move.
	_, err = h.Execute(ctx, dropAddr, bob, fee(10), claim)
	require.Equal(t, common.CodeInsufficientFunds, common.Code(err))
	var info UserInfoResponse
	require.NoError(t, h.QueryInto(ctx, dropAddr, QueryMsg{UserInfo: &UserInfoQuery{Address: bob}}, &info))
	require.Equal(t, 0, info.ClaimedAmount.Sign())
	require.Equal(t, big.NewInt(8_000), info.InitialClaimAmount)

	require.NoError(t, h.QueryInto(ctx, dropAddr, QueryMsg{UserInfo: &UserInfoQuery{Address: alice}}, &info))
	require.True(t, info.CurrentPassedMission.IsInLpStaking)
	require.False(t, info.CurrentPassedMission.IsInIdo)

	_, err = h.Execute(ctx, dropAddr, alice, nil, json.RawMessage(`{"end_genesis_airdrop":{}}`))
	require.Equal(t, common.CodeUnauthorized, common.Code(err))
	_, err = h.Execute(ctx, dropAddr, owner, nil, json.RawMessage(`{"end_genesis_airdrop":{}}`))
	require.NoError(t, err)

	ownerBal, err := h.Balance(ctx, owner, types.DefaultDenom)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(20), ownerBal)
	require.Equal(t, 0, tokenBalanceOf(t, h, tokenAddr, dropAddr).Sign())

	_, err = h.Execute(ctx, dropAddr, owner, nil, mustJSON(t, ExecuteMsg{NativeWithdraw: &NativeWithdrawMsg{To: owner}}))
	require.Equal(t, common.CodeBalanceIsEmpty, common.Code(err))
}

func TestAirdropRejectsMalformedMessages(t *testing.T) {
	db, err := storage.NewMemDB()
	require.NoError(t, err)
	defer db.Close()

	h := host.New(db)
	require.NoError(t, h.RegisterCode(Kind, Contract{}))
	ctx := context.Background()
	addr, _, err := h.Deploy(ctx, Kind, "airdrop", owner, mustJSON(t, InstantiateMsg{Owner: owner, Token: token, ClaimFee: big.NewInt(0)}))
	require.NoError(t, err)

	for _, raw := range []string{`{}`, `{"claim":{},"accept_ownership":{}}`, `{"mint":{}}`} {
		_, err = h.Execute(ctx, addr, owner, nil, json.RawMessage(raw))
		require.Equal(t, common.CodeInvalidMessage, common.Code(err), raw)
	}

	var cfg ConfigResponse
	require.NoError(t, h.QueryInto(ctx, addr, QueryMsg{Config: &struct{}{}}, &cfg))
	require.Equal(t, types.DefaultDenom, cfg.NativeDenom)
	require.Empty(t, cfg.LpStakingAddresses)
}
