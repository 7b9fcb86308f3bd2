package airdrop

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"launchpad/core/events"
	"launchpad/core/types"
	"launchpad/crypto"
	"launchpad/host"
	"launchpad/native/common"
	"launchpad/storage"
)

func testAddr(b byte) crypto.Address {
	var a crypto.Address
	a[0], a[19] = b, b
	return a
}

var (
	owner    = testAddr(1)
	token    = testAddr(2)
	lpPool   = testAddr(3)
	sttPool  = testAddr(4)
	sttPool2 = testAddr(5)
	idoSale  = testAddr(6)
	self     = testAddr(7)
	alice    = testAddr(10)
	bob      = testAddr(11)
)

// delegates serves staking, IDO, token and bank reads from in-memory tables.
type delegates struct {
	bonds   map[crypto.Address]map[crypto.Address]int64
	joined  map[crypto.Address]map[crypto.Address]bool
	tokens  map[crypto.Address]int64
	native  map[crypto.Address]int64
	down    map[crypto.Address]bool
	queries atomic.Int64
}

func newDelegates() *delegates {
	return &delegates{
		bonds:  make(map[crypto.Address]map[crypto.Address]int64),
		joined: make(map[crypto.Address]map[crypto.Address]bool),
		tokens: make(map[crypto.Address]int64),
		native: make(map[crypto.Address]int64),
		down:   make(map[crypto.Address]bool),
	}
}

func (d *delegates) bond(pool, who crypto.Address, amount int64) {
	if d.bonds[pool] == nil {
		d.bonds[pool] = make(map[crypto.Address]int64)
	}
	d.bonds[pool][who] = amount
}

func (d *delegates) join(sale, who crypto.Address) {
	if d.joined[sale] == nil {
		d.joined[sale] = make(map[crypto.Address]bool)
	}
	d.joined[sale][who] = true
}

func (d *delegates) QueryContract(_ context.Context, contract crypto.Address, req, resp interface{}) error {
	d.queries.Add(1)
	if d.down[contract] {
		return errors.New("delegate unreachable")
	}
	var out interface{}
	switch q := req.(type) {
	case StakerInfoQuery:
		pool, ok := d.bonds[contract]
		if !ok {
			return errors.New("not a staking contract")
		}
		out = StakerInfoResponse{Staker: q.StakerInfo.Staker, BondAmount: big.NewInt(pool[q.StakerInfo.Staker])}
	case FunderInfoQuery:
		sale, ok := d.joined[contract]
		if !ok {
			return errors.New("not an ido contract")
		}
		out = FunderInfoResponse{IsJoined: sale[q.FunderInfo.Address]}
	case host.TokenQueryMsg:
		if contract != token {
			return errors.New("not a token")
		}
		out = host.TokenBalanceResponse{Balance: big.NewInt(d.tokens[q.Balance.Address])}
	default:
		return errors.New("unexpected query")
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, resp)
}

func (d *delegates) Balance(_ context.Context, addr crypto.Address, denom string) (*big.Int, error) {
	if denom != types.DefaultDenom {
		return new(big.Int), nil
	}
	return big.NewInt(d.native[addr]), nil
}

type harness struct {
	engine    *Engine
	delegates *delegates
	recorder  *events.Recorder
}

func newHarness(t *testing.T, fee int64) *harness {
	t.Helper()
	db, err := storage.NewMemDB()
	require.NoError(t, err)
	tx, err := db.Begin(true)
	require.NoError(t, err)
	t.Cleanup(func() {
		tx.Discard()
		_ = db.Close()
	})

	h := &harness{delegates: newDelegates(), recorder: &events.Recorder{}}
	h.delegates.bonds[lpPool] = map[crypto.Address]int64{}
	h.delegates.bonds[sttPool] = map[crypto.Address]int64{}
	h.delegates.bonds[sttPool2] = map[crypto.Address]int64{}
	h.delegates.joined[idoSale] = map[crypto.Address]bool{}

	h.engine = NewEngine()
	h.engine.SetState(newStoreState(tx))
	h.engine.SetQuerier(h.delegates)
	h.engine.SetAddress(self)
	h.engine.SetEmitter(h.recorder)
	require.NoError(t, h.engine.Instantiate(InstantiateMsg{
		Owner:               owner,
		Token:               token,
		LpStakingAddresses:  []crypto.Address{lpPool},
		SttStakingAddresses: []crypto.Address{sttPool, sttPool2},
		IdoAddresses:        []crypto.Address{idoSale},
		ClaimFee:            big.NewInt(fee),
	}))
	return h
}

func (h *harness) register(t *testing.T, who crypto.Address, amount, claimed int64) {
	t.Helper()
	require.NoError(t, h.engine.RegisterAccounts(owner, []AccountEntry{{
		Address:        who,
		Amount:         big.NewInt(amount),
		AlreadyClaimed: big.NewInt(claimed),
	}}))
}

func transferOf(t *testing.T, msgs []host.Msg) host.TokenTransfer {
	t.Helper()
	require.Len(t, msgs, 1)
	tr, ok := msgs[0].(host.TokenTransfer)
	require.True(t, ok, "expected token transfer, got %T", msgs[0])
	return tr
}

func TestClaimUnlocksQuarterPerMission(t *testing.T) {
	h := newHarness(t, 0)
	h.register(t, alice, 1_000_000, 0)
	ctx := context.Background()

	msgs, err := h.engine.Claim(ctx, alice, nil)
	require.NoError(t, err)
	tr := transferOf(t, msgs)
	require.Equal(t, token, tr.Token)
	require.Equal(t, alice, tr.Recipient)
	require.Equal(t, big.NewInt(250_000), tr.Amount)

	_, err = h.engine.Claim(ctx, alice, nil)
	require.ErrorIs(t, err, ErrDoMoreTasks)

	h.delegates.bond(sttPool2, alice, 10)
	h.delegates.join(idoSale, alice)
	msgs, err = h.engine.Claim(ctx, alice, nil)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(500_000), transferOf(t, msgs).Amount)

	h.delegates.bond(lpPool, alice, 1)
	msgs, err = h.engine.Claim(ctx, alice, nil)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(250_000), transferOf(t, msgs).Amount)

	_, err = h.engine.Claim(ctx, alice, nil)
	require.ErrorIs(t, err, ErrAlreadyClaimed)

	info, err := h.engine.UserInfo(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(1_000_000), info.ClaimedAmount)
	require.Equal(t, PassedMissions{IsInLpStaking: true, IsInSttStaking: true, IsInIdo: true}, info.CurrentPassedMission)

	require.Equal(t, []string{
		EventTypeAccountsRegistered,
		EventTypeClaimed,
		EventTypeClaimed,
		EventTypeClaimed,
	}, h.recorder.Types())
}

func TestClaimFloorsOddAllocations(t *testing.T) {
	h := newHarness(t, 0)
	h.register(t, alice, 7, 0)
	h.delegates.bond(lpPool, alice, 5)

	msgs, err := h.engine.Claim(context.Background(), alice, nil)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(3), transferOf(t, msgs).Amount)
}

func TestClaimIgnoresUnreadableDelegates(t *testing.T) {
	h := newHarness(t, 0)
	h.register(t, alice, 400, 0)
	h.delegates.bond(lpPool, alice, 5)
	h.delegates.down[lpPool] = true
	h.delegates.down[idoSale] = true

	msgs, err := h.engine.Claim(context.Background(), alice, nil)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(100), transferOf(t, msgs).Amount)

	info, err := h.engine.UserInfo(context.Background(), alice)
	require.NoError(t, err)
	require.False(t, info.CurrentPassedMission.IsInLpStaking)
}

func TestClaimRequiresFee(t *testing.T) {
	h := newHarness(t, 500)
	h.register(t, alice, 400, 0)
	ctx := context.Background()

	_, err := h.engine.Claim(ctx, alice, nil)
	require.ErrorIs(t, err, common.ErrInsufficientFee)
	_, err = h.engine.Claim(ctx, alice, types.Coins{types.NewCoin(types.DefaultDenom, 499)})
	require.ErrorIs(t, err, common.ErrInsufficientFee)
	_, err = h.engine.Claim(ctx, alice, types.Coins{types.NewCoin("uother", 1000)})
	require.ErrorIs(t, err, common.ErrInsufficientFee)

	_, err = h.engine.Claim(ctx, alice, types.Coins{types.NewCoin(types.DefaultDenom, 500)})
	require.NoError(t, err)
}

func TestClaimWithoutRecord(t *testing.T) {
	h := newHarness(t, 0)
	_, err := h.engine.Claim(context.Background(), bob, nil)
	require.ErrorIs(t, err, ErrRecordNotFound)
	require.Equal(t, common.CodeRecordNotFound, common.Code(err))

	_, err = h.engine.UserInfo(context.Background(), bob)
	require.ErrorIs(t, err, ErrRecordNotFound)
}

func TestAlreadyClaimedSkipsDelegateReads(t *testing.T) {
	h := newHarness(t, 0)
	h.register(t, alice, 100, 100)
	h.delegates.queries.Store(0)

	_, err := h.engine.Claim(context.Background(), alice, nil)
	require.ErrorIs(t, err, ErrAlreadyClaimed)
	require.Zero(t, h.delegates.queries.Load())
}

func TestReRegistrationTopsUp(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	h.register(t, alice, 400, 0)
	h.delegates.bond(lpPool, alice, 1)

	msgs, err := h.engine.Claim(ctx, alice, nil)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(200), transferOf(t, msgs).Amount)

	// Allocation doubled while keeping the claimed amount.
	h.register(t, alice, 800, 200)
	msgs, err = h.engine.Claim(ctx, alice, nil)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(200), transferOf(t, msgs).Amount)

	info, err := h.engine.UserInfo(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(400), info.ClaimedAmount)
	require.Equal(t, big.NewInt(800), info.InitialClaimAmount)
}

func TestRegisterAccountsRules(t *testing.T) {
	h := newHarness(t, 0)
	err := h.engine.RegisterAccounts(alice, []AccountEntry{{Address: alice, Amount: big.NewInt(1), AlreadyClaimed: big.NewInt(0)}})
	require.ErrorIs(t, err, common.ErrUnauthorized)

	huge := new(big.Int).Lsh(big.NewInt(1), 128)
	err = h.engine.RegisterAccounts(owner, []AccountEntry{{Address: alice, Amount: huge, AlreadyClaimed: big.NewInt(0)}})
	require.ErrorIs(t, err, common.ErrAmountOutOfRange)
}

func TestClaimFullSupplyRange(t *testing.T) {
	h := newHarness(t, 0)
	ceiling := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	require.NoError(t, h.engine.RegisterAccounts(owner, []AccountEntry{{Address: alice, Amount: ceiling, AlreadyClaimed: big.NewInt(0)}}))
	h.delegates.bond(lpPool, alice, 1)
	h.delegates.bond(sttPool, alice, 1)
	h.delegates.join(idoSale, alice)

	msgs, err := h.engine.Claim(context.Background(), alice, nil)
	require.NoError(t, err)
	require.Equal(t, ceiling, transferOf(t, msgs).Amount)
}

func TestUpdateConfigAndOwnership(t *testing.T) {
	h := newHarness(t, 0)
	next := testAddr(30)

	require.ErrorIs(t, h.engine.UpdateConfig(alice, UpdateConfigMsg{ClaimFee: big.NewInt(1)}), common.ErrUnauthorized)
	require.NoError(t, h.engine.UpdateConfig(owner, UpdateConfigMsg{
		Owner:        &next,
		IdoAddresses: []crypto.Address{},
		ClaimFee:     big.NewInt(9),
	}))

	cfg, err := h.engine.Config()
	require.NoError(t, err)
	require.Equal(t, owner, cfg.Owner)
	require.Equal(t, &next, cfg.PendingOwner)
	require.Empty(t, cfg.IdoAddresses)
	require.Equal(t, []crypto.Address{sttPool, sttPool2}, cfg.SttStakingAddresses)
	require.Equal(t, big.NewInt(9), cfg.ClaimFee)

	// The pending owner has no rights before accepting.
	require.ErrorIs(t, h.engine.RegisterAccounts(next, nil), common.ErrUnauthorized)
	require.ErrorIs(t, h.engine.AcceptOwnership(alice), common.ErrUnauthorized)
	require.NoError(t, h.engine.AcceptOwnership(next))
	require.ErrorIs(t, h.engine.AcceptOwnership(next), common.ErrPendingOwnerMissing)
	require.NoError(t, h.engine.RegisterAccounts(next, nil))
}

func TestEndGenesisAirdrop(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	h.delegates.native[self] = 70
	h.delegates.tokens[self] = 1_000

	_, err := h.engine.EndGenesisAirdrop(ctx, alice)
	require.ErrorIs(t, err, common.ErrUnauthorized)

	msgs, err := h.engine.EndGenesisAirdrop(ctx, owner)
	require.NoError(t, err)
	require.Equal(t, []host.Msg{
		host.BankSend{To: owner, Coins: types.Coins{{Denom: types.DefaultDenom, Amount: big.NewInt(70)}}},
		host.TokenBurn{Token: token, Amount: big.NewInt(1_000)},
	}, msgs)

	// An unreadable token balance burns nothing.
	h.delegates.native[self] = 0
	h.delegates.down[token] = true
	msgs, err = h.engine.EndGenesisAirdrop(ctx, owner)
	require.NoError(t, err)
	require.Empty(t, msgs)
}

func TestWithdrawals(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	dest := testAddr(40)

	_, err := h.engine.NativeWithdraw(ctx, owner, dest)
	require.ErrorIs(t, err, common.ErrBalanceIsEmpty)
	require.Equal(t, common.CodeBalanceIsEmpty, common.Code(err))

	h.delegates.native[self] = 12
	msgs, err := h.engine.NativeWithdraw(ctx, owner, dest)
	require.NoError(t, err)
	require.Equal(t, []host.Msg{host.BankSend{To: dest, Coins: types.Coins{{Denom: types.DefaultDenom, Amount: big.NewInt(12)}}}}, msgs)

	msgs, err = h.engine.EmergencyWithdraw(ctx, owner, EmergencyWithdrawMsg{Amount: big.NewInt(5), To: dest})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, host.TokenTransfer{Token: token, Recipient: dest, Amount: big.NewInt(5)}, msgs[0])

	_, err = h.engine.EmergencyWithdraw(ctx, bob, EmergencyWithdrawMsg{Amount: big.NewInt(5), To: bob})
	require.ErrorIs(t, err, common.ErrUnauthorized)
}
