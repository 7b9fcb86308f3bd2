package stakinggateway

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"launchpad/core/events"
	"launchpad/crypto"
	"launchpad/native/common"
	"launchpad/storage"
)

func testAddr(b byte) crypto.Address {
	var a crypto.Address
	a[0], a[19] = b, b
	return a
}

var (
	owner = testAddr(1)
	poolA = testAddr(2)
	poolB = testAddr(3)
	poolC = testAddr(4)
	alice = testAddr(10)
)

// pools answers staker_info from fixed bond tables. The tables are only read
// during queries, so concurrent reads are safe.
type pools struct {
	bonds map[crypto.Address]map[crypto.Address]int64
	down  map[crypto.Address]bool
}

func newPools(addrs ...crypto.Address) *pools {
	p := &pools{bonds: make(map[crypto.Address]map[crypto.Address]int64), down: make(map[crypto.Address]bool)}
	for _, addr := range addrs {
		p.bonds[addr] = make(map[crypto.Address]int64)
	}
	return p
}

func (p *pools) QueryContract(_ context.Context, contract crypto.Address, req, resp interface{}) error {
	if p.down[contract] {
		return errors.New("staking contract unreachable")
	}
	q, ok := req.(StakerInfoQuery)
	if !ok {
		return errors.New("unexpected query")
	}
	table, ok := p.bonds[contract]
	if !ok {
		return errors.New("not a staking contract")
	}
	raw, err := json.Marshal(StakerInfoResponse{Staker: q.StakerInfo.Staker, BondAmount: big.NewInt(table[q.StakerInfo.Staker])})
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, resp)
}

func newTestEngine(t *testing.T, q common.Querier, contracts ...crypto.Address) (*Engine, *events.Recorder) {
	t.Helper()
	db, err := storage.NewMemDB()
	require.NoError(t, err)
	tx, err := db.Begin(true)
	require.NoError(t, err)
	t.Cleanup(func() {
		tx.Discard()
		_ = db.Close()
	})

	rec := &events.Recorder{}
	e := NewEngine()
	e.SetState(newStoreState(tx))
	e.SetQuerier(q)
	e.SetEmitter(rec)
	require.NoError(t, e.Instantiate(InstantiateMsg{Owner: owner, StakingContracts: contracts}))
	return e, rec
}

func TestCanUserStakeWhenUnbonded(t *testing.T) {
	p := newPools(poolA, poolB, poolC)
	e, _ := newTestEngine(t, p, poolA, poolB, poolC)

	resp, err := e.CanUserStake(context.Background(), alice)
	require.NoError(t, err)
	require.Equal(t, []CanStakeStatus{
		{StakingContract: poolA, CanStake: true},
		{StakingContract: poolB, CanStake: true},
		{StakingContract: poolC, CanStake: true},
	}, resp.Statuses)

	bond, err := e.BondAmount(context.Background(), alice)
	require.NoError(t, err)
	require.Nil(t, bond.Contract)
	require.Equal(t, 0, bond.BondAmount.Sign())
}

func TestCanUserStakeSingleBond(t *testing.T) {
	p := newPools(poolA, poolB, poolC)
	p.bonds[poolB][alice] = 100
	e, _ := newTestEngine(t, p, poolA, poolB, poolC)

	resp, err := e.CanUserStake(context.Background(), alice)
	require.NoError(t, err)
	require.Equal(t, []CanStakeStatus{
		{StakingContract: poolA, CanStake: false},
		{StakingContract: poolB, CanStake: true},
		{StakingContract: poolC, CanStake: false},
	}, resp.Statuses)

	bond, err := e.BondAmount(context.Background(), alice)
	require.NoError(t, err)
	require.NotNil(t, bond.Contract)
	require.Equal(t, poolB, *bond.Contract)
	require.Equal(t, big.NewInt(100), bond.BondAmount)
	require.Equal(t, alice, bond.User)
}

func TestMultipleBondsRejected(t *testing.T) {
	p := newPools(poolA, poolB, poolC)
	p.bonds[poolB][alice] = 100
	p.bonds[poolC][alice] = 125
	e, _ := newTestEngine(t, p, poolA, poolB, poolC)

	_, err := e.CanUserStake(context.Background(), alice)
	require.ErrorIs(t, err, ErrMultipleBonds)
	require.Equal(t, common.CodeMultipleBonds, common.Code(err))

	_, err = e.BondAmount(context.Background(), alice)
	require.ErrorIs(t, err, ErrMultipleBonds)
}

func TestUnreadableStakingContractFails(t *testing.T) {
	p := newPools(poolA, poolB)
	p.down[poolB] = true
	e, _ := newTestEngine(t, p, poolA, poolB)

	_, err := e.CanUserStake(context.Background(), alice)
	require.Error(t, err)
	require.Equal(t, common.CodeDelegateQuery, common.Code(err))
	var derr *common.DelegateError
	require.ErrorAs(t, err, &derr)
	require.Equal(t, poolB, derr.Delegate)

	_, err = e.BondAmount(context.Background(), alice)
	require.Equal(t, common.CodeDelegateQuery, common.Code(err))
}

func TestEmptyGateway(t *testing.T) {
	e, _ := newTestEngine(t, newPools())

	resp, err := e.CanUserStake(context.Background(), alice)
	require.NoError(t, err)
	require.Empty(t, resp.Statuses)

	addrs, err := e.Addresses()
	require.NoError(t, err)
	require.Equal(t, []crypto.Address{}, addrs.Addresses)
}

func TestStakingContractLimit(t *testing.T) {
	six := []crypto.Address{testAddr(20), testAddr(21), testAddr(22), testAddr(23), testAddr(24), testAddr(25)}

	db, err := storage.NewMemDB()
	require.NoError(t, err)
	defer db.Close()
	tx, err := db.Begin(true)
	require.NoError(t, err)
	defer tx.Discard()
	e := NewEngine()
	e.SetState(newStoreState(tx))
	require.ErrorIs(t, e.Instantiate(InstantiateMsg{Owner: owner, StakingContracts: six}), common.ErrTooManyDelegates)

	g, rec := newTestEngine(t, newPools(), poolA)
	require.ErrorIs(t, g.UpdateConfig(owner, UpdateConfigMsg{StakingContracts: six}), common.ErrTooManyDelegates)
	require.NoError(t, g.UpdateConfig(owner, UpdateConfigMsg{StakingContracts: six[:5]}))

	addrs, err := g.Addresses()
	require.NoError(t, err)
	require.Equal(t, six[:5], addrs.Addresses)
	require.Equal(t, []string{moduleName + ".config.updated"}, rec.Types())
}

func TestGatewayOwnership(t *testing.T) {
	e, _ := newTestEngine(t, newPools(), poolA)
	next := testAddr(30)

	require.ErrorIs(t, e.UpdateConfig(alice, UpdateConfigMsg{Owner: &alice}), common.ErrUnauthorized)
	require.ErrorIs(t, e.AcceptOwnership(next), common.ErrPendingOwnerMissing)
	require.NoError(t, e.UpdateConfig(owner, UpdateConfigMsg{Owner: &alice}))
	require.NoError(t, e.UpdateConfig(owner, UpdateConfigMsg{Owner: &next}))
	require.ErrorIs(t, e.AcceptOwnership(alice), common.ErrUnauthorized)
	require.NoError(t, e.AcceptOwnership(next))

	cfg, err := e.Config()
	require.NoError(t, err)
	require.Equal(t, next, cfg.Owner)
	require.Nil(t, cfg.PendingOwner)
	require.Equal(t, []crypto.Address{poolA}, cfg.StakingContracts)
}
