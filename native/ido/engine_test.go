package ido

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"testing"
	"time"

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
	owner   = testAddr(1)
	prefund = testAddr(2)
	vault   = testAddr(3)
	token   = testAddr(4)
	alice   = testAddr(10)
	bob     = testAddr(11)
	carol   = testAddr(12)
)

const start = 1_700_000_000

// delegates answers prefund and KYC reads from in-memory tables.
type delegates struct {
	deposits map[crypto.Address]int64
	verified map[crypto.Address]bool
	accepted map[crypto.Address]bool
	down     map[crypto.Address]bool
}

func newDelegates() *delegates {
	return &delegates{
		deposits: make(map[crypto.Address]int64),
		verified: make(map[crypto.Address]bool),
		accepted: make(map[crypto.Address]bool),
		down:     make(map[crypto.Address]bool),
	}
}

func (d *delegates) admit(addr crypto.Address) {
	d.deposits[addr] = 100
	d.verified[addr] = true
	d.accepted[addr] = true
}

func (d *delegates) QueryContract(_ context.Context, contract crypto.Address, req, resp interface{}) error {
	if d.down[contract] {
		return errors.New("delegate unreachable")
	}
	var out interface{}
	switch q := req.(type) {
	case PrefundQuery:
		if contract != prefund {
			return errors.New("not a prefund contract")
		}
		out = FunderInfoResponse{AvailableFunds: big.NewInt(d.deposits[q.FunderInfo.Address]), SpentFunds: new(big.Int)}
	case KycQuery:
		if contract != vault {
			return errors.New("not a kyc vault")
		}
		addr := q.IsAcceptedVerified.Address
		out = KycStatusResponse{Address: addr, IsVerified: d.verified[addr], IsAccepted: d.accepted[addr]}
	default:
		return errors.New("unexpected query")
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, resp)
}

type harness struct {
	engine    *Engine
	delegates *delegates
	recorder  *events.Recorder
	now       time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db, err := storage.NewMemDB()
	require.NoError(t, err)
	tx, err := db.Begin(true)
	require.NoError(t, err)
	t.Cleanup(func() {
		tx.Discard()
		_ = db.Close()
	})

	h := &harness{delegates: newDelegates(), recorder: &events.Recorder{}, now: time.Unix(start, 0)}
	h.engine = NewEngine()
	h.engine.SetState(newStoreState(tx))
	h.engine.SetQuerier(h.delegates)
	h.engine.SetEmitter(h.recorder)
	h.engine.SetNowFunc(func() time.Time { return h.now })

	require.NoError(t, h.engine.Instantiate(InstantiateMsg{
		Owner:                owner,
		PrefundAddress:       prefund,
		KycTermsVaultAddress: vault,
		IdoToken:             token,
		IdoTokenPrice:        big.NewInt(25),
		EndDate:              start + 3600,
		MinimumPrefund:       big.NewInt(100),
	}))
	return h
}

func TestInstantiateRejectsPastEndDate(t *testing.T) {
	db, err := storage.NewMemDB()
	require.NoError(t, err)
	defer db.Close()
	tx, err := db.Begin(true)
	require.NoError(t, err)
	defer tx.Discard()

	e := NewEngine()
	e.SetState(newStoreState(tx))
	e.SetNowFunc(func() time.Time { return time.Unix(start, 0) })
	err = e.Instantiate(InstantiateMsg{Owner: owner, EndDate: start, IdoTokenPrice: big.NewInt(1), MinimumPrefund: big.NewInt(1)})
	require.ErrorIs(t, err, ErrEndDateInThePast)
}

func TestJoinSucceedsOnce(t *testing.T) {
	h := newHarness(t)
	h.delegates.admit(alice)
	ctx := context.Background()

	require.NoError(t, h.engine.Join(ctx, alice))
	require.ErrorIs(t, h.engine.Join(ctx, alice), ErrAlreadyJoined)

	st, err := h.engine.State()
	require.NoError(t, err)
	require.Equal(t, uint64(1), st.NumberOfParticipants)

	p, err := h.engine.Participant(alice)
	require.NoError(t, err)
	require.True(t, p.IsJoined)
	p, err = h.engine.Participant(bob)
	require.NoError(t, err)
	require.False(t, p.IsJoined)

	require.Equal(t, []string{EventTypeJoined}, h.recorder.Types())
}

func TestJoinCheckOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("deposit before kyc", func(t *testing.T) {
		h := newHarness(t)
		require.ErrorIs(t, h.engine.Join(ctx, alice), ErrNotEnoughDeposit)
	})

	t.Run("kyc before terms", func(t *testing.T) {
		h := newHarness(t)
		h.delegates.deposits[alice] = 100
		require.ErrorIs(t, h.engine.Join(ctx, alice), ErrKycFailed)
		h.delegates.verified[alice] = true
		require.ErrorIs(t, h.engine.Join(ctx, alice), ErrTouFailed)
		h.delegates.accepted[alice] = true
		require.NoError(t, h.engine.Join(ctx, alice))
	})

	t.Run("paused before closed", func(t *testing.T) {
		h := newHarness(t)
		h.delegates.admit(alice)
		paused := true
		require.NoError(t, h.engine.UpdateConfig(owner, UpdateConfigMsg{Paused: &paused}))
		h.now = time.Unix(start+7200, 0)
		require.ErrorIs(t, h.engine.Join(ctx, alice), ErrPaused)

		paused = false
		require.NoError(t, h.engine.UpdateConfig(owner, UpdateConfigMsg{Paused: &paused}))
		require.ErrorIs(t, h.engine.Join(ctx, alice), ErrClosed)
	})

	t.Run("joined before everything", func(t *testing.T) {
		h := newHarness(t)
		h.delegates.admit(alice)
		require.NoError(t, h.engine.Join(ctx, alice))
		paused := true
		require.NoError(t, h.engine.UpdateConfig(owner, UpdateConfigMsg{Paused: &paused}))
		require.ErrorIs(t, h.engine.Join(ctx, alice), ErrAlreadyJoined)
	})

	t.Run("end date is inclusive", func(t *testing.T) {
		h := newHarness(t)
		h.delegates.admit(alice)
		h.now = time.Unix(start+3600, 0)
		require.NoError(t, h.engine.Join(ctx, alice))
	})
}

func TestJoinFailsClosedOnDelegateErrors(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.delegates.admit(alice)
	h.delegates.down[vault] = true

	err := h.engine.Join(ctx, alice)
	require.Error(t, err)
	require.Equal(t, common.CodeDelegateQuery, common.Code(err))

	p, err := h.engine.Participant(alice)
	require.NoError(t, err)
	require.False(t, p.IsJoined)
}

func TestUpdateConfigTimes(t *testing.T) {
	h := newHarness(t)
	now := uint64(start)
	later := uint64(start + 60)

	require.ErrorIs(t, h.engine.UpdateConfig(alice, UpdateConfigMsg{EndDate: &later}), common.ErrUnauthorized)
	require.ErrorIs(t, h.engine.UpdateConfig(owner, UpdateConfigMsg{EndDate: &now}), ErrEndDateInThePast)
	require.ErrorIs(t, h.engine.UpdateConfig(owner, UpdateConfigMsg{SnapshotTime: &now}), ErrSnapshotTimeFromPast)

	require.NoError(t, h.engine.UpdateConfig(owner, UpdateConfigMsg{EndDate: &later, SnapshotTime: &later, Owner: &bob}))
	cfg, err := h.engine.Config()
	require.NoError(t, err)
	require.Equal(t, later, cfg.EndDate)
	require.Equal(t, &later, cfg.SnapshotTime)
	require.Equal(t, &bob, cfg.PendingOwner)
	require.Equal(t, owner, cfg.Owner)

	status, err := h.engine.Status(nil)
	require.NoError(t, err)
	require.False(t, status.IsClosed)
	past := later + 1
	status, err = h.engine.Status(&past)
	require.NoError(t, err)
	require.True(t, status.IsClosed)

	require.NoError(t, h.engine.AcceptOwnership(bob))
	require.ErrorIs(t, h.engine.UpdateConfig(owner, UpdateConfigMsg{}), common.ErrUnauthorized)
}

func TestParticipantsPagination(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	for _, a := range []crypto.Address{carol, alice, bob} {
		h.delegates.admit(a)
		require.NoError(t, h.engine.Join(ctx, a))
	}
	limit := uint32(2)

	page, err := h.engine.Participants(ParticipantsQuery{Limit: &limit, OrderBy: common.OrderAsc})
	require.NoError(t, err)
	require.Equal(t, []crypto.Address{alice, bob}, page.Users)

	page, err = h.engine.Participants(ParticipantsQuery{StartAfter: &bob, Limit: &limit, OrderBy: common.OrderAsc})
	require.NoError(t, err)
	require.Equal(t, []crypto.Address{carol}, page.Users)

	page, err = h.engine.Participants(ParticipantsQuery{})
	require.NoError(t, err)
	require.Equal(t, []crypto.Address{carol, bob, alice}, page.Users)

	page, err = h.engine.Participants(ParticipantsQuery{StartAfter: &bob, OrderBy: common.OrderDesc})
	require.NoError(t, err)
	require.Equal(t, []crypto.Address{alice}, page.Users)

	// walking every ascending page yields each participant exactly once
	one := uint32(1)
	var all []crypto.Address
	var cursor *crypto.Address
	for {
		page, err := h.engine.Participants(ParticipantsQuery{StartAfter: cursor, Limit: &one, OrderBy: common.OrderAsc})
		require.NoError(t, err)
		if len(page.Users) == 0 {
			break
		}
		all = append(all, page.Users...)
		last := page.Users[len(page.Users)-1]
		cursor = &last
	}
	require.Equal(t, []crypto.Address{alice, bob, carol}, all)
}
