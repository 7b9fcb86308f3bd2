package node

import (
	"context"
	"io"
	"log/slog"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"launchpad/config"
	"launchpad/core/events"
	"launchpad/crypto"
	"launchpad/native/airdrop"
	"launchpad/native/kyc"
	"launchpad/storage"
)

func testAddr(b byte) crypto.Address {
	var a crypto.Address
	a[0], a[19] = b, b
	return a
}

var (
	owner = testAddr(1)
	token = testAddr(2)
	alice = testAddr(10)
	bob   = testAddr(11)
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func genesisConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	accounts := filepath.Join(dir, "accounts.yaml")
	require.NoError(t, os.WriteFile(accounts, []byte(
		"accounts:\n"+
			"  - address: "+alice.String()+"\n    amount: 1000\n"+
			"  - address: "+bob.String()+"\n    amount: 400\n    already_claimed: 100\n"), 0o644))

	cfg := config.Default()
	cfg.DataDir = filepath.Join(dir, "data")
	cfg.Backend = backend
	cfg.AirdropAccountsFile = accounts
	cfg.Genesis.Balances = []config.GenesisBalance{{Address: alice.String(), Amount: "500"}}
	cfg.Genesis.Contracts = []config.GenesisContract{
		{Kind: kyc.Kind, Label: "kyc", Creator: owner.String(), Init: map[string]interface{}{
			"owner":                owner.String(),
			"kyc_provider_address": owner.String(),
		}},
		{Kind: airdrop.Kind, Label: "airdrop", Creator: owner.String(), Init: map[string]interface{}{
			"owner":                 owner.String(),
			"token":                 token.String(),
			"lp_staking_addresses":  []string{},
			"stt_staking_addresses": []string{},
			"ido_addresses":         []string{},
			"claim_fee":             0,
		}},
	}
	return cfg
}

func userInfo(t *testing.T, n *Node, who crypto.Address) airdrop.UserInfoResponse {
	t.Helper()
	var info airdrop.UserInfoResponse
	drop := crypto.ContractAddress(owner, "airdrop")
	require.NoError(t, n.Host().QueryInto(context.Background(), drop,
		airdrop.QueryMsg{UserInfo: &airdrop.UserInfoQuery{Address: who}}, &info))
	return info
}

func TestNewAppliesGenesisOnce(t *testing.T) {
	ctx := context.Background()
	cfg := genesisConfig(t, storage.BackendLevelDB)

	rec := &events.Recorder{}
	n, err := New(ctx, cfg, WithLogger(quietLogger()), WithEmitter(rec))
	require.NoError(t, err)

	require.Len(t, n.Host().Instances(), 2)
	inst, ok := n.Host().Lookup(crypto.ContractAddress(owner, "kyc"))
	require.True(t, ok)
	require.Equal(t, kyc.Kind, inst.Kind)

	require.Equal(t, big.NewInt(1000), userInfo(t, n, alice).InitialClaimAmount)
	bobInfo := userInfo(t, n, bob)
	require.Equal(t, big.NewInt(400), bobInfo.InitialClaimAmount)
	require.Equal(t, big.NewInt(100), bobInfo.ClaimedAmount)
	require.Contains(t, rec.Types(), airdrop.EventTypeAccountsRegistered)

	bal, err := n.Host().Balance(ctx, alice, cfg.NativeDenom)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(500), bal)

	_, done, err := n.Host().GetMeta(GenesisMetaKey)
	require.NoError(t, err)
	require.True(t, done)
	require.NoError(t, n.Close())

	reopened, err := New(ctx, cfg, WithLogger(quietLogger()))
	require.NoError(t, err)
	defer reopened.Close()

	require.Len(t, reopened.Host().Instances(), 2)
	bal, err = reopened.Host().Balance(ctx, alice, cfg.NativeDenom)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(500), bal)
	require.Equal(t, big.NewInt(1000), userInfo(t, reopened, alice).InitialClaimAmount)
}

func TestNewOnBolt(t *testing.T) {
	cfg := genesisConfig(t, storage.BackendBolt)
	n, err := New(context.Background(), cfg, WithLogger(quietLogger()))
	require.NoError(t, err)
	defer n.Close()
	require.Equal(t, big.NewInt(1000), userInfo(t, n, alice).InitialClaimAmount)
}

func TestGenesisFailures(t *testing.T) {
	ctx := context.Background()

	cfg := genesisConfig(t, storage.BackendMemory)
	cfg.Genesis.Contracts = cfg.Genesis.Contracts[:1]
	_, err := New(ctx, cfg, WithLogger(quietLogger()))
	require.ErrorContains(t, err, "no airdrop contract")

	cfg = genesisConfig(t, storage.BackendMemory)
	cfg.Genesis.Contracts[0].Kind = "lottery"
	_, err = New(ctx, cfg, WithLogger(quietLogger()))
	require.ErrorContains(t, err, "lottery")

	cfg = genesisConfig(t, storage.BackendMemory)
	cfg.Backend = "postgres"
	_, err = New(ctx, cfg, WithLogger(quietLogger()))
	require.ErrorContains(t, err, "unknown backend")
}

func TestCodesCoverEveryContract(t *testing.T) {
	codes := Codes()
	require.Len(t, codes, 5)
	for _, kind := range []string{"airdrop", "ido", "kyc", "stakinggateway", "vestinggateway"} {
		require.Contains(t, codes, kind)
	}
}
