package node

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"launchpad/config"
	"launchpad/core/types"
	"launchpad/crypto"
	"launchpad/native/airdrop"
)

// GenesisMetaKey marks a data dir whose genesis has been applied.
const GenesisMetaKey = "genesis"

// accountBatch bounds the allocations registered per message.
const accountBatch = 500

func (n *Node) applyGenesis(ctx context.Context) error {
	if raw, done, err := n.host.GetMeta(GenesisMetaKey); err != nil {
		return err
	} else if done {
		n.logger.Debug("genesis already applied", slog.String("at", string(raw)))
		return nil
	}
	gen := n.cfg.Genesis

	for _, bal := range gen.Balances {
		addr, err := crypto.DecodeAddress(bal.Address)
		if err != nil {
			return err
		}
		coin, err := bal.Coin(n.cfg.NativeDenom)
		if err != nil {
			return err
		}
		if err := n.host.Mint(ctx, addr, types.Coins{coin}); err != nil {
			return fmt.Errorf("mint %s: %w", bal.Address, err)
		}
	}

	var drop *crypto.Address
	for _, spec := range gen.Contracts {
		addr, err := n.deploy(ctx, spec)
		if err != nil {
			return err
		}
		if spec.Kind == airdrop.Kind && drop == nil {
			drop = &addr
		}
	}

	if path := n.cfg.AirdropAccountsFile; path != "" {
		if drop == nil {
			return fmt.Errorf("airdrop accounts file %s set but no airdrop contract in genesis", path)
		}
		if err := n.registerAccounts(ctx, *drop, path); err != nil {
			return err
		}
	}

	return n.host.PutMeta(GenesisMetaKey, []byte(time.Now().UTC().Format(time.RFC3339)))
}

// deploy instantiates one genesis contract unless an earlier, interrupted
// start already did.
func (n *Node) deploy(ctx context.Context, spec config.GenesisContract) (crypto.Address, error) {
	creator, err := crypto.DecodeAddress(spec.Creator)
	if err != nil {
		return crypto.Address{}, err
	}
	addr := crypto.ContractAddress(creator, spec.Label)
	if _, ok := n.host.Lookup(addr); ok {
		n.logger.Info("genesis contract already deployed",
			slog.String("kind", spec.Kind), slog.String("label", spec.Label))
		return addr, nil
	}
	init, err := spec.InitJSON()
	if err != nil {
		return crypto.Address{}, err
	}
	addr, _, err = n.host.Deploy(ctx, spec.Kind, spec.Label, creator, init)
	if err != nil {
		return crypto.Address{}, fmt.Errorf("deploy %s %q: %w", spec.Kind, spec.Label, err)
	}
	n.logger.Info("genesis contract deployed",
		slog.String("kind", spec.Kind),
		slog.String("label", spec.Label),
		slog.String("contract", addr.String()))
	return addr, nil
}

func (n *Node) registerAccounts(ctx context.Context, drop crypto.Address, path string) error {
	accounts, err := config.LoadAirdropAccounts(path)
	if err != nil {
		return err
	}
	var cfg airdrop.ConfigResponse
	if err := n.host.QueryInto(ctx, drop, airdrop.QueryMsg{Config: &struct{}{}}, &cfg); err != nil {
		return err
	}

	entries := make([]airdrop.AccountEntry, 0, len(accounts))
	for _, acct := range accounts {
		addr, err := crypto.DecodeAddress(acct.Address)
		if err != nil {
			return fmt.Errorf("airdrop account %s: %w", acct.Address, err)
		}
		entries = append(entries, airdrop.AccountEntry{
			Address:        addr,
			Amount:         acct.Amount.Value(),
			AlreadyClaimed: acct.AlreadyClaimed.Value(),
		})
	}
	for start := 0; start < len(entries); start += accountBatch {
		end := start + accountBatch
		if end > len(entries) {
			end = len(entries)
		}
		msg, err := json.Marshal(airdrop.ExecuteMsg{
			RegisterAirdropAccounts: &airdrop.RegisterAccountsMsg{AirdropAccounts: entries[start:end]},
		})
		if err != nil {
			return err
		}
		if _, err := n.host.Execute(ctx, drop, cfg.Owner, nil, msg); err != nil {
			return fmt.Errorf("register airdrop accounts: %w", err)
		}
	}
	n.logger.Info("airdrop accounts registered",
		slog.String("contract", drop.String()), slog.Int("accounts", len(entries)))
	return nil
}
