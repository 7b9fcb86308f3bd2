package config

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"launchpad/core/types"
)

// Telemetry controls OTLP export.
type Telemetry struct {
	Endpoint string `toml:"Endpoint"`
	Insecure bool   `toml:"Insecure"`
	Traces   bool   `toml:"Traces"`
	Metrics  bool   `toml:"Metrics"`
}

// Enabled reports whether any exporter is configured.
func (t Telemetry) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != "" && (t.Traces || t.Metrics)
}

// Genesis is applied once when the node first opens an empty data dir.
type Genesis struct {
	Balances  []GenesisBalance  `toml:"balances"`
	Contracts []GenesisContract `toml:"contracts"`
}

// GenesisBalance credits native funds to an address.
type GenesisBalance struct {
	Address string `toml:"address"`
	Denom   string `toml:"denom"`
	Amount  string `toml:"amount"`
}

// Coin parses the balance into a native coin.
func (b GenesisBalance) Coin(defaultDenom string) (types.Coin, error) {
	denom := strings.TrimSpace(b.Denom)
	if denom == "" {
		denom = defaultDenom
	}
	amount, ok := new(big.Int).SetString(strings.TrimSpace(b.Amount), 10)
	if !ok || amount.Sign() <= 0 {
		return types.Coin{}, fmt.Errorf("genesis balance %s: invalid amount %q", b.Address, b.Amount)
	}
	return types.Coin{Denom: denom, Amount: amount}, nil
}

// GenesisContract deploys one contract instance. Init is passed to the
// contract as its instantiate message.
type GenesisContract struct {
	Kind    string                 `toml:"kind"`
	Label   string                 `toml:"label"`
	Creator string                 `toml:"creator"`
	Init    map[string]interface{} `toml:"init"`
}

// InitJSON renders the init table as a JSON message.
func (c GenesisContract) InitJSON() (json.RawMessage, error) {
	if c.Init == nil {
		return json.RawMessage(`{}`), nil
	}
	raw, err := json.Marshal(c.Init)
	if err != nil {
		return nil, fmt.Errorf("genesis contract %s: encode init: %w", c.Label, err)
	}
	return raw, nil
}
