package config

import (
	"fmt"
	"strings"

	"launchpad/crypto"
	"launchpad/storage"
)

// Validate checks the configuration before the node opens any resources.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config: nil")
	}
	switch strings.ToLower(strings.TrimSpace(c.Backend)) {
	case storage.BackendMemory, storage.BackendLevelDB, storage.BackendBolt:
	default:
		return fmt.Errorf("config: unknown backend %q", c.Backend)
	}
	if c.Backend != storage.BackendMemory && strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("config: DataDir must be set for backend %s", c.Backend)
	}
	if strings.TrimSpace(c.NativeDenom) == "" {
		return fmt.Errorf("config: NativeDenom must be set")
	}
	prefix := crypto.AddressPrefix(strings.ToLower(strings.TrimSpace(c.AddressPrefix)))
	if prefix == "" {
		return fmt.Errorf("config: AddressPrefix must be set")
	}
	if c.MaxQueryDepth <= 0 {
		return fmt.Errorf("config: MaxQueryDepth must be positive")
	}
	if c.Telemetry.Traces || c.Telemetry.Metrics {
		if strings.TrimSpace(c.Telemetry.Endpoint) == "" {
			return fmt.Errorf("config: telemetry endpoint required when exporters are enabled")
		}
	}

	for i, bal := range c.Genesis.Balances {
		if _, err := crypto.DecodeAddressWithPrefix(bal.Address, prefix); err != nil {
			return fmt.Errorf("config: genesis balance %d: %w", i, err)
		}
		if _, err := bal.Coin(c.NativeDenom); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}

	labels := make(map[string]struct{}, len(c.Genesis.Contracts))
	for i, contract := range c.Genesis.Contracts {
		if strings.TrimSpace(contract.Kind) == "" {
			return fmt.Errorf("config: genesis contract %d: kind required", i)
		}
		label := strings.TrimSpace(contract.Label)
		if label == "" {
			return fmt.Errorf("config: genesis contract %d: label required", i)
		}
		if _, ok := labels[label]; ok {
			return fmt.Errorf("config: genesis contract label %q repeated", label)
		}
		labels[label] = struct{}{}
		if _, err := crypto.DecodeAddressWithPrefix(contract.Creator, prefix); err != nil {
			return fmt.Errorf("config: genesis contract %s: creator: %w", label, err)
		}
		if _, err := contract.InitJSON(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	return nil
}
