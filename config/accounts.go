package config

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Amount wraps big.Int to accept YAML integers of any size, quoted or not.
type Amount struct {
	*big.Int
}

// UnmarshalYAML parses a base-10 integer scalar.
func (a *Amount) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		return nil
	}
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("amount must be a scalar")
	}
	raw := strings.TrimSpace(value.Value)
	if raw == "" {
		a.Int = new(big.Int)
		return nil
	}
	parsed, ok := new(big.Int).SetString(raw, 10)
	if !ok || parsed.Sign() < 0 {
		return fmt.Errorf("parse amount %q", raw)
	}
	a.Int = parsed
	return nil
}

// Value returns the amount, treating an unset field as zero.
func (a Amount) Value() *big.Int {
	if a.Int == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(a.Int)
}

// AirdropAccount is one allocation loaded into the genesis airdrop.
type AirdropAccount struct {
	Address        string `yaml:"address"`
	Amount         Amount `yaml:"amount"`
	AlreadyClaimed Amount `yaml:"already_claimed"`
}

type airdropAccountsFile struct {
	Accounts []AirdropAccount `yaml:"accounts"`
}

// LoadAirdropAccounts reads the allocation list from a YAML file.
func LoadAirdropAccounts(path string) ([]AirdropAccount, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open airdrop accounts: %w", err)
	}
	defer file.Close()

	var doc airdropAccountsFile
	dec := yaml.NewDecoder(file)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode airdrop accounts: %w", err)
	}
	seen := make(map[string]struct{}, len(doc.Accounts))
	for i, acct := range doc.Accounts {
		addr := strings.TrimSpace(acct.Address)
		if addr == "" {
			return nil, fmt.Errorf("airdrop account %d: address required", i)
		}
		if _, ok := seen[addr]; ok {
			return nil, fmt.Errorf("airdrop account %s listed twice", addr)
		}
		seen[addr] = struct{}{}
		doc.Accounts[i].Address = addr
	}
	return doc.Accounts, nil
}
