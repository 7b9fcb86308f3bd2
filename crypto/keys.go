package crypto

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// Key is a secp256k1 account key. The host never verifies signatures; keys
// exist to derive caller and owner addresses.
type Key struct {
	priv *ecdsa.PrivateKey
}

// NewKey generates a random key.
func NewKey() (*Key, error) {
	priv, err := ethcrypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	return &Key{priv: priv}, nil
}

// KeyFromHex parses a 32-byte hex private key, with or without 0x.
func KeyFromHex(raw string) (*Key, error) {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "0x")
	b, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("crypto: key hex: %w", err)
	}
	priv, err := ethcrypto.ToECDSA(b)
	if err != nil {
		return nil, fmt.Errorf("crypto: key: %w", err)
	}
	return &Key{priv: priv}, nil
}

// Hex renders the private key.
func (k *Key) Hex() string {
	return hex.EncodeToString(ethcrypto.FromECDSA(k.priv))
}

// Address derives the account address controlled by the key.
func (k *Key) Address() Address {
	var out Address
	copy(out[:], ethcrypto.PubkeyToAddress(k.priv.PublicKey).Bytes())
	return out
}
