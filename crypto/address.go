package crypto

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/ethereum/go-ethereum/crypto"
)

// AddressPrefix is the human-readable part of a bech32 encoded address.
type AddressPrefix string

const (
	// DefaultPrefix is used when no chain specific prefix has been configured.
	DefaultPrefix AddressPrefix = "launch"

	// AddressLength is the size in bytes of a canonical address.
	AddressLength = 20
)

var (
	ErrInvalidAddress = errors.New("crypto: invalid address")

	prefixMu      sync.RWMutex
	currentPrefix = DefaultPrefix
)

// SetAddressPrefix configures the prefix used to render and parse
// human-readable addresses. It is expected to be called once during startup.
func SetAddressPrefix(prefix AddressPrefix) error {
	trimmed := AddressPrefix(strings.ToLower(strings.TrimSpace(string(prefix))))
	if trimmed == "" {
		return fmt.Errorf("%w: empty prefix", ErrInvalidAddress)
	}
	prefixMu.Lock()
	currentPrefix = trimmed
	prefixMu.Unlock()
	return nil
}

// Prefix returns the currently configured address prefix.
func Prefix() AddressPrefix {
	prefixMu.RLock()
	defer prefixMu.RUnlock()
	return currentPrefix
}

// Address is the canonical, fixed-length binary form of an account or
// contract identifier. It is used as the storage key everywhere; the bech32
// string form is only produced at the message boundary.
type Address [AddressLength]byte

// NewAddress copies b into a canonical address.
func NewAddress(b []byte) (Address, error) {
	var out Address
	if len(b) != AddressLength {
		return out, fmt.Errorf("%w: length %d", ErrInvalidAddress, len(b))
	}
	copy(out[:], b)
	return out, nil
}

// DecodeAddress canonicalizes a human-readable address. The prefix must match
// the configured one.
func DecodeAddress(addrStr string) (Address, error) {
	return DecodeAddressWithPrefix(addrStr, Prefix())
}

// DecodeAddressWithPrefix canonicalizes addrStr, which must carry prefix.
func DecodeAddressWithPrefix(addrStr string, prefix AddressPrefix) (Address, error) {
	var out Address
	hrp, decoded, err := bech32.Decode(strings.TrimSpace(addrStr))
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if AddressPrefix(hrp) != prefix {
		return out, fmt.Errorf("%w: unsupported prefix %q", ErrInvalidAddress, hrp)
	}
	conv, err := bech32.ConvertBits(decoded, 5, 8, false)
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return NewAddress(conv)
}

// DecodeAddresses canonicalizes every entry, failing on the first invalid one.
func DecodeAddresses(list []string) ([]Address, error) {
	out := make([]Address, 0, len(list))
	for _, s := range list {
		addr, err := DecodeAddress(s)
		if err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	return out, nil
}

// String renders the address in its bech32 form.
func (a Address) String() string {
	conv, err := bech32.ConvertBits(a[:], 8, 5, true)
	if err != nil {
		panic(err)
	}
	encoded, err := bech32.Encode(string(Prefix()), conv)
	if err != nil {
		panic(err)
	}
	return encoded
}

// Bytes returns a copy of the canonical bytes.
func (a Address) Bytes() []byte {
	return append([]byte(nil), a[:]...)
}

func (a Address) IsZero() bool { return a == Address{} }

// Compare orders addresses by their canonical byte representation.
func (a Address) Compare(b Address) int { return bytes.Compare(a[:], b[:]) }

// MarshalText implements encoding.TextMarshaler so addresses travel as bech32
// strings inside JSON messages.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	decoded, err := DecodeAddress(string(text))
	if err != nil {
		return err
	}
	*a = decoded
	return nil
}

// ContractAddress derives the deterministic address of a contract instance
// deployed by creator under label.
func ContractAddress(creator Address, label string) Address {
	hash := crypto.Keccak256([]byte("contract:"), creator[:], []byte(label))
	var out Address
	copy(out[:], hash[len(hash)-AddressLength:])
	return out
}

// HumanizeAll converts canonical addresses back to their string form.
func HumanizeAll(list []Address) []string {
	out := make([]string, 0, len(list))
	for _, addr := range list {
		out = append(out, addr.String())
	}
	return out
}
