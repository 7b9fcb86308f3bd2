package types

import (
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"
)

// DefaultDenom is the native denomination used when none is configured.
const DefaultDenom = "ulaunch"

var (
	ErrInvalidCoin    = errors.New("coins: invalid coin")
	ErrDuplicateDenom = errors.New("coins: duplicate denom")
)

// Coin is an amount of the native currency of a given denomination.
type Coin struct {
	Denom  string   `json:"denom"`
	Amount *big.Int `json:"amount"`
}

// NewCoin returns a coin holding amount units of denom.
func NewCoin(denom string, amount int64) Coin {
	return Coin{Denom: denom, Amount: big.NewInt(amount)}
}

func (c Coin) String() string {
	amt := "0"
	if c.Amount != nil {
		amt = c.Amount.String()
	}
	return amt + c.Denom
}

// Coins is the set of native funds attached to a call or held by an account.
type Coins []Coin

// AmountOf returns the amount attached for denom, or zero.
func (cs Coins) AmountOf(denom string) *big.Int {
	total := new(big.Int)
	for _, c := range cs {
		if c.Denom == denom && c.Amount != nil {
			total.Add(total, c.Amount)
		}
	}
	return total
}

// Validate rejects empty denoms, non-positive amounts and repeated denoms.
func (cs Coins) Validate() error {
	seen := make(map[string]struct{}, len(cs))
	for _, c := range cs {
		if strings.TrimSpace(c.Denom) == "" || c.Amount == nil || c.Amount.Sign() <= 0 {
			return fmt.Errorf("%w: %s", ErrInvalidCoin, c)
		}
		if _, ok := seen[c.Denom]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateDenom, c.Denom)
		}
		seen[c.Denom] = struct{}{}
	}
	return nil
}

// Sorted returns a copy ordered by denom.
func (cs Coins) Sorted() Coins {
	out := make(Coins, len(cs))
	copy(out, cs)
	sort.Slice(out, func(i, j int) bool { return out[i].Denom < out[j].Denom })
	return out
}

func (cs Coins) String() string {
	parts := make([]string, 0, len(cs))
	for _, c := range cs.Sorted() {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, ",")
}
