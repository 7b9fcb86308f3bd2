package common

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"

	"launchpad/core/types"
)

var maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// CheckAmount rejects nil, negative and wider than 128-bit amounts.
func CheckAmount(v *big.Int) error {
	if v == nil || v.Sign() < 0 || v.Cmp(maxUint128) > 0 {
		return fmt.Errorf("%w: %v", ErrAmountOutOfRange, v)
	}
	return nil
}

// MulRatio returns floor(amount * num / denom) using a 256-bit intermediate,
// so any 128-bit amount multiplied by a 128-bit ratio cannot overflow.
func MulRatio(amount *big.Int, num, denom uint64) (*big.Int, error) {
	if err := CheckAmount(amount); err != nil {
		return nil, err
	}
	if denom == 0 {
		return nil, fmt.Errorf("%w: zero denominator", ErrAmountOutOfRange)
	}
	x, overflow := uint256.FromBig(amount)
	if overflow {
		return nil, fmt.Errorf("%w: %v", ErrAmountOutOfRange, amount)
	}
	out, overflow := new(uint256.Int).MulDivOverflow(x, uint256.NewInt(num), uint256.NewInt(denom))
	if overflow {
		return nil, fmt.Errorf("%w: %v * %d / %d", ErrAmountOutOfRange, amount, num, denom)
	}
	return out.ToBig(), nil
}

// Copy returns a fresh big.Int, treating nil as zero.
func Copy(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}

// RequireFee fails with ErrInsufficientFee unless funds carry at least fee
// of denom. A zero fee accepts calls without funds.
func RequireFee(funds types.Coins, denom string, fee *big.Int) error {
	if fee == nil || fee.Sign() == 0 {
		return nil
	}
	attached := funds.AmountOf(denom)
	if attached.Cmp(fee) < 0 {
		return fmt.Errorf("%w: attached %s%s, required %s%s", ErrInsufficientFee, attached, denom, fee, denom)
	}
	return nil
}
