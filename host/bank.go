package host

import (
	"errors"
	"fmt"
	"math/big"

	"launchpad/core/types"
	"launchpad/crypto"
	"launchpad/native/common"
	"launchpad/storage"
)

var ErrInsufficientFunds = common.NewError(common.CodeInsufficientFunds, "bank: insufficient funds")

// StoreBank keeps native coin balances keyed by (address, denom) in the host
// namespace of the current transaction.
type StoreBank struct {
	store storage.Store
}

// NewStoreBank binds a bank to store.
func NewStoreBank(store storage.Store) *StoreBank {
	return &StoreBank{store: store}
}

func balanceKey(addr crypto.Address, denom string) []byte {
	return append(addr.Bytes(), denom...)
}

// Balance returns the balance of denom held by addr.
func (b *StoreBank) Balance(addr crypto.Address, denom string) (*big.Int, error) {
	raw, err := b.store.Get(balanceKey(addr, denom))
	if errors.Is(err, storage.ErrNotFound) {
		return new(big.Int), nil
	}
	if err != nil {
		return nil, common.StorageError(err)
	}
	return new(big.Int).SetBytes(raw), nil
}

// Balances lists every non-zero balance held by addr.
func (b *StoreBank) Balances(addr crypto.Address) (types.Coins, error) {
	var out types.Coins
	err := b.store.Iterate(storage.PrefixRange(addr.Bytes()), storage.Ascending, func(key, value []byte) (bool, error) {
		amt := new(big.Int).SetBytes(value)
		if amt.Sign() > 0 {
			out = append(out, types.Coin{Denom: string(key), Amount: amt})
		}
		return true, nil
	})
	if err != nil {
		return nil, common.StorageError(err)
	}
	return out, nil
}

func (b *StoreBank) set(addr crypto.Address, denom string, amt *big.Int) error {
	key := balanceKey(addr, denom)
	if amt.Sign() == 0 {
		return common.StorageError(b.store.Delete(key))
	}
	return common.StorageError(b.store.Put(key, amt.Bytes()))
}

// Send moves coins from one account to another.
func (b *StoreBank) Send(from, to crypto.Address, coins types.Coins) error {
	if err := coins.Validate(); err != nil {
		return common.InvalidMessage("bank: %v", err)
	}
	for _, c := range coins {
		bal, err := b.Balance(from, c.Denom)
		if err != nil {
			return err
		}
		if bal.Cmp(c.Amount) < 0 {
			return fmt.Errorf("%w: %s holds %s%s, needs %s", ErrInsufficientFunds, from, bal, c.Denom, c)
		}
		if err := b.set(from, c.Denom, bal.Sub(bal, c.Amount)); err != nil {
			return err
		}
		dst, err := b.Balance(to, c.Denom)
		if err != nil {
			return err
		}
		if err := b.set(to, c.Denom, dst.Add(dst, c.Amount)); err != nil {
			return err
		}
	}
	return nil
}

// Mint credits coins to an account. Used when applying genesis balances.
func (b *StoreBank) Mint(to crypto.Address, coins types.Coins) error {
	if err := coins.Validate(); err != nil {
		return common.InvalidMessage("bank: %v", err)
	}
	for _, c := range coins {
		bal, err := b.Balance(to, c.Denom)
		if err != nil {
			return err
		}
		if err := b.set(to, c.Denom, bal.Add(bal, c.Amount)); err != nil {
			return err
		}
	}
	return nil
}
