package host

import (
	"math/big"

	"launchpad/crypto"
)

// Wire format spoken with token contracts. Token mechanics live outside this
// module; any contract registered at a token address only needs to accept
// these messages.

// TokenExecuteMsg is sent to a token contract with the issuing contract as
// caller.
type TokenExecuteMsg struct {
	Transfer *TokenTransferMsg `json:"transfer,omitempty"`
	Burn     *TokenBurnMsg     `json:"burn,omitempty"`
}

type TokenTransferMsg struct {
	Recipient crypto.Address `json:"recipient"`
	Amount    *big.Int       `json:"amount"`
}

type TokenBurnMsg struct {
	Amount *big.Int `json:"amount"`
}

// TokenQueryMsg reads a holder's token balance.
type TokenQueryMsg struct {
	Balance *TokenBalanceQuery `json:"balance,omitempty"`
}

type TokenBalanceQuery struct {
	Address crypto.Address `json:"address"`
}

type TokenBalanceResponse struct {
	Balance *big.Int `json:"balance"`
}

func tokenMessage(msg Msg) (crypto.Address, TokenExecuteMsg, bool) {
	switch m := msg.(type) {
	case TokenTransfer:
		return m.Token, TokenExecuteMsg{Transfer: &TokenTransferMsg{Recipient: m.Recipient, Amount: m.Amount}}, true
	case *TokenTransfer:
		return m.Token, TokenExecuteMsg{Transfer: &TokenTransferMsg{Recipient: m.Recipient, Amount: m.Amount}}, true
	case TokenBurn:
		return m.Token, TokenExecuteMsg{Burn: &TokenBurnMsg{Amount: m.Amount}}, true
	case *TokenBurn:
		return m.Token, TokenExecuteMsg{Burn: &TokenBurnMsg{Amount: m.Amount}}, true
	}
	return crypto.Address{}, TokenExecuteMsg{}, false
}
