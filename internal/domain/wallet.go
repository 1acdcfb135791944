package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet holds the running balance of exactly one account.
type Wallet struct {
	AccountID string
	Balance   decimal.Decimal
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Apply returns the balance after applying a transaction of kind and amount.
func (w *Wallet) Apply(kind TransactionKind, amount decimal.Decimal) decimal.Decimal {
	return w.Balance.Add(kind.SignedEffect(amount))
}

// WalletSnapshot is the read view of a wallet: balance plus newest transactions.
type WalletSnapshot struct {
	AccountID    string
	Balance      decimal.Decimal
	Transactions []*Transaction
}
