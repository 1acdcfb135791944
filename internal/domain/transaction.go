package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind is the type of a balance-affecting event.
type TransactionKind string

const (
	KindCredit     TransactionKind = "CREDIT"
	KindDebit      TransactionKind = "DEBIT"
	KindWithdrawal TransactionKind = "WITHDRAWAL"
	KindRefund     TransactionKind = "REFUND"
)

// TransactionKinds lists every recognized kind.
var TransactionKinds = []TransactionKind{KindCredit, KindDebit, KindWithdrawal, KindRefund}

// ParseTransactionKind parses a kind, case-insensitively.
func ParseTransactionKind(s string) (TransactionKind, error) {
	k := TransactionKind(strings.ToUpper(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", ErrInvalidKind
	}

	return k, nil
}

// IsValid reports whether k is one of the recognized kinds.
func (k TransactionKind) IsValid() bool {
	return slices.Contains(TransactionKinds, k)
}

// IsInflow reports whether k increases the balance.
func (k TransactionKind) IsInflow() bool {
	return k == KindCredit || k == KindRefund
}

// SignedEffect returns the contribution of amount to the balance for kind k.
func (k TransactionKind) SignedEffect(amount decimal.Decimal) decimal.Decimal {
	if k.IsInflow() {
		return amount
	}

	return amount.Neg()
}

// TransactionStatus is the lifecycle state of a transaction.
type TransactionStatus string

const (
	// StatusPending is reserved; the ledger settles synchronously and never writes it.
	StatusPending   TransactionStatus = "PENDING"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusFailed    TransactionStatus = "FAILED"
)

// ParseTransactionStatus parses a status, case-insensitively.
func ParseTransactionStatus(s string) (TransactionStatus, error) {
	st := TransactionStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusCompleted, StatusFailed:
		return st, nil
	}

	return "", ErrInvalidStatus
}

// Transaction is an append-only ledger record for one wallet.
type Transaction struct {
	CreatedAt     time.Time
	ID            string
	AccountID     string
	Kind          TransactionKind
	Status        TransactionStatus
	Description   string
	Amount        decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	WalletVersion int64
}

// SignedAmount returns the transaction's effect on the balance.
func (t *Transaction) SignedAmount() decimal.Decimal {
	return t.Kind.SignedEffect(t.Amount)
}

// Validate checks the fields a caller supplies.
func (t *Transaction) Validate() error {
	if !t.Kind.IsValid() {
		return ErrInvalidKind
	}

	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}

	return ValidateDescription(t.Description)
}

// SumCompleted returns the signed sum of all completed transactions.
func SumCompleted(txs []*Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range txs {
		if t.Status == StatusCompleted {
			sum = sum.Add(t.SignedAmount())
		}
	}

	return sum
}
