package postgres

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/dooonda/ledger/internal/infrastructure/postgres/generated"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// CheckConsistency returns the sum of all wallet balances and the signed sum
// of all completed transactions. The two are equal on a healthy ledger.
func (r *LedgerRepository) CheckConsistency(ctx context.Context) (totalBalance, totalSigned decimal.Decimal, err error) {
	totals, err := r.queries.GetLedgerTotals(ctx)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return numericToDecimal(totals.TotalBalance), numericToDecimal(totals.TotalSigned), nil
}
