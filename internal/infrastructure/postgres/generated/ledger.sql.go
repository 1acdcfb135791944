package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getLedgerTotals = `-- name: GetLedgerTotals :one
SELECT
    (SELECT COALESCE(SUM(balance), 0) FROM wallets)::NUMERIC AS total_balance,
    (SELECT COALESCE(SUM(CASE WHEN type IN ('CREDIT', 'REFUND') THEN amount ELSE -amount END), 0)
       FROM transactions WHERE status = 'COMPLETED')::NUMERIC AS total_signed
`

type GetLedgerTotalsRow struct {
	TotalBalance pgtype.Numeric `json:"total_balance"`
	TotalSigned  pgtype.Numeric `json:"total_signed"`
}

func (q *Queries) GetLedgerTotals(ctx context.Context) (GetLedgerTotalsRow, error) {
	row := q.db.QueryRow(ctx, getLedgerTotals)
	var i GetLedgerTotalsRow
	err := row.Scan(&i.TotalBalance, &i.TotalSigned)
	return i, err
}
