package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createTransaction = `-- name: CreateTransaction :exec
INSERT INTO transactions (id, account_id, type, amount, description, status, balance_before, balance_after, wallet_version, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

type CreateTransactionParams struct {
	ID            string             `json:"id"`
	AccountID     string             `json:"account_id"`
	Type          string             `json:"type"`
	Amount        pgtype.Numeric     `json:"amount"`
	Description   string             `json:"description"`
	Status        string             `json:"status"`
	BalanceBefore pgtype.Numeric     `json:"balance_before"`
	BalanceAfter  pgtype.Numeric     `json:"balance_after"`
	WalletVersion int64              `json:"wallet_version"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) error {
	_, err := q.db.Exec(ctx, createTransaction,
		arg.ID,
		arg.AccountID,
		arg.Type,
		arg.Amount,
		arg.Description,
		arg.Status,
		arg.BalanceBefore,
		arg.BalanceAfter,
		arg.WalletVersion,
		arg.CreatedAt,
	)
	return err
}

const listRecentTransactions = `-- name: ListRecentTransactions :many
SELECT id, account_id, type, amount, description, status, balance_before, balance_after, wallet_version, created_at FROM transactions
WHERE account_id = $1 AND wallet_version <= $2
ORDER BY wallet_version DESC
LIMIT $3
`

type ListRecentTransactionsParams struct {
	AccountID     string `json:"account_id"`
	WalletVersion int64  `json:"wallet_version"`
	Limit         int32  `json:"limit"`
}

func (q *Queries) ListRecentTransactions(ctx context.Context, arg ListRecentTransactionsParams) ([]Transaction, error) {
	rows, err := q.db.Query(ctx, listRecentTransactions, arg.AccountID, arg.WalletVersion, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		var i Transaction
		if err := rows.Scan(
			&i.ID,
			&i.AccountID,
			&i.Type,
			&i.Amount,
			&i.Description,
			&i.Status,
			&i.BalanceBefore,
			&i.BalanceAfter,
			&i.WalletVersion,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const sumCompletedTransactions = `-- name: SumCompletedTransactions :one
SELECT COALESCE(SUM(CASE WHEN type IN ('CREDIT', 'REFUND') THEN amount ELSE -amount END), 0)::NUMERIC AS total
FROM transactions
WHERE account_id = $1 AND wallet_version <= $2 AND status = 'COMPLETED'
`

type SumCompletedTransactionsParams struct {
	AccountID     string `json:"account_id"`
	WalletVersion int64  `json:"wallet_version"`
}

func (q *Queries) SumCompletedTransactions(ctx context.Context, arg SumCompletedTransactionsParams) (pgtype.Numeric, error) {
	row := q.db.QueryRow(ctx, sumCompletedTransactions, arg.AccountID, arg.WalletVersion)
	var total pgtype.Numeric
	err := row.Scan(&total)
	return total, err
}
