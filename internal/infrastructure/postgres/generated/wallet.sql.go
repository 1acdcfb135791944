package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const ensureWallet = `-- name: EnsureWallet :exec
INSERT INTO wallets (account_id, balance, version, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (account_id) DO NOTHING
`

type EnsureWalletParams struct {
	AccountID string             `json:"account_id"`
	Balance   pgtype.Numeric     `json:"balance"`
	Version   int64              `json:"version"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) EnsureWallet(ctx context.Context, arg EnsureWalletParams) error {
	_, err := q.db.Exec(ctx, ensureWallet,
		arg.AccountID,
		arg.Balance,
		arg.Version,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getWalletByAccountID = `-- name: GetWalletByAccountID :one
SELECT account_id, balance, version, created_at, updated_at FROM wallets WHERE account_id = $1
`

func (q *Queries) GetWalletByAccountID(ctx context.Context, accountID string) (Wallet, error) {
	row := q.db.QueryRow(ctx, getWalletByAccountID, accountID)
	var i Wallet
	err := row.Scan(
		&i.AccountID,
		&i.Balance,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getWalletForUpdate = `-- name: GetWalletForUpdate :one
SELECT account_id, balance, version, created_at, updated_at FROM wallets WHERE account_id = $1 FOR UPDATE
`

func (q *Queries) GetWalletForUpdate(ctx context.Context, accountID string) (Wallet, error) {
	row := q.db.QueryRow(ctx, getWalletForUpdate, accountID)
	var i Wallet
	err := row.Scan(
		&i.AccountID,
		&i.Balance,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listWallets = `-- name: ListWallets :many
SELECT account_id, balance, version, created_at, updated_at FROM wallets
ORDER BY account_id
LIMIT $1 OFFSET $2
`

type ListWalletsParams struct {
	Limit  int32 `json:"limit"`
	Offset int32 `json:"offset"`
}

func (q *Queries) ListWallets(ctx context.Context, arg ListWalletsParams) ([]Wallet, error) {
	rows, err := q.db.Query(ctx, listWallets, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Wallet
	for rows.Next() {
		var i Wallet
		if err := rows.Scan(
			&i.AccountID,
			&i.Balance,
			&i.Version,
			&i.CreatedAt,
			&i.UpdatedAt,
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

const updateWalletBalance = `-- name: UpdateWalletBalance :execrows
UPDATE wallets SET balance = $2, version = version + 1, updated_at = $3 WHERE account_id = $1
`

type UpdateWalletBalanceParams struct {
	AccountID string             `json:"account_id"`
	Balance   pgtype.Numeric     `json:"balance"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdateWalletBalance(ctx context.Context, arg UpdateWalletBalanceParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateWalletBalance, arg.AccountID, arg.Balance, arg.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
