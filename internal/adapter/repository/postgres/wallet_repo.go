package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/dooonda/ledger/internal/domain"
	"github.com/dooonda/ledger/internal/infrastructure/postgres/generated"
	"github.com/dooonda/ledger/internal/usecase"
)

// WalletRepository implements usecase.WalletRepository.
type WalletRepository struct {
	queries *generated.Queries
}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(db generated.DBTX) *WalletRepository {
	return &WalletRepository{queries: generated.New(db)}
}

// CreateTx inserts the wallet unless the account already has one.
func (r *WalletRepository) CreateTx(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error {
	pgxTx, err := pgxTxFrom(tx)
	if err != nil {
		return err
	}

	return r.queries.WithTx(pgxTx).EnsureWallet(ctx, generated.EnsureWalletParams{
		AccountID: wallet.AccountID,
		Balance:   decimalToNumeric(wallet.Balance),
		Version:   wallet.Version,
		CreatedAt: timeToPgTimestamptz(wallet.CreatedAt),
		UpdatedAt: timeToPgTimestamptz(wallet.UpdatedAt),
	})
}

// GetOrCreateForUpdate inserts an empty wallet if none exists, then locks the
// row until tx ends. Two first writers racing on the insert both end up
// waiting on the same row lock.
func (r *WalletRepository) GetOrCreateForUpdate(ctx context.Context, tx usecase.Transaction, accountID string, now time.Time) (*domain.Wallet, error) {
	pgxTx, err := pgxTxFrom(tx)
	if err != nil {
		return nil, err
	}

	queries := r.queries.WithTx(pgxTx)

	err = queries.EnsureWallet(ctx, generated.EnsureWalletParams{
		AccountID: accountID,
		Balance:   decimalToNumeric(decimal.Zero),
		Version:   0,
		CreatedAt: timeToPgTimestamptz(now),
		UpdatedAt: timeToPgTimestamptz(now),
	})
	if err != nil {
		return nil, err
	}

	row, err := queries.GetWalletForUpdate(ctx, accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWalletNotFound
		}

		return nil, err
	}

	return rowToWallet(row), nil
}

// GetByAccountID reads the committed wallet without locking it.
func (r *WalletRepository) GetByAccountID(ctx context.Context, accountID string) (*domain.Wallet, error) {
	row, err := r.queries.GetWalletByAccountID(ctx, accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWalletNotFound
		}

		return nil, err
	}

	return rowToWallet(row), nil
}

// UpdateBalance stores the new balance and bumps the wallet version.
func (r *WalletRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, accountID string, balance decimal.Decimal, updatedAt time.Time) error {
	pgxTx, err := pgxTxFrom(tx)
	if err != nil {
		return err
	}

	affected, err := r.queries.WithTx(pgxTx).UpdateWalletBalance(ctx, generated.UpdateWalletBalanceParams{
		AccountID: accountID,
		Balance:   decimalToNumeric(balance),
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return err
	}

	if affected == 0 {
		return domain.ErrWalletNotFound
	}

	return nil
}

// List lists wallets ordered by account ID.
func (r *WalletRepository) List(ctx context.Context, limit, offset int) ([]*domain.Wallet, error) {
	rows, err := r.queries.ListWallets(ctx, generated.ListWalletsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	wallets := make([]*domain.Wallet, 0, len(rows))
	for _, row := range rows {
		wallets = append(wallets, rowToWallet(row))
	}

	return wallets, nil
}

func rowToWallet(row generated.Wallet) *domain.Wallet {
	return &domain.Wallet{
		AccountID: row.AccountID,
		Balance:   numericToDecimal(row.Balance),
		Version:   row.Version,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
}
