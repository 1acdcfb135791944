package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/dooonda/ledger/internal/domain"
	"github.com/dooonda/ledger/internal/infrastructure/postgres/generated"
	"github.com/dooonda/ledger/internal/usecase"
)

const accountsEmailKey = "accounts_email_key"

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	queries *generated.Queries
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db generated.DBTX) *AccountRepository {
	return &AccountRepository{queries: generated.New(db)}
}

// CreateTx inserts an account inside tx.
func (r *AccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	pgxTx, err := pgxTxFrom(tx)
	if err != nil {
		return err
	}

	_, err = r.queries.WithTx(pgxTx).CreateAccount(ctx, generated.CreateAccountParams{
		ID:             account.ID,
		Name:           account.Name,
		Email:          account.Email,
		Phone:          account.Phone,
		HashedPassword: account.HashedPassword,
		Role:           string(account.Role),
		CreatedAt:      timeToPgTimestamptz(account.CreatedAt),
		UpdatedAt:      timeToPgTimestamptz(account.UpdatedAt),
	})
	if isUniqueViolation(err, accountsEmailKey) {
		return domain.ErrEmailTaken
	}

	return err
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	row, err := r.queries.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return rowToAccount(row), nil
}

// GetByEmail retrieves an account by its normalized email.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	row, err := r.queries.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return rowToAccount(row), nil
}

func rowToAccount(row generated.Account) *domain.Account {
	return &domain.Account{
		ID:             row.ID,
		Name:           row.Name,
		Email:          row.Email,
		Phone:          row.Phone,
		HashedPassword: row.HashedPassword,
		Role:           domain.Role(row.Role),
		CreatedAt:      row.CreatedAt.Time,
		UpdatedAt:      row.UpdatedAt.Time,
	}
}
