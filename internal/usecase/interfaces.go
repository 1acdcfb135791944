package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dooonda/ledger/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	CreateTx(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
}

// WalletRepository defines data access for wallets.
type WalletRepository interface {
	// CreateTx inserts the wallet unless one already exists for the account.
	CreateTx(ctx context.Context, tx Transaction, wallet *domain.Wallet) error
	// GetOrCreateForUpdate ensures the wallet row exists and locks it until tx ends.
	GetOrCreateForUpdate(ctx context.Context, tx Transaction, accountID string, now time.Time) (*domain.Wallet, error)
	// GetByAccountID returns domain.ErrWalletNotFound when no row exists.
	GetByAccountID(ctx context.Context, accountID string) (*domain.Wallet, error)
	UpdateBalance(ctx context.Context, tx Transaction, accountID string, balance decimal.Decimal, updatedAt time.Time) error
	List(ctx context.Context, limit, offset int) ([]*domain.Wallet, error)
}

// TransactionRepository defines data access for wallet transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, t *domain.Transaction) error
	// ListRecent returns the newest transactions produced at or before wallet version atVersion.
	ListRecent(ctx context.Context, accountID string, atVersion int64, limit int) ([]*domain.Transaction, error)
	Query(ctx context.Context, q *domain.TransactionQuery) ([]*domain.Transaction, error)
	// SumCompleted returns the signed sum of completed transactions up to wallet version atVersion.
	SumCompleted(ctx context.Context, accountID string, atVersion int64) (decimal.Decimal, error)
}

// LedgerRepository defines data access for ledger-wide operations.
type LedgerRepository interface {
	CheckConsistency(ctx context.Context) (totalBalance, totalSigned decimal.Decimal, err error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error)
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage conflicts.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Delete releases a key whose request did not succeed.
	Delete(ctx context.Context, key string) error
}
