package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// IdempotencyPending marks a key whose first request has not finished yet.
	IdempotencyPending = "processing"

	// PasswordHashCost is the bcrypt cost used for new passwords.
	PasswordHashCost = 12

	// reconcilePageSize is how many wallets a reconciliation pass reads at once.
	reconcilePageSize = 100
)
