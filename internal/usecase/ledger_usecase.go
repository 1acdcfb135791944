package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dooonda/ledger/internal/domain"
	"github.com/dooonda/ledger/internal/infrastructure/metrics"
)

// LedgerUseCase is the only writer of wallet balances.
type LedgerUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	walletRepo  WalletRepository
	txRepo      TransactionRepository
	outboxRepo  OutboxRepository
	retrier     Retrier
	idGen       IDGenerator
	metrics     *metrics.Metrics
	txTimeout   time.Duration
	now         func() time.Time
}

// NewLedgerUseCase creates a new LedgerUseCase. retrier and m may be nil.
func NewLedgerUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	walletRepo WalletRepository,
	txRepo TransactionRepository,
	outboxRepo OutboxRepository,
	retrier Retrier,
	idGen IDGenerator,
	m *metrics.Metrics,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		walletRepo:  walletRepo,
		txRepo:      txRepo,
		outboxRepo:  outboxRepo,
		retrier:     retrier,
		idGen:       idGen,
		metrics:     m,
		txTimeout:   DefaultTransactionTimeout,
		now:         time.Now,
	}
}

// WithTransactionTimeout bounds each database transaction attempt.
func (uc *LedgerUseCase) WithTransactionTimeout(d time.Duration) *LedgerUseCase {
	if d > 0 {
		uc.txTimeout = d
	}

	return uc
}

// RecordTransactionInput represents input for recording a wallet transaction.
type RecordTransactionInput struct {
	AccountID   string
	Kind        domain.TransactionKind
	Amount      decimal.Decimal
	Description string
}

// RecordTransaction appends a COMPLETED transaction and moves the wallet balance
// by its signed amount in one atomic step. Concurrent calls for the same account
// are serialized on the wallet row lock, so no update is lost.
func (uc *LedgerUseCase) RecordTransaction(ctx context.Context, input RecordTransactionInput) (*domain.Transaction, error) {
	start := time.Now()

	candidate := &domain.Transaction{
		AccountID:   input.AccountID,
		Kind:        input.Kind,
		Amount:      input.Amount,
		Description: strings.TrimSpace(input.Description),
	}

	if err := candidate.Validate(); err != nil {
		uc.observeError("record", err)
		return nil, err
	}

	if err := uc.ensureAccount(ctx, input.AccountID); err != nil {
		uc.observeError("record", err)
		return nil, err
	}

	var (
		recorded *domain.Transaction
		attempts int
	)

	operation := func() error {
		attempts++
		if attempts > 1 && uc.metrics != nil {
			uc.metrics.RetryAttempts.Inc()
		}

		t, err := uc.recordOnce(ctx, candidate)
		if err != nil {
			return err
		}

		recorded = t
		return nil
	}

	var err error
	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, operation)
	} else {
		err = operation()
	}

	if err != nil {
		err = domain.Persistence("record transaction", err)
		uc.observeError("record", err)
		return nil, err
	}

	if uc.metrics != nil {
		kind := string(recorded.Kind)
		uc.metrics.TransactionsRecorded.WithLabelValues(kind).Inc()
		uc.metrics.TransactionAmount.WithLabelValues(kind).Observe(recorded.Amount.InexactFloat64())
		uc.metrics.RecordDuration.Observe(time.Since(start).Seconds())
	}

	return recorded, nil
}

func (uc *LedgerUseCase) recordOnce(ctx context.Context, candidate *domain.Transaction) (*domain.Transaction, error) {
	txCtx, cancel := context.WithTimeout(ctx, uc.txTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, domain.Persistence("begin", err)
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	now := uc.now().UTC()

	wallet, err := uc.walletRepo.GetOrCreateForUpdate(txCtx, tx, candidate.AccountID, now)
	if err != nil {
		return nil, domain.Persistence("lock wallet", err)
	}

	newBalance := wallet.Apply(candidate.Kind, candidate.Amount)

	t := &domain.Transaction{
		ID:            uc.idGen.Generate(),
		AccountID:     candidate.AccountID,
		Kind:          candidate.Kind,
		Status:        domain.StatusCompleted,
		Description:   candidate.Description,
		Amount:        candidate.Amount,
		BalanceBefore: wallet.Balance,
		BalanceAfter:  newBalance,
		WalletVersion: wallet.Version + 1,
		CreatedAt:     now,
	}

	if err := uc.txRepo.Create(txCtx, tx, t); err != nil {
		return nil, domain.Persistence("insert transaction", err)
	}

	if err := uc.walletRepo.UpdateBalance(txCtx, tx, t.AccountID, newBalance, now); err != nil {
		return nil, domain.Persistence("update wallet", err)
	}

	event := domain.NewTransactionRecordedEvent(uc.idGen.Generate(), t)
	if err := uc.outboxRepo.Create(txCtx, tx, event); err != nil {
		return nil, domain.Persistence("append outbox", err)
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, domain.Persistence("commit", err)
	}

	return t, nil
}

// GetWalletSnapshot returns the current balance and up to historyLimit newest
// transactions. The history is cut at the wallet version that was read, so the
// newest listed transaction always carries the returned balance.
func (uc *LedgerUseCase) GetWalletSnapshot(ctx context.Context, accountID string, historyLimit int) (*domain.WalletSnapshot, error) {
	limit, err := domain.ValidateHistoryLimit(historyLimit)
	if err != nil {
		uc.observeError("snapshot", err)
		return nil, err
	}

	if err := uc.ensureAccount(ctx, accountID); err != nil {
		uc.observeError("snapshot", err)
		return nil, err
	}

	snapshot := &domain.WalletSnapshot{
		AccountID:    accountID,
		Balance:      decimal.Zero,
		Transactions: []*domain.Transaction{},
	}

	wallet, err := uc.walletRepo.GetByAccountID(ctx, accountID)
	if errors.Is(err, domain.ErrWalletNotFound) {
		uc.observeSnapshot()
		return snapshot, nil
	}

	if err != nil {
		err = domain.Persistence("load wallet", err)
		uc.observeError("snapshot", err)
		return nil, err
	}

	snapshot.Balance = wallet.Balance

	if limit > 0 {
		txs, err := uc.txRepo.ListRecent(ctx, accountID, wallet.Version, limit)
		if err != nil {
			err = domain.Persistence("list transactions", err)
			uc.observeError("snapshot", err)
			return nil, err
		}

		if txs != nil {
			snapshot.Transactions = txs
		}
	}

	uc.observeSnapshot()

	return snapshot, nil
}

// ListTransactions returns the account's transactions matching every condition
// of q, newest first.
func (uc *LedgerUseCase) ListTransactions(ctx context.Context, q *domain.TransactionQuery) ([]*domain.Transaction, error) {
	if q == nil {
		return nil, domain.ErrInvalidFilter
	}

	if err := q.Validate(); err != nil {
		return nil, err
	}

	if err := uc.ensureAccount(ctx, q.AccountID); err != nil {
		return nil, err
	}

	txs, err := uc.txRepo.Query(ctx, q)
	if err != nil {
		err = domain.Persistence("query transactions", err)
		uc.observeError("list", err)
		return nil, err
	}

	if txs == nil {
		txs = []*domain.Transaction{}
	}

	return txs, nil
}

func (uc *LedgerUseCase) ensureAccount(ctx context.Context, accountID string) error {
	if strings.TrimSpace(accountID) == "" {
		return domain.ErrAccountNotFound
	}

	if _, err := uc.accountRepo.GetByID(ctx, accountID); err != nil {
		return domain.Persistence("load account", err)
	}

	return nil
}

func (uc *LedgerUseCase) observeError(op string, err error) {
	if uc.metrics != nil {
		uc.metrics.LedgerErrors.WithLabelValues(op, domain.Category(err)).Inc()
	}
}

func (uc *LedgerUseCase) observeSnapshot() {
	if uc.metrics != nil {
		uc.metrics.SnapshotsServed.Inc()
	}
}
