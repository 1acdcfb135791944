package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dooonda/ledger/internal/domain"
	"github.com/dooonda/ledger/internal/infrastructure/metrics"
)

// ReconciliationUseCase checks wallet balances against their transactions.
type ReconciliationUseCase struct {
	accountRepo AccountRepository
	walletRepo  WalletRepository
	txRepo      TransactionRepository
	ledgerRepo  LedgerRepository
	metrics     *metrics.Metrics
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(
	accountRepo AccountRepository,
	walletRepo WalletRepository,
	txRepo TransactionRepository,
	ledgerRepo LedgerRepository,
	m *metrics.Metrics,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		accountRepo: accountRepo,
		walletRepo:  walletRepo,
		txRepo:      txRepo,
		ledgerRepo:  ledgerRepo,
		metrics:     m,
	}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	AccountID         string
	RecordedBalance   decimal.Decimal
	CalculatedBalance decimal.Decimal
	Difference        decimal.Decimal
	WalletVersion     int64
	IsReconciled      bool
	LastChecked       time.Time
}

// ReconcileAccount compares the recorded balance with the signed sum of the
// wallet's completed transactions at the same wallet version.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, accountID string) (*ReconciliationResult, error) {
	if _, err := uc.accountRepo.GetByID(ctx, accountID); err != nil {
		return nil, domain.Persistence("load account", err)
	}

	wallet, err := uc.walletRepo.GetByAccountID(ctx, accountID)
	switch {
	case errors.Is(err, domain.ErrWalletNotFound):
		wallet = &domain.Wallet{AccountID: accountID, Balance: decimal.Zero}
	case err != nil:
		return nil, domain.Persistence("load wallet", err)
	}

	return uc.reconcileWallet(ctx, wallet)
}

func (uc *ReconciliationUseCase) reconcileWallet(ctx context.Context, wallet *domain.Wallet) (*ReconciliationResult, error) {
	calculated, err := uc.txRepo.SumCompleted(ctx, wallet.AccountID, wallet.Version)
	if err != nil {
		return nil, domain.Persistence("sum transactions", err)
	}

	diff := wallet.Balance.Sub(calculated)

	return &ReconciliationResult{
		AccountID:         wallet.AccountID,
		RecordedBalance:   wallet.Balance,
		CalculatedBalance: calculated,
		Difference:        diff,
		WalletVersion:     wallet.Version,
		IsReconciled:      diff.IsZero(),
		LastChecked:       time.Now().UTC(),
	}, nil
}

// ReconcileAll reconciles every wallet, a page at a time.
func (uc *ReconciliationUseCase) ReconcileAll(ctx context.Context) ([]*ReconciliationResult, error) {
	var results []*ReconciliationResult

	for offset := 0; ; offset += reconcilePageSize {
		wallets, err := uc.walletRepo.List(ctx, reconcilePageSize, offset)
		if err != nil {
			return nil, domain.Persistence("list wallets", err)
		}

		for _, w := range wallets {
			result, err := uc.reconcileWallet(ctx, w)
			if err != nil {
				return nil, fmt.Errorf("failed to reconcile account %s: %w", w.AccountID, err)
			}

			results = append(results, result)
		}

		if len(wallets) < reconcilePageSize {
			break
		}
	}

	return results, nil
}

// CheckConsistency verifies that the sum of all wallet balances equals the
// signed sum of all completed transactions.
func (uc *ReconciliationUseCase) CheckConsistency(ctx context.Context) error {
	totalBalance, totalSigned, err := uc.ledgerRepo.CheckConsistency(ctx)
	if err != nil {
		return domain.Persistence("check consistency", err)
	}

	if !totalBalance.Equal(totalSigned) {
		return fmt.Errorf(
			"%w: balances=%s transactions=%s difference=%s",
			domain.ErrInconsistentLedger,
			totalBalance.String(),
			totalSigned.String(),
			totalBalance.Sub(totalSigned).String(),
		)
	}

	return nil
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	TotalAccounts      int
	ReconciledAccounts int
	Discrepancies      []*ReconciliationResult
	LedgerConsistent   bool
	CheckedAt          time.Time
}

// GenerateReport reconciles all wallets and checks ledger-wide consistency.
func (uc *ReconciliationUseCase) GenerateReport(ctx context.Context) (*ReconciliationReport, error) {
	results, err := uc.ReconcileAll(ctx)
	if err != nil {
		return nil, err
	}

	ledgerErr := uc.CheckConsistency(ctx)
	if ledgerErr != nil && !errors.Is(ledgerErr, domain.ErrInconsistentLedger) {
		return nil, ledgerErr
	}

	report := &ReconciliationReport{
		TotalAccounts:    len(results),
		Discrepancies:    make([]*ReconciliationResult, 0),
		LedgerConsistent: ledgerErr == nil,
		CheckedAt:        time.Now().UTC(),
	}

	for _, result := range results {
		if result.IsReconciled {
			report.ReconciledAccounts++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
		}
	}

	if uc.metrics != nil {
		uc.metrics.ReconciliationDiscrepancies.Set(float64(len(report.Discrepancies)))
	}

	return report, nil
}
