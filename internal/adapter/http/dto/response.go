package dto

import (
	"time"

	"github.com/dooonda/ledger/internal/domain"
	"github.com/dooonda/ledger/internal/usecase"
)

// TransactionResponse represents a wallet transaction in API responses.
type TransactionResponse struct {
	ID            string    `json:"id"`
	AccountID     string    `json:"account_id"`
	Type          string    `json:"type"`
	Amount        Amount    `json:"amount"`
	Description   string    `json:"description"`
	Status        string    `json:"status"`
	BalanceBefore Amount    `json:"balance_before"`
	BalanceAfter  Amount    `json:"balance_after"`
	CreatedAt     time.Time `json:"created_at"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:            t.ID,
		AccountID:     t.AccountID,
		Type:          string(t.Kind),
		Amount:        Amount(t.Amount),
		Description:   t.Description,
		Status:        string(t.Status),
		BalanceBefore: Amount(t.BalanceBefore),
		BalanceAfter:  Amount(t.BalanceAfter),
		CreatedAt:     t.CreatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses. The
// result is never nil so an empty history encodes as [].
func TransactionsFromDomain(txs []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txs))
	for i, t := range txs {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// WalletResponse is the wallet snapshot returned by GET /api/v1/wallet.
type WalletResponse struct {
	Balance      Amount                 `json:"balance"`
	Transactions []*TransactionResponse `json:"transactions"`
}

// WalletFromDomain converts a snapshot to a response.
func WalletFromDomain(s *domain.WalletSnapshot) *WalletResponse {
	return &WalletResponse{
		Balance:      Amount(s.Balance),
		Transactions: TransactionsFromDomain(s.Transactions),
	}
}

// TransactionListResponse is a page of filtered transactions.
type TransactionListResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Limit        int                    `json:"limit"`
	Offset       int                    `json:"offset"`
}

// AccountResponse represents an account in API responses. The password hash
// never leaves the service.
type AccountResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Phone:     a.Phone,
		Role:      string(a.Role),
		CreatedAt: a.CreatedAt,
	}
}

// SignupResponse is returned by POST /api/v1/auth/signup.
type SignupResponse struct {
	Message string           `json:"message"`
	User    *AccountResponse `json:"user"`
}

// LoginResponse is returned by POST /api/v1/auth/login.
type LoginResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	User      *AccountResponse `json:"user"`
}

// ReconciliationResponse reports one account's reconciliation.
type ReconciliationResponse struct {
	AccountID         string    `json:"account_id"`
	RecordedBalance   Amount    `json:"recorded_balance"`
	CalculatedBalance Amount    `json:"calculated_balance"`
	Difference        Amount    `json:"difference"`
	WalletVersion     int64     `json:"wallet_version"`
	IsReconciled      bool      `json:"is_reconciled"`
	LastChecked       time.Time `json:"last_checked"`
}

// ReconciliationFromResult converts a use case result to a response.
func ReconciliationFromResult(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		AccountID:         r.AccountID,
		RecordedBalance:   Amount(r.RecordedBalance),
		CalculatedBalance: Amount(r.CalculatedBalance),
		Difference:        Amount(r.Difference),
		WalletVersion:     r.WalletVersion,
		IsReconciled:      r.IsReconciled,
		LastChecked:       r.LastChecked,
	}
}

// ReconciliationReportResponse summarizes a full reconciliation pass.
type ReconciliationReportResponse struct {
	TotalAccounts      int                       `json:"total_accounts"`
	ReconciledAccounts int                       `json:"reconciled_accounts"`
	Discrepancies      []*ReconciliationResponse `json:"discrepancies"`
	LedgerConsistent   bool                      `json:"ledger_consistent"`
	CheckedAt          time.Time                 `json:"checked_at"`
}

// ReportFromResult converts a use case report to a response.
func ReportFromResult(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	discrepancies := make([]*ReconciliationResponse, len(r.Discrepancies))
	for i, d := range r.Discrepancies {
		discrepancies[i] = ReconciliationFromResult(d)
	}

	return &ReconciliationReportResponse{
		TotalAccounts:      r.TotalAccounts,
		ReconciledAccounts: r.ReconciledAccounts,
		Discrepancies:      discrepancies,
		LedgerConsistent:   r.LedgerConsistent,
		CheckedAt:          r.CheckedAt,
	}
}

// ConsistencyResponse is returned by GET /api/v1/ledger/consistency.
type ConsistencyResponse struct {
	Consistent bool   `json:"consistent"`
	Detail     string `json:"detail,omitempty"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
