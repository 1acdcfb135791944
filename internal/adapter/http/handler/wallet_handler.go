package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dooonda/ledger/internal/adapter/http/dto"
	"github.com/dooonda/ledger/internal/domain"
	"github.com/dooonda/ledger/internal/usecase"
)

// WalletService defines the behavior needed by WalletHandler.
type WalletService interface {
	RecordTransaction(ctx context.Context, input usecase.RecordTransactionInput) (*domain.Transaction, error)
	GetWalletSnapshot(ctx context.Context, accountID string, historyLimit int) (*domain.WalletSnapshot, error)
	ListTransactions(ctx context.Context, q *domain.TransactionQuery) ([]*domain.Transaction, error)
}

// WalletHandler serves the authenticated caller's wallet.
type WalletHandler struct {
	ledger WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(ledger WalletService) *WalletHandler {
	return &WalletHandler{ledger: ledger}
}

// Get returns the caller's balance and most recent transactions.
func (h *WalletHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	limit, err := parseIntQuery(r, "limit", domain.DefaultHistoryLimit)
	if err != nil {
		respondError(w, r, "get wallet", err)
		return
	}

	snapshot, err := h.ledger.GetWalletSnapshot(r.Context(), p.AccountID, limit)
	if err != nil {
		respondError(w, r, "get wallet", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.WalletFromDomain(snapshot))
}

// Record appends a transaction to the caller's wallet.
func (h *WalletHandler) Record(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req dto.RecordTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, "record transaction", err)
		return
	}

	input, err := req.ToUseCaseInput(p.AccountID)
	if err != nil {
		respondError(w, r, "record transaction", err)
		return
	}

	t, err := h.ledger.RecordTransaction(r.Context(), input)
	if err != nil {
		respondError(w, r, "record transaction", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(t))
}

// ListTransactions returns a filtered page of the caller's transactions.
func (h *WalletHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	q, err := parseTransactionQuery(r, p.AccountID)
	if err != nil {
		respondError(w, r, "list transactions", err)
		return
	}

	txs, err := h.ledger.ListTransactions(r.Context(), q)
	if err != nil {
		respondError(w, r, "list transactions", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionListResponse{
		Transactions: dto.TransactionsFromDomain(txs),
		Limit:        q.Limit,
		Offset:       q.Offset,
	})
}

// parseTransactionQuery maps ?kind=&status=&from=&to=&q=&limit=&offset= onto
// typed conditions. Empty parameters add no condition.
func parseTransactionQuery(r *http.Request, accountID string) (*domain.TransactionQuery, error) {
	values := r.URL.Query()
	q := domain.NewTransactionQuery(accountID)

	if raw := values.Get("kind"); raw != "" {
		var kinds []domain.TransactionKind
		for _, part := range strings.Split(raw, ",") {
			kind, err := domain.ParseTransactionKind(part)
			if err != nil {
				return nil, err
			}
			kinds = append(kinds, kind)
		}
		q.Where(domain.KindIn{Kinds: kinds})
	}

	if raw := values.Get("status"); raw != "" {
		status, err := domain.ParseTransactionStatus(raw)
		if err != nil {
			return nil, err
		}
		q.Where(domain.StatusIs{Status: status})
	}

	if raw := values.Get("from"); raw != "" {
		at, err := parseTime("from", raw)
		if err != nil {
			return nil, err
		}
		q.Where(domain.CreatedFrom{At: at})
	}

	if raw := values.Get("to"); raw != "" {
		at, err := parseTime("to", raw)
		if err != nil {
			return nil, err
		}
		q.Where(domain.CreatedBefore{At: at})
	}

	if raw := values.Get("q"); strings.TrimSpace(raw) != "" {
		q.Where(domain.DescriptionContains{Text: raw})
	}

	limit, err := parseIntQuery(r, "limit", 0)
	if err != nil {
		return nil, err
	}

	offset, err := parseIntQuery(r, "offset", 0)
	if err != nil {
		return nil, err
	}

	return q.Page(limit, offset), nil
}

func parseTime(key, raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}

	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("%w: %s must be RFC3339 or YYYY-MM-DD", domain.ErrInvalidFilter, key)
}
