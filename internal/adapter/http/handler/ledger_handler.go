package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/dooonda/ledger/internal/adapter/http/dto"
	"github.com/dooonda/ledger/internal/domain"
	"github.com/dooonda/ledger/internal/usecase"
)

// ReconciliationService defines the behavior needed by LedgerHandler.
type ReconciliationService interface {
	ReconcileAccount(ctx context.Context, accountID string) (*usecase.ReconciliationResult, error)
	GenerateReport(ctx context.Context) (*usecase.ReconciliationReport, error)
	CheckConsistency(ctx context.Context) error
}

// LedgerHandler handles ledger-wide operations. Routes are admin only.
type LedgerHandler struct {
	reconciliation ReconciliationService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(reconciliation ReconciliationService) *LedgerHandler {
	return &LedgerHandler{reconciliation: reconciliation}
}

// CheckConsistency checks if the ledger is consistent.
func (h *LedgerHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	err := h.reconciliation.CheckConsistency(r.Context())
	if errors.Is(err, domain.ErrInconsistentLedger) {
		hlog.FromRequest(r).Error().Err(err).Msg("ledger consistency check failed")
		writeJSON(w, http.StatusConflict, dto.ConsistencyResponse{
			Consistent: false,
			Detail:     err.Error(),
		})
		return
	}

	if err != nil {
		respondError(w, r, "check consistency", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ConsistencyResponse{Consistent: true})
}

// Report reconciles every wallet and summarizes discrepancies.
func (h *LedgerHandler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconciliation.GenerateReport(r.Context())
	if err != nil {
		respondError(w, r, "reconciliation report", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReportFromResult(report))
}

// ReconcileAccount reconciles a single account's wallet.
func (h *LedgerHandler) ReconcileAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	result, err := h.reconciliation.ReconcileAccount(r.Context(), id)
	if err != nil {
		respondError(w, r, "reconcile account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromResult(result))
}
