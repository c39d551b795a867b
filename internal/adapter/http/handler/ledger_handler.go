package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campuscoins/coinledger/internal/adapter/http/dto"
	"github.com/campuscoins/coinledger/internal/usecase"
)

// ReconciliationService checks the ledger invariants.
type ReconciliationService interface {
	CheckLedgerConsistency(ctx context.Context) (*usecase.ConsistencyReport, error)
	ReconcileAccount(ctx context.Context, accountID string) (*usecase.ReconciliationResult, error)
}

// LedgerHandler handles ledger-wide operations.
type LedgerHandler struct {
	recon ReconciliationService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(recon ReconciliationService) *LedgerHandler {
	return &LedgerHandler{recon: recon}
}

// CheckConsistency reports whether balances match the log. An inconsistent ledger
// answers 409 with the report.
func (h *LedgerHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	report, err := h.recon.CheckLedgerConsistency(r.Context())
	if err != nil {
		writeDomainError(w, r, "failed to check consistency", err)
		return
	}

	status := http.StatusOK
	if !report.Consistent {
		status = http.StatusConflict
	}

	writeJSON(w, status, dto.ConsistencyFromUseCase(report))
}

// ReconcileAccount compares one account's balance with its entries.
func (h *LedgerHandler) ReconcileAccount(w http.ResponseWriter, r *http.Request) {
	result, err := h.recon.ReconcileAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, "failed to reconcile account", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"account_id":         result.AccountID,
		"recorded_balance":   result.RecordedBalance,
		"calculated_balance": result.CalculatedBalance,
		"difference":         result.Difference,
		"reconciled":         result.IsReconciled,
		"checked_at":         result.LastChecked,
	})
}
