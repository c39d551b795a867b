package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/campuscoins/coinledger/internal/adapter/http/dto"
	"github.com/campuscoins/coinledger/internal/domain"
	"github.com/campuscoins/coinledger/internal/usecase"
)

// HistoryService defines read access to the transaction log.
type HistoryService interface {
	GetTransactions(ctx context.Context, input usecase.TransactionsInput) (*usecase.EntryPage, error)
	GetTransaction(ctx context.Context, accountID string, entryID int64) (*domain.LedgerEntry, error)
	GetRedemptions(ctx context.Context, accountID string, page, limit int) (*usecase.EntryPage, error)
}

// HistoryHandler serves transaction history.
type HistoryHandler struct {
	history HistoryService
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(history HistoryService) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// Transactions lists an account's entries, newest first.
func (h *HistoryHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	from, err := parseTimeQuery(r, "date_from")
	if err != nil {
		writeDomainError(w, r, "invalid query", err)
		return
	}

	to, err := parseTimeQuery(r, "date_to")
	if err != nil {
		writeDomainError(w, r, "invalid query", err)
		return
	}

	page, err := h.history.GetTransactions(r.Context(), usecase.TransactionsInput{
		AccountID: chi.URLParam(r, "id"),
		Kind:      r.URL.Query().Get("kind"),
		DateFrom:  from,
		DateTo:    to,
		Page:      parseIntQuery(r, "page", 1),
		Limit:     parseIntQuery(r, "limit", domain.DefaultPageSize),
	})
	if err != nil {
		writeDomainError(w, r, "failed to list transactions", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryPageFromUseCase(page))
}

// Transaction returns one entry.
func (h *HistoryHandler) Transaction(w http.ResponseWriter, r *http.Request) {
	entryID, err := strconv.ParseInt(chi.URLParam(r, "entryID"), 10, 64)
	if err != nil {
		writeDomainError(w, r, "invalid entry id", fmt.Errorf("%w: entry id must be an integer", domain.ErrValidation))
		return
	}

	entry, err := h.history.GetTransaction(r.Context(), chi.URLParam(r, "id"), entryID)
	if err != nil {
		writeDomainError(w, r, "failed to get transaction", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}

// Redemptions lists an account's redemption entries.
func (h *HistoryHandler) Redemptions(w http.ResponseWriter, r *http.Request) {
	page, err := h.history.GetRedemptions(r.Context(),
		chi.URLParam(r, "id"),
		parseIntQuery(r, "page", 1),
		parseIntQuery(r, "limit", domain.DefaultPageSize),
	)
	if err != nil {
		writeDomainError(w, r, "failed to list redemptions", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryPageFromUseCase(page))
}
