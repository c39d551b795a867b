package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campuscoins/coinledger/internal/adapter/http/dto"
	"github.com/campuscoins/coinledger/internal/domain"
	"github.com/campuscoins/coinledger/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	OpenAccount(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error)
	GetBalance(ctx context.Context, accountID string) (*usecase.Balance, error)
	GetStats(ctx context.Context, accountID string) (*domain.AccountStats, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accounts AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accounts AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// Open opens an account and credits the welcome bonus.
func (h *AccountHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req dto.OpenAccountRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeDomainError(w, r, "invalid request", err)
		return
	}

	account, err := h.accounts.OpenAccount(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, r, "failed to open account", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Balance returns the balance and streak of an account.
func (h *AccountHandler) Balance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.accounts.GetBalance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, "failed to get balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromUseCase(balance))
}

// Stats returns per-account statistics.
func (h *AccountHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.accounts.GetStats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, "failed to get stats", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.StatsFromDomain(stats))
}
