package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campuscoins/coinledger/internal/adapter/http/dto"
	"github.com/campuscoins/coinledger/internal/domain"
	"github.com/campuscoins/coinledger/internal/usecase"
)

// CoinsService defines the balance-changing operations served over HTTP.
type CoinsService interface {
	EarnCoins(ctx context.Context, input usecase.EarnInput) (*domain.LedgerEntry, error)
	ClaimDailyBonus(ctx context.Context, accountID string) (*usecase.BonusClaim, error)
	TransferCoins(ctx context.Context, input usecase.TransferInput) (*domain.TransferPair, error)
	RedeemOffer(ctx context.Context, input usecase.RedeemInput) (*domain.Redemption, error)
	AdjustBalance(ctx context.Context, input usecase.AdjustInput) (*domain.LedgerEntry, error)
}

// CoinsHandler handles earn, bonus, transfer, redemption and adjustment requests.
type CoinsHandler struct {
	coins CoinsService
}

// NewCoinsHandler creates a new CoinsHandler.
func NewCoinsHandler(coins CoinsService) *CoinsHandler {
	return &CoinsHandler{coins: coins}
}

// Earn credits an activity reward.
func (h *CoinsHandler) Earn(w http.ResponseWriter, r *http.Request) {
	var req dto.EarnRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeDomainError(w, r, "invalid request", err)
		return
	}

	entry, err := h.coins.EarnCoins(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, r, "failed to earn coins", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryFromDomain(entry))
}

// DailyBonus claims today's bonus.
func (h *CoinsHandler) DailyBonus(w http.ResponseWriter, r *http.Request) {
	claim, err := h.coins.ClaimDailyBonus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, "failed to claim daily bonus", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.BonusFromUseCase(claim))
}

// Transfer moves coins from the path account to a recipient.
func (h *CoinsHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req dto.TransferRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeDomainError(w, r, "invalid request", err)
		return
	}

	pair, err := h.coins.TransferCoins(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, r, "failed to transfer coins", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransferFromDomain(pair))
}

// Redeem spends coins on a catalog offer.
func (h *CoinsHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	var req dto.RedeemRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeDomainError(w, r, "invalid request", err)
		return
	}

	redemption, err := h.coins.RedeemOffer(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, r, "failed to redeem offer", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.RedemptionFromDomain(redemption))
}

// Adjust records an admin correction.
func (h *CoinsHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	var req dto.AdjustRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeDomainError(w, r, "invalid request", err)
		return
	}

	entry, err := h.coins.AdjustBalance(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, r, "failed to adjust balance", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryFromDomain(entry))
}
