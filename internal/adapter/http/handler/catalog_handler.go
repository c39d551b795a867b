package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campuscoins/coinledger/internal/adapter/http/dto"
	"github.com/campuscoins/coinledger/internal/domain"
	"github.com/campuscoins/coinledger/internal/usecase"
)

// CatalogService serves offers, the leaderboard and economy-wide statistics.
type CatalogService interface {
	ListOffers(ctx context.Context) ([]*domain.Offer, error)
	GetOffer(ctx context.Context, id string) (*domain.Offer, error)
	GetLeaderboard(ctx context.Context, input usecase.LeaderboardInput) (*usecase.LeaderboardPage, error)
	GetGlobalStats(ctx context.Context) (*domain.GlobalStats, error)
}

// CatalogHandler handles the public read endpoints.
type CatalogHandler struct {
	catalog CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalog CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// Offers lists all offers.
func (h *CatalogHandler) Offers(w http.ResponseWriter, r *http.Request) {
	offers, err := h.catalog.ListOffers(r.Context())
	if err != nil {
		writeDomainError(w, r, "failed to list offers", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": dto.OffersFromDomain(offers)})
}

// Offer returns one offer.
func (h *CatalogHandler) Offer(w http.ResponseWriter, r *http.Request) {
	offer, err := h.catalog.GetOffer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, "failed to get offer", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OfferFromDomain(offer))
}

// Leaderboard ranks accounts by balance, optionally within ?scope.
func (h *CatalogHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	page, err := h.catalog.GetLeaderboard(r.Context(), usecase.LeaderboardInput{
		Scope: r.URL.Query().Get("scope"),
		Page:  parseIntQuery(r, "page", 1),
		Limit: parseIntQuery(r, "limit", domain.DefaultPageSize),
	})
	if err != nil {
		writeDomainError(w, r, "failed to get leaderboard", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LeaderboardFromUseCase(page))
}

// GlobalStats returns economy-wide statistics.
func (h *CatalogHandler) GlobalStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.catalog.GetGlobalStats(r.Context())
	if err != nil {
		writeDomainError(w, r, "failed to get stats", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.GlobalStatsFromDomain(stats))
}
