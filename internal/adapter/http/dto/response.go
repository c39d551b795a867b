package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/campuscoins/coinledger/internal/domain"
	"github.com/campuscoins/coinledger/internal/usecase"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Required  *int64 `json:"required,omitempty"`
	Available *int64 `json:"available,omitempty"`
}

// PaginationMeta describes one page of a list.
type PaginationMeta struct {
	CurrentPage  int   `json:"current_page"`
	TotalPages   int   `json:"total_pages"`
	TotalItems   int64 `json:"total_items"`
	ItemsPerPage int   `json:"items_per_page"`
	HasNextPage  bool  `json:"has_next_page"`
	HasPrevPage  bool  `json:"has_prev_page"`
}

// NewPaginationMeta builds the meta block for page of totalPages.
func NewPaginationMeta(page, limit, totalPages int, total int64) PaginationMeta {
	return PaginationMeta{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: limit,
		HasNextPage:  page < totalPages,
		HasPrevPage:  page > 1,
	}
}

// ListResponse wraps a paginated list.
type ListResponse[T any] struct {
	Data []T           `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID          string    `json:"id"`
	Scope       string    `json:"scope,omitempty"`
	Balance     int64     `json:"balance"`
	TotalEarned int64     `json:"total_earned"`
	TotalSpent  int64     `json:"total_spent"`
	DailyStreak int       `json:"daily_streak"`
	CreatedAt   time.Time `json:"created_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:          a.ID,
		Scope:       a.Scope,
		Balance:     a.Balance,
		TotalEarned: a.TotalEarned,
		TotalSpent:  a.TotalSpent,
		DailyStreak: a.DailyStreak,
		CreatedAt:   a.CreatedAt,
	}
}

// BalanceResponse is the balance read model.
type BalanceResponse struct {
	AccountID     string  `json:"account_id"`
	Balance       int64   `json:"balance"`
	TotalEarned   int64   `json:"total_earned"`
	TotalSpent    int64   `json:"total_spent"`
	DailyStreak   int     `json:"daily_streak"`
	LastBonusDate *string `json:"last_bonus_date"`
}

// BalanceFromUseCase converts a balance to response.
func BalanceFromUseCase(b *usecase.Balance) *BalanceResponse {
	resp := &BalanceResponse{
		AccountID:   b.AccountID,
		Balance:     b.Balance,
		TotalEarned: b.TotalEarned,
		TotalSpent:  b.TotalSpent,
		DailyStreak: b.DailyStreak,
	}

	if b.LastBonusDate != nil {
		day := b.LastBonusDate.Format(time.DateOnly)
		resp.LastBonusDate = &day
	}

	return resp
}

// EntryResponse represents a ledger entry in API responses.
type EntryResponse struct {
	ID           int64     `json:"id"`
	AccountID    string    `json:"account_id"`
	Amount       int64     `json:"amount"`
	Kind         string    `json:"kind"`
	Description  string    `json:"description"`
	ReferenceID  *string   `json:"reference_id,omitempty"`
	BalanceAfter int64     `json:"balance_after"`
	CreatedAt    time.Time `json:"created_at"`
}

// EntryFromDomain converts domain entry to response.
func EntryFromDomain(e *domain.LedgerEntry) *EntryResponse {
	return &EntryResponse{
		ID:           e.ID,
		AccountID:    e.AccountID,
		Amount:       e.Amount,
		Kind:         string(e.Kind),
		Description:  e.Description,
		ReferenceID:  e.ReferenceID,
		BalanceAfter: e.BalanceAfter,
		CreatedAt:    e.CreatedAt,
	}
}

// EntryPageFromUseCase converts a history page to a list response.
func EntryPageFromUseCase(p *usecase.EntryPage) *ListResponse[*EntryResponse] {
	data := make([]*EntryResponse, len(p.Entries))
	for i, e := range p.Entries {
		data[i] = EntryFromDomain(e)
	}

	return &ListResponse[*EntryResponse]{
		Data: data,
		Meta: NewPaginationMeta(p.Page, p.Limit, p.TotalPages, p.TotalCount),
	}
}

// BonusResponse is the outcome of a daily bonus claim.
type BonusResponse struct {
	Amount int64          `json:"amount"`
	Streak int            `json:"streak"`
	Entry  *EntryResponse `json:"entry"`
}

// BonusFromUseCase converts a claim to response.
func BonusFromUseCase(c *usecase.BonusClaim) *BonusResponse {
	return &BonusResponse{Amount: c.Amount, Streak: c.Streak, Entry: EntryFromDomain(c.Entry)}
}

// TransferResponse represents a transfer in API responses.
type TransferResponse struct {
	ID          string         `json:"id"`
	SenderID    string         `json:"sender_id"`
	RecipientID string         `json:"recipient_id"`
	Amount      int64          `json:"amount"`
	Out         *EntryResponse `json:"debit"`
	In          *EntryResponse `json:"credit"`
	CreatedAt   time.Time      `json:"created_at"`
}

// TransferFromDomain converts domain transfer to response.
func TransferFromDomain(p *domain.TransferPair) *TransferResponse {
	return &TransferResponse{
		ID:          p.ID,
		SenderID:    p.SenderID,
		RecipientID: p.RecipientID,
		Amount:      p.Amount,
		Out:         EntryFromDomain(p.Out),
		In:          EntryFromDomain(p.In),
		CreatedAt:   p.CreatedAt,
	}
}

// RedemptionResponse represents a redemption in API responses.
type RedemptionResponse struct {
	Code      string         `json:"redemption_code"`
	OfferID   string         `json:"offer_id"`
	Quantity  int            `json:"quantity"`
	UnitCost  int64          `json:"unit_cost"`
	TotalCost int64          `json:"total_cost"`
	Entry     *EntryResponse `json:"entry"`
}

// RedemptionFromDomain converts domain redemption to response.
func RedemptionFromDomain(r *domain.Redemption) *RedemptionResponse {
	return &RedemptionResponse{
		Code:      r.Code,
		OfferID:   r.OfferID,
		Quantity:  r.Quantity,
		UnitCost:  r.UnitCost,
		TotalCost: r.TotalCost,
		Entry:     EntryFromDomain(r.Entry),
	}
}

// OfferResponse represents a catalog offer.
type OfferResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CoinCost    int64  `json:"coin_cost"`
	PartnerName string `json:"partner_name"`
	Category    string `json:"category"`
	IsActive    bool   `json:"is_active"`
}

// OfferFromDomain converts domain offer to response.
func OfferFromDomain(o *domain.Offer) *OfferResponse {
	return &OfferResponse{
		ID:          o.ID,
		Title:       o.Title,
		Description: o.Description,
		CoinCost:    o.CoinCost,
		PartnerName: o.PartnerName,
		Category:    o.Category,
		IsActive:    o.Active,
	}
}

// OffersFromDomain converts domain offers to responses.
func OffersFromDomain(offers []*domain.Offer) []*OfferResponse {
	result := make([]*OfferResponse, len(offers))
	for i, o := range offers {
		result[i] = OfferFromDomain(o)
	}
	return result
}

// LeaderboardEntryResponse is one ranked account.
type LeaderboardEntryResponse struct {
	Rank        int    `json:"rank"`
	AccountID   string `json:"account_id"`
	Scope       string `json:"scope,omitempty"`
	Balance     int64  `json:"balance"`
	TotalEarned int64  `json:"total_earned"`
}

// LeaderboardFromUseCase converts a leaderboard page to a list response.
func LeaderboardFromUseCase(p *usecase.LeaderboardPage) *ListResponse[LeaderboardEntryResponse] {
	data := make([]LeaderboardEntryResponse, len(p.Entries))
	for i, e := range p.Entries {
		data[i] = LeaderboardEntryResponse(e)
	}

	return &ListResponse[LeaderboardEntryResponse]{
		Data: data,
		Meta: NewPaginationMeta(p.Page, p.Limit, p.TotalPages, p.TotalCount),
	}
}

// StatsResponse aggregates one account's history.
type StatsResponse struct {
	AccountID        string `json:"account_id"`
	TotalEarned      int64  `json:"total_earned"`
	TotalSpent       int64  `json:"total_spent"`
	TransactionCount int64  `json:"transaction_count"`
	MostFrequentKind string `json:"most_frequent_activity,omitempty"`
	DailyStreak      int    `json:"daily_streak"`
}

// StatsFromDomain converts account stats to response.
func StatsFromDomain(s *domain.AccountStats) *StatsResponse {
	return &StatsResponse{
		AccountID:        s.AccountID,
		TotalEarned:      s.TotalEarned,
		TotalSpent:       s.TotalSpent,
		TransactionCount: s.TransactionCount,
		MostFrequentKind: string(s.MostFrequentKind),
		DailyStreak:      s.DailyStreak,
	}
}

// GlobalStatsResponse aggregates the whole economy.
type GlobalStatsResponse struct {
	TotalAccounts      int64           `json:"total_users"`
	CoinsInCirculation int64           `json:"total_coins_in_circulation"`
	TotalIssued        int64           `json:"total_coins_issued"`
	TotalTransactions  int64           `json:"total_transactions"`
	AverageBalance     decimal.Decimal `json:"average_balance"`
}

// GlobalStatsFromDomain converts global stats to response.
func GlobalStatsFromDomain(s *domain.GlobalStats) *GlobalStatsResponse {
	return &GlobalStatsResponse{
		TotalAccounts:      s.TotalAccounts,
		CoinsInCirculation: s.CoinsInCirculation,
		TotalIssued:        s.TotalIssued,
		TotalTransactions:  s.TotalTransactions,
		AverageBalance:     s.AverageBalance,
	}
}

// DiscrepancyResponse describes one account that disagrees with its log.
type DiscrepancyResponse struct {
	AccountID       string `json:"account_id"`
	RecordedBalance int64  `json:"recorded_balance"`
	EntrySum        int64  `json:"entry_sum"`
}

// ConsistencyResponse is the ledger-wide invariant check.
type ConsistencyResponse struct {
	Consistent       bool                  `json:"consistent"`
	TotalBalance     int64                 `json:"total_balance"`
	TotalEntryAmount int64                 `json:"total_entry_amount"`
	Difference       int64                 `json:"difference"`
	AccountCount     int64                 `json:"account_count"`
	EntryCount       int64                 `json:"entry_count"`
	Discrepancies    []DiscrepancyResponse `json:"discrepancies"`
	CheckedAt        time.Time             `json:"checked_at"`
}

// ConsistencyFromUseCase converts a consistency report to response.
func ConsistencyFromUseCase(r *usecase.ConsistencyReport) *ConsistencyResponse {
	discrepancies := make([]DiscrepancyResponse, len(r.Discrepancies))
	for i, d := range r.Discrepancies {
		discrepancies[i] = DiscrepancyResponse(d)
	}

	return &ConsistencyResponse{
		Consistent:       r.Consistent,
		TotalBalance:     r.TotalBalance,
		TotalEntryAmount: r.TotalEntryAmount,
		Difference:       r.Difference,
		AccountCount:     r.AccountCount,
		EntryCount:       r.EntryCount,
		Discrepancies:    discrepancies,
		CheckedAt:        r.CheckedAt,
	}
}
