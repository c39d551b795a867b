package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/campuscoins/coinledger/internal/domain"
)

// CoinsUseCase is the entry point used by the social application and the REST layer.
type CoinsUseCase struct {
	balances    *BalanceStore
	log         *TransactionLog
	policy      *RewardPolicy
	bonus       *DailyBonusCalculator
	transfers   *TransferService
	redemptions *RedemptionService
	accountRepo AccountRepository
	entryRepo   EntryRepository
	ledgerRepo  LedgerRepository
	catalog     OfferCatalog
	cache       Cache
	cacheTTL    time.Duration
	retrier     Retrier
	metrics     MetricsRecorder
}

// CoinsConfig holds the collaborators of a CoinsUseCase.
type CoinsConfig struct {
	Balances    *BalanceStore
	Log         *TransactionLog
	Policy      *RewardPolicy
	Bonus       *DailyBonusCalculator
	Transfers   *TransferService
	Redemptions *RedemptionService
	AccountRepo AccountRepository
	EntryRepo   EntryRepository
	LedgerRepo  LedgerRepository
	Catalog     OfferCatalog
	Cache       Cache         // optional
	CacheTTL    time.Duration // leaderboard cache TTL
	Retrier     Retrier       // optional, used for hot-path earns
	Metrics     MetricsRecorder
}

// NewCoinsUseCase creates a new CoinsUseCase.
func NewCoinsUseCase(cfg CoinsConfig) *CoinsUseCase {
	if cfg.Metrics == nil {
		cfg.Metrics = nopMetrics{}
	}

	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultLeaderboardCacheTTL
	}

	return &CoinsUseCase{
		balances:    cfg.Balances,
		log:         cfg.Log,
		policy:      cfg.Policy,
		bonus:       cfg.Bonus,
		transfers:   cfg.Transfers,
		redemptions: cfg.Redemptions,
		accountRepo: cfg.AccountRepo,
		entryRepo:   cfg.EntryRepo,
		ledgerRepo:  cfg.LedgerRepo,
		catalog:     cfg.Catalog,
		cache:       cfg.Cache,
		cacheTTL:    cfg.CacheTTL,
		retrier:     cfg.Retrier,
		metrics:     cfg.Metrics,
	}
}

// OpenAccount registers a member and credits the welcome bonus.
func (uc *CoinsUseCase) OpenAccount(ctx context.Context, input OpenAccountInput) (*domain.Account, error) {
	start := time.Now()
	defer func() { uc.metrics.ObserveOperation(OpOpenAccount, time.Since(start)) }()

	account, err := uc.balances.OpenAccount(ctx, input)
	if err != nil {
		uc.metrics.OperationFailed(OpOpenAccount, err)
		return nil, err
	}

	if account.Balance > 0 {
		uc.metrics.CoinsEarned(domain.KindWelcomeBonus, account.Balance)
	}

	log.Info().Str("account_id", account.ID).Str("scope", account.Scope).Msg("account opened")

	return account, nil
}

// EarnInput represents an activity reward request.
type EarnInput struct {
	AccountID   string
	Activity    string
	ReferenceID *string
	Description string
}

// EarnCoins credits the fixed reward for an activity. Conflicts are retried when a
// retrier is configured.
func (uc *CoinsUseCase) EarnCoins(ctx context.Context, input EarnInput) (*domain.LedgerEntry, error) {
	start := time.Now()
	defer func() { uc.metrics.ObserveOperation(OpEarn, time.Since(start)) }()

	kind, err := domain.ParseActivity(input.Activity)
	if err != nil {
		return nil, err
	}

	amount := uc.policy.AmountFor(kind)
	if amount <= 0 {
		return nil, fmt.Errorf("%w: %s earns no coins", domain.ErrInvalidActivityKind, kind)
	}

	description := input.Description
	if description == "" {
		description = defaultActivityDescription(kind)
	}

	delta := DeltaInput{
		AccountID:   input.AccountID,
		Amount:      amount,
		Kind:        kind,
		Description: description,
		ReferenceID: input.ReferenceID,
	}

	var entry *domain.LedgerEntry
	operation := func() error {
		var opErr error
		entry, opErr = uc.balances.ApplyDelta(ctx, delta)
		return opErr
	}

	if uc.retrier != nil {
		err = storageError(OpEarn, uc.retrier.Retry(ctx, operation))
	} else {
		err = operation()
	}

	if err != nil {
		uc.metrics.OperationFailed(OpEarn, err)
		return nil, err
	}

	uc.metrics.CoinsEarned(kind, amount)
	log.Info().
		Str("account_id", entry.AccountID).
		Str("kind", string(kind)).
		Int64("amount", amount).
		Int64("entry_id", entry.ID).
		Msg("coins earned")

	return entry, nil
}

// ClaimDailyBonus grants today's streak bonus.
func (uc *CoinsUseCase) ClaimDailyBonus(ctx context.Context, accountID string) (*BonusClaim, error) {
	start := time.Now()
	defer func() { uc.metrics.ObserveOperation(OpDailyBonus, time.Since(start)) }()

	claim, err := uc.bonus.Claim(ctx, accountID)
	if err != nil {
		uc.metrics.OperationFailed(OpDailyBonus, err)
		return nil, err
	}

	uc.metrics.CoinsEarned(domain.KindDailyBonus, claim.Amount)
	uc.metrics.BonusClaimed(claim.Streak)
	log.Info().
		Str("account_id", accountID).
		Int("streak", claim.Streak).
		Int64("amount", claim.Amount).
		Msg("daily bonus claimed")

	return claim, nil
}

// TransferCoins moves coins between members.
func (uc *CoinsUseCase) TransferCoins(ctx context.Context, input TransferInput) (*domain.TransferPair, error) {
	start := time.Now()
	defer func() { uc.metrics.ObserveOperation(OpTransfer, time.Since(start)) }()

	pair, err := uc.transfers.Transfer(ctx, input)
	if err != nil {
		uc.metrics.OperationFailed(OpTransfer, err)
		return nil, err
	}

	uc.metrics.TransferCompleted(pair.Amount)
	log.Info().
		Str("transfer_id", pair.ID).
		Str("sender_id", pair.SenderID).
		Str("recipient_id", pair.RecipientID).
		Int64("amount", pair.Amount).
		Msg("coins transferred")

	return pair, nil
}

// RedeemOffer spends coins on an offer.
func (uc *CoinsUseCase) RedeemOffer(ctx context.Context, input RedeemInput) (*domain.Redemption, error) {
	start := time.Now()
	defer func() { uc.metrics.ObserveOperation(OpRedeem, time.Since(start)) }()

	redemption, err := uc.redemptions.Redeem(ctx, input)
	if err != nil {
		uc.metrics.OperationFailed(OpRedeem, err)
		return nil, err
	}

	uc.metrics.CoinsSpent(domain.KindRedemption, redemption.TotalCost)
	uc.metrics.RedemptionCompleted(redemption.OfferID, redemption.TotalCost)
	log.Info().
		Str("account_id", input.AccountID).
		Str("offer_id", redemption.OfferID).
		Int("quantity", redemption.Quantity).
		Int64("total_cost", redemption.TotalCost).
		Msg("offer redeemed")

	return redemption, nil
}

// AdjustInput represents an administrative balance correction.
type AdjustInput struct {
	AccountID   string
	Amount      int64
	Description string
}

// AdjustBalance records a signed admin_adjustment entry.
func (uc *CoinsUseCase) AdjustBalance(ctx context.Context, input AdjustInput) (*domain.LedgerEntry, error) {
	start := time.Now()
	defer func() { uc.metrics.ObserveOperation(OpAdjust, time.Since(start)) }()

	if input.Description == "" {
		return nil, fmt.Errorf("%w: adjustment requires a description", domain.ErrValidation)
	}

	entry, err := uc.balances.ApplyDelta(ctx, DeltaInput{
		AccountID:   input.AccountID,
		Amount:      input.Amount,
		Kind:        domain.KindAdminAdjustment,
		Description: input.Description,
	})
	if err != nil {
		uc.metrics.OperationFailed(OpAdjust, err)
		return nil, err
	}

	if entry.Amount > 0 {
		uc.metrics.CoinsEarned(entry.Kind, entry.Amount)
	} else {
		uc.metrics.CoinsSpent(entry.Kind, -entry.Amount)
	}

	log.Warn().
		Str("account_id", entry.AccountID).
		Int64("amount", entry.Amount).
		Str("description", entry.Description).
		Msg("balance adjusted")

	return entry, nil
}

// GetBalance returns the balance of an account.
func (uc *CoinsUseCase) GetBalance(ctx context.Context, accountID string) (*Balance, error) {
	return uc.balances.GetBalance(ctx, accountID)
}

// TransactionsInput represents a history query.
type TransactionsInput struct {
	AccountID string
	Kind      string
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	Limit     int
}

// GetTransactions returns a page of an account's history, newest first.
func (uc *CoinsUseCase) GetTransactions(ctx context.Context, input TransactionsInput) (*EntryPage, error) {
	filter := domain.EntryFilter{DateFrom: input.DateFrom, DateTo: input.DateTo}

	if input.Kind != "" {
		kind, err := domain.ParseEntryKind(input.Kind)
		if err != nil {
			return nil, err
		}

		filter.Kind = kind
	}

	if _, err := uc.balances.GetAccount(ctx, input.AccountID); err != nil {
		return nil, err
	}

	page, err := uc.log.Query(ctx, QueryEntriesInput{
		AccountID: input.AccountID,
		Filter:    filter,
		Page:      input.Page,
		Limit:     input.Limit,
	})
	if err != nil {
		return nil, storageError("get_transactions", err)
	}

	return page, nil
}

// GetTransaction returns a single entry of an account.
func (uc *CoinsUseCase) GetTransaction(ctx context.Context, accountID string, entryID int64) (*domain.LedgerEntry, error) {
	entry, err := uc.log.Get(ctx, accountID, entryID)
	if err != nil {
		return nil, storageError("get_transaction", err)
	}

	return entry, nil
}

// GetRedemptions returns the redemption history of an account.
func (uc *CoinsUseCase) GetRedemptions(ctx context.Context, accountID string, page, limit int) (*EntryPage, error) {
	return uc.GetTransactions(ctx, TransactionsInput{
		AccountID: accountID,
		Kind:      string(domain.KindRedemption),
		Page:      page,
		Limit:     limit,
	})
}

// LeaderboardInput represents a leaderboard query.
type LeaderboardInput struct {
	Scope string
	Page  int
	Limit int
}

// LeaderboardPage is one page of the ranking.
type LeaderboardPage struct {
	Scope      string                    `json:"scope"`
	Entries    []domain.LeaderboardEntry `json:"entries"`
	TotalCount int64                     `json:"total_count"`
	TotalPages int                       `json:"total_pages"`
	Page       int                       `json:"page"`
	Limit      int                       `json:"limit"`
}

// GetLeaderboard ranks accounts by balance, optionally within one scope.
func (uc *CoinsUseCase) GetLeaderboard(ctx context.Context, input LeaderboardInput) (*LeaderboardPage, error) {
	if err := domain.ValidateScope(input.Scope); err != nil {
		return nil, err
	}

	page, limit := domain.ValidatePagination(input.Page, input.Limit)
	cacheKey := fmt.Sprintf("leaderboard:%s:%d:%d", input.Scope, page, limit)

	if cached := uc.cachedLeaderboard(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	total, err := uc.accountRepo.Count(ctx, input.Scope)
	if err != nil {
		return nil, storageError("leaderboard", err)
	}

	offset := domain.PageOffset(page, limit)

	var accounts []*domain.Account
	if int64(offset) < total {
		accounts, err = uc.accountRepo.Leaderboard(ctx, input.Scope, limit, offset)
		if err != nil {
			return nil, storageError("leaderboard", err)
		}
	}

	entries := make([]domain.LeaderboardEntry, 0, len(accounts))
	for i, a := range accounts {
		entries = append(entries, domain.LeaderboardEntry{
			Rank:        offset + i + 1,
			AccountID:   a.ID,
			Scope:       a.Scope,
			Balance:     a.Balance,
			TotalEarned: a.TotalEarned,
		})
	}

	result := &LeaderboardPage{
		Scope:      input.Scope,
		Entries:    entries,
		TotalCount: total,
		TotalPages: domain.TotalPages(total, limit),
		Page:       page,
		Limit:      limit,
	}

	uc.storeLeaderboard(ctx, cacheKey, result)

	return result, nil
}

func (uc *CoinsUseCase) cachedLeaderboard(ctx context.Context, key string) *LeaderboardPage {
	if uc.cache == nil {
		return nil
	}

	data, err := uc.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			log.Debug().Err(err).Str("key", key).Msg("leaderboard cache read failed")
		}

		return nil
	}

	var page LeaderboardPage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil
	}

	return &page
}

func (uc *CoinsUseCase) storeLeaderboard(ctx context.Context, key string, page *LeaderboardPage) {
	if uc.cache == nil {
		return
	}

	data, err := json.Marshal(page)
	if err != nil {
		return
	}

	if err := uc.cache.Set(ctx, key, data, uc.cacheTTL); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("leaderboard cache write failed")
	}
}

// GetStats aggregates an account's history.
func (uc *CoinsUseCase) GetStats(ctx context.Context, accountID string) (*domain.AccountStats, error) {
	account, err := uc.balances.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	earned, err := uc.log.Sum(ctx, accountID, domain.SumPredicate{Sign: domain.SignPositive})
	if err != nil {
		return nil, storageError("stats", err)
	}

	spent, err := uc.log.Sum(ctx, accountID, domain.SumPredicate{Sign: domain.SignNegative})
	if err != nil {
		return nil, storageError("stats", err)
	}

	counts, err := uc.entryRepo.KindCounts(ctx, accountID)
	if err != nil {
		return nil, storageError("stats", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &domain.AccountStats{
		AccountID:        accountID,
		TotalEarned:      earned,
		TotalSpent:       -spent,
		TransactionCount: total,
		MostFrequentKind: mostFrequentKind(counts),
		DailyStreak:      account.DailyStreak,
	}, nil
}

// GetGlobalStats aggregates the whole economy.
func (uc *CoinsUseCase) GetGlobalStats(ctx context.Context) (*domain.GlobalStats, error) {
	totals, err := uc.ledgerRepo.Totals(ctx)
	if err != nil {
		return nil, storageError("global_stats", err)
	}

	average := decimal.Zero
	if totals.AccountCount > 0 {
		average = decimal.NewFromInt(totals.TotalBalance).
			Div(decimal.NewFromInt(totals.AccountCount)).
			Round(2)
	}

	return &domain.GlobalStats{
		TotalAccounts:      totals.AccountCount,
		CoinsInCirculation: totals.TotalBalance,
		TotalIssued:        totals.TotalIssued,
		TotalTransactions:  totals.EntryCount,
		AverageBalance:     average,
	}, nil
}

// ListOffers returns the redeemable catalog.
func (uc *CoinsUseCase) ListOffers(ctx context.Context) ([]*domain.Offer, error) {
	offers, err := uc.catalog.List(ctx)
	if err != nil {
		return nil, storageError("list_offers", err)
	}

	return offers, nil
}

// GetOffer returns a single catalog offer.
func (uc *CoinsUseCase) GetOffer(ctx context.Context, id string) (*domain.Offer, error) {
	offer, err := uc.catalog.Get(ctx, id)
	if err != nil {
		return nil, storageError("get_offer", err)
	}

	return offer, nil
}

// mostFrequentKind picks the kind with the highest count, ties broken by name.
func mostFrequentKind(counts map[domain.EntryKind]int64) domain.EntryKind {
	kinds := make([]domain.EntryKind, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}

	sort.Slice(kinds, func(i, j int) bool {
		if counts[kinds[i]] != counts[kinds[j]] {
			return counts[kinds[i]] > counts[kinds[j]]
		}
		return kinds[i] < kinds[j]
	})

	if len(kinds) == 0 {
		return ""
	}

	return kinds[0]
}

func defaultActivityDescription(kind domain.EntryKind) string {
	switch kind {
	case domain.KindEventCreate:
		return "Created an event"
	case domain.KindEventAttend:
		return "Attended an event"
	case domain.KindGroupCreate:
		return "Created a group"
	case domain.KindMessageSend:
		return "Sent a message"
	case domain.KindDailyLogin:
		return "Daily login"
	case domain.KindProfileComplete:
		return "Completed profile"
	case domain.KindReferral:
		return "Referred a friend"
	default:
		return string(kind)
	}
}
