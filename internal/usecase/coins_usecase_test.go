package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/campuscoins/coinledger/internal/domain"
	"github.com/campuscoins/coinledger/internal/usecase"
	"github.com/campuscoins/coinledger/internal/usecase/mocks"
)

func TestCoinsUseCase_EarnRedeemScenario(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	ctx := context.Background()

	account := h.open(t, "alice")
	assert.Equal(t, int64(100), account.Balance)

	entry, err := h.uc.EarnCoins(ctx, usecase.EarnInput{AccountID: "alice", Activity: "event_create"})
	require.NoError(t, err)
	assert.Equal(t, int64(50), entry.Amount)
	assert.Equal(t, int64(150), entry.BalanceAfter)

	redemption, err := h.uc.RedeemOffer(ctx, usecase.RedeemInput{AccountID: "alice", OfferID: "1", UnitCost: 80, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(80), redemption.TotalCost)
	assert.Equal(t, int64(70), redemption.Entry.BalanceAfter)
	assert.NotEmpty(t, redemption.Code)

	_, err = h.uc.RedeemOffer(ctx, usecase.RedeemInput{AccountID: "alice", OfferID: "2", Quantity: 1})
	var insufficient *domain.InsufficientBalanceError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(100), insufficient.Required)
	assert.Equal(t, int64(70), insufficient.Available)

	assert.Equal(t, int64(70), h.balance(t, "alice"))
	assert.Equal(t, int64(3), h.entryCount(t, "alice"))
	h.assertConsistent(t)
}

func TestCoinsUseCase_OpenAccount(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	ctx := context.Background()

	h.open(t, "alice")

	_, err := h.uc.OpenAccount(ctx, usecase.OpenAccountInput{AccountID: "alice"})
	assert.ErrorIs(t, err, domain.ErrAccountExists)

	_, err = h.uc.OpenAccount(ctx, usecase.OpenAccountInput{AccountID: ""})
	assert.ErrorIs(t, err, domain.ErrValidation)

	page, err := h.uc.GetTransactions(ctx, usecase.TransactionsInput{AccountID: "alice"})
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)
	assert.Equal(t, domain.KindWelcomeBonus, page.Entries[0].Kind)

	events, err := h.outbox.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventTypeAccountOpened, events[0].EventType)
}

func TestCoinsUseCase_EarnCoins(t *testing.T) {
	tests := []struct {
		name      string
		account   string
		activity  string
		wantErr   error
		wantDelta int64
	}{
		{name: "event attend", account: "alice", activity: "event_attend", wantDelta: 25},
		{name: "referral", account: "alice", activity: "referral", wantDelta: 200},
		{name: "unknown activity", account: "alice", activity: "spam", wantErr: domain.ErrInvalidActivityKind},
		{name: "non activity kind", account: "alice", activity: "daily_bonus", wantErr: domain.ErrInvalidActivityKind},
		{name: "missing account", account: "ghost", activity: "event_attend", wantErr: domain.ErrAccountNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, harnessOptions{})
			h.open(t, "alice")

			_, err := h.uc.EarnCoins(context.Background(), usecase.EarnInput{AccountID: tt.account, Activity: tt.activity})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, int64(100), h.balance(t, "alice"))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, 100+tt.wantDelta, h.balance(t, "alice"))
		})
	}
}

func TestCoinsUseCase_CappedActivityOncePerDay(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	ctx := context.Background()
	h.open(t, "alice")

	_, err := h.uc.EarnCoins(ctx, usecase.EarnInput{AccountID: "alice", Activity: "daily_login"})
	require.NoError(t, err)

	h.clock.Advance(3 * time.Hour)
	_, err = h.uc.EarnCoins(ctx, usecase.EarnInput{AccountID: "alice", Activity: "daily_login"})
	assert.ErrorIs(t, err, domain.ErrAlreadyClaimedToday)
	assert.Equal(t, int64(110), h.balance(t, "alice"))

	h.clock.Advance(24 * time.Hour)
	_, err = h.uc.EarnCoins(ctx, usecase.EarnInput{AccountID: "alice", Activity: "daily_login"})
	require.NoError(t, err)
	assert.Equal(t, int64(120), h.balance(t, "alice"))
}

func TestCoinsUseCase_CappedActivityConcurrent(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	h.open(t, "alice")

	const workers = 10
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for iter := 0; iter < workers; iter++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.uc.EarnCoins(context.Background(), usecase.EarnInput{AccountID: "alice", Activity: "profile_complete"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, claimed int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrAlreadyClaimedToday):
			claimed++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, claimed)
	assert.Equal(t, int64(200), h.balance(t, "alice"))
}

func TestCoinsUseCase_ConcurrentEarnsAreNotLost(t *testing.T) {
	h := newHarness(t, harnessOptions{lockTimeout: 5 * time.Second})
	h.open(t, "alice")

	const workers = 50
	var wg sync.WaitGroup
	for iter := 0; iter < workers; iter++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := h.uc.EarnCoins(context.Background(), usecase.EarnInput{AccountID: "alice", Activity: "message_send"}); err != nil {
				t.Errorf("earn failed: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(100+workers), h.balance(t, "alice"))
	assert.Equal(t, int64(1+workers), h.entryCount(t, "alice"))
	h.assertConsistent(t)
}

func TestCoinsUseCase_LockTimeoutLeavesNoTrace(t *testing.T) {
	h := newHarness(t, harnessOptions{lockTimeout: 50 * time.Millisecond})
	ctx := context.Background()
	h.open(t, "alice")

	tx, err := h.txManager.Begin(ctx)
	require.NoError(t, err)
	_, err = h.accounts.GetByIDForUpdate(ctx, tx, "alice")
	require.NoError(t, err)

	_, err = h.uc.EarnCoins(ctx, usecase.EarnInput{AccountID: "alice", Activity: "event_create"})
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)

	require.NoError(t, tx.Rollback(ctx))

	assert.Equal(t, int64(100), h.balance(t, "alice"))
	assert.Equal(t, int64(1), h.entryCount(t, "alice"))
}

func TestCoinsUseCase_EarnUsesRetrier(t *testing.T) {
	ctrl := gomock.NewController(t)
	retrier := mocks.NewMockRetrier(ctrl)
	retrier.EXPECT().
		Retry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, op func() error) error {
			return op()
		})

	h := newHarness(t, harnessOptions{retrier: retrier})
	h.open(t, "alice")

	_, err := h.uc.EarnCoins(context.Background(), usecase.EarnInput{AccountID: "alice", Activity: "group_create"})
	require.NoError(t, err)
	assert.Equal(t, int64(130), h.balance(t, "alice"))
}

func TestCoinsUseCase_EarnRetryCancelledMapsToStorageError(t *testing.T) {
	ctrl := gomock.NewController(t)
	retrier := mocks.NewMockRetrier(ctrl)
	retrier.EXPECT().
		Retry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ func() error) error {
			return ctx.Err()
		})

	h := newHarness(t, harnessOptions{retrier: retrier})
	h.open(t, "alice")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.uc.EarnCoins(ctx, usecase.EarnInput{AccountID: "alice", Activity: "group_create"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.NotErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(100), h.balance(t, "alice"))
}

func TestCoinsUseCase_MetricsRecorded(t *testing.T) {
	ctrl := gomock.NewController(t)
	metrics := mocks.NewMockMetricsRecorder(ctrl)
	metrics.EXPECT().ObserveOperation(gomock.Any(), gomock.Any()).AnyTimes()
	metrics.EXPECT().CoinsEarned(domain.KindWelcomeBonus, int64(100))
	metrics.EXPECT().CoinsEarned(domain.KindEventAttend, int64(25))
	metrics.EXPECT().OperationFailed(usecase.OpEarn, gomock.Any())

	h := newHarness(t, harnessOptions{metrics: metrics})
	h.open(t, "alice")

	_, err := h.uc.EarnCoins(context.Background(), usecase.EarnInput{AccountID: "alice", Activity: "event_attend"})
	require.NoError(t, err)

	_, err = h.uc.EarnCoins(context.Background(), usecase.EarnInput{AccountID: "ghost", Activity: "event_attend"})
	require.Error(t, err)
}

func TestCoinsUseCase_AdjustBalance(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	ctx := context.Background()
	h.open(t, "alice")

	_, err := h.uc.AdjustBalance(ctx, usecase.AdjustInput{AccountID: "alice", Amount: -30})
	assert.ErrorIs(t, err, domain.ErrValidation)

	entry, err := h.uc.AdjustBalance(ctx, usecase.AdjustInput{AccountID: "alice", Amount: -30, Description: "chargeback"})
	require.NoError(t, err)
	assert.Equal(t, domain.KindAdminAdjustment, entry.Kind)
	assert.Equal(t, int64(70), entry.BalanceAfter)

	_, err = h.uc.AdjustBalance(ctx, usecase.AdjustInput{AccountID: "alice", Amount: -71, Description: "too much"})
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	h.assertConsistent(t)
}

func TestCoinsUseCase_RedeemOffer(t *testing.T) {
	tests := []struct {
		name    string
		input   usecase.RedeemInput
		wantErr error
		want    int64
	}{
		{name: "catalog price", input: usecase.RedeemInput{OfferID: "1", Quantity: 2}, want: 0},
		{name: "explicit unit cost", input: usecase.RedeemInput{OfferID: "1", UnitCost: 30, Quantity: 3}, want: 10},
		{name: "unknown offer", input: usecase.RedeemInput{OfferID: "404", Quantity: 1}, wantErr: domain.ErrOfferNotFound},
		{name: "inactive offer", input: usecase.RedeemInput{OfferID: "9", Quantity: 1}, wantErr: domain.ErrOfferInactive},
		{name: "zero quantity", input: usecase.RedeemInput{OfferID: "1", Quantity: 0}, wantErr: domain.ErrValidation},
		{name: "too expensive", input: usecase.RedeemInput{OfferID: "2", Quantity: 2}, wantErr: domain.ErrInsufficientBalance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, harnessOptions{})
			h.open(t, "alice")

			tt.input.AccountID = "alice"
			_, err := h.uc.RedeemOffer(context.Background(), tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, int64(100), h.balance(t, "alice"))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, h.balance(t, "alice"))

			history, err := h.uc.GetRedemptions(context.Background(), "alice", 1, 10)
			require.NoError(t, err)
			require.Len(t, history.Entries, 1)
			require.NotNil(t, history.Entries[0].ReferenceID)
			assert.Equal(t, tt.input.OfferID, *history.Entries[0].ReferenceID)
		})
	}
}

func TestCoinsUseCase_GetTransactionsFilters(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	ctx := context.Background()
	h.open(t, "alice")

	for iter := 0; iter < 3; iter++ {
		h.clock.Advance(time.Hour)
		_, err := h.uc.EarnCoins(ctx, usecase.EarnInput{AccountID: "alice", Activity: "message_send"})
		require.NoError(t, err)
	}

	page, err := h.uc.GetTransactions(ctx, usecase.TransactionsInput{AccountID: "alice", Kind: "message_send", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Entries, 2)
	assert.Equal(t, int64(3), page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)
	assert.Greater(t, page.Entries[0].ID, page.Entries[1].ID)

	from := testStart.Add(90 * time.Minute)
	page, err = h.uc.GetTransactions(ctx, usecase.TransactionsInput{AccountID: "alice", DateFrom: &from})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalCount)

	_, err = h.uc.GetTransactions(ctx, usecase.TransactionsInput{AccountID: "alice", Kind: "bogus"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	before := testStart.Add(-time.Hour)
	_, err = h.uc.GetTransactions(ctx, usecase.TransactionsInput{AccountID: "alice", DateFrom: &from, DateTo: &before})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = h.uc.GetTransactions(ctx, usecase.TransactionsInput{AccountID: "ghost"})
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	entry, err := h.uc.GetTransaction(ctx, "alice", page.Entries[0].ID)
	require.NoError(t, err)
	assert.Equal(t, page.Entries[0].ID, entry.ID)

	_, err = h.uc.GetTransaction(ctx, "alice", 9999)
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
}

func TestCoinsUseCase_Stats(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	ctx := context.Background()
	h.open(t, "alice")
	h.open(t, "bob")

	for iter := 0; iter < 2; iter++ {
		_, err := h.uc.EarnCoins(ctx, usecase.EarnInput{AccountID: "alice", Activity: "message_send"})
		require.NoError(t, err)
	}
	_, err := h.uc.TransferCoins(ctx, usecase.TransferInput{SenderID: "alice", RecipientID: "bob", Amount: 40})
	require.NoError(t, err)

	stats, err := h.uc.GetStats(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(102), stats.TotalEarned)
	assert.Equal(t, int64(40), stats.TotalSpent)
	assert.Equal(t, int64(4), stats.TransactionCount)
	assert.Equal(t, domain.KindMessageSend, stats.MostFrequentKind)

	global, err := h.uc.GetGlobalStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), global.TotalAccounts)
	assert.Equal(t, int64(202), global.CoinsInCirculation)
	assert.True(t, decimal.NewFromInt(101).Equal(global.AverageBalance))
}

func TestCoinsUseCase_Leaderboard(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	ctx := context.Background()
	for _, id := range []string{"carol", "alice", "bob"} {
		h.open(t, id)
	}

	_, err := h.uc.EarnCoins(ctx, usecase.EarnInput{AccountID: "carol", Activity: "event_create"})
	require.NoError(t, err)

	board, err := h.uc.GetLeaderboard(ctx, usecase.LeaderboardInput{Page: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, board.Entries, 2)
	assert.Equal(t, "carol", board.Entries[0].AccountID)
	assert.Equal(t, 1, board.Entries[0].Rank)
	assert.Equal(t, "alice", board.Entries[1].AccountID)
	assert.Equal(t, int64(3), board.TotalCount)
	assert.Equal(t, 2, board.TotalPages)

	board, err = h.uc.GetLeaderboard(ctx, usecase.LeaderboardInput{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, board.Entries, 1)
	assert.Equal(t, 3, board.Entries[0].Rank)

	board, err = h.uc.GetLeaderboard(ctx, usecase.LeaderboardInput{Scope: "campus-b"})
	require.NoError(t, err)
	assert.Empty(t, board.Entries)
}

func TestCoinsUseCase_PageFarPastTheEnd(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	ctx := context.Background()
	h.open(t, "alice")

	history, err := h.uc.GetTransactions(ctx, usecase.TransactionsInput{AccountID: "alice", Page: math.MaxInt64 / 10, Limit: 20})
	require.NoError(t, err)
	assert.Empty(t, history.Entries)
	assert.Equal(t, int64(1), history.TotalCount)
	assert.Equal(t, 1, history.TotalPages)
	assert.LessOrEqual(t, int64(history.Page-1)*int64(history.Limit), int64(math.MaxInt32))

	board, err := h.uc.GetLeaderboard(ctx, usecase.LeaderboardInput{Page: math.MaxInt64 / 10, Limit: 20})
	require.NoError(t, err)
	assert.Empty(t, board.Entries)
	assert.Equal(t, int64(1), board.TotalCount)
	assert.LessOrEqual(t, int64(board.Page-1)*int64(board.Limit), int64(math.MaxInt32))
}

func TestCoinsUseCase_LeaderboardCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCache(ctrl)

	h := newHarness(t, harnessOptions{cache: cache})
	h.open(t, "alice")

	key := "leaderboard::1:20"
	var stored []byte

	gomock.InOrder(
		cache.EXPECT().Get(gomock.Any(), key).Return(nil, usecase.ErrCacheMiss),
		cache.EXPECT().
			Set(gomock.Any(), key, gomock.Any(), usecase.DefaultLeaderboardCacheTTL).
			DoAndReturn(func(_ context.Context, _ string, value []byte, _ time.Duration) error {
				stored = value
				return nil
			}),
		cache.EXPECT().Get(gomock.Any(), key).DoAndReturn(func(context.Context, string) ([]byte, error) {
			return stored, nil
		}),
	)

	first, err := h.uc.GetLeaderboard(context.Background(), usecase.LeaderboardInput{})
	require.NoError(t, err)

	second, err := h.uc.GetLeaderboard(context.Background(), usecase.LeaderboardInput{})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var decoded usecase.LeaderboardPage
	require.NoError(t, json.Unmarshal(stored, &decoded))
	assert.Equal(t, "alice", decoded.Entries[0].AccountID)
}

func TestCoinsUseCase_Offers(t *testing.T) {
	h := newHarness(t, harnessOptions{})

	offers, err := h.uc.ListOffers(context.Background())
	require.NoError(t, err)
	assert.Len(t, offers, 3)

	_, err = h.uc.GetOffer(context.Background(), "404")
	assert.ErrorIs(t, err, domain.ErrOfferNotFound)
}
