package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campuscoins/coinledger/internal/adapter/repository/memory"
	"github.com/campuscoins/coinledger/internal/domain"
	"github.com/campuscoins/coinledger/internal/usecase"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type seqIDs struct {
	prefix string
	n      atomic.Int64
}

func (g *seqIDs) Generate() string {
	return fmt.Sprintf("%s-%d", g.prefix, g.n.Add(1))
}

type staticCatalog map[string]*domain.Offer

func (c staticCatalog) Get(_ context.Context, id string) (*domain.Offer, error) {
	offer, ok := c[id]
	if !ok {
		return nil, domain.ErrOfferNotFound
	}
	return offer, nil
}

func (c staticCatalog) List(_ context.Context) ([]*domain.Offer, error) {
	out := make([]*domain.Offer, 0, len(c))
	for _, o := range c {
		out = append(out, o)
	}
	return out, nil
}

func testCatalog() staticCatalog {
	return staticCatalog{
		"1": {ID: "1", Title: "Coffee Shop Discount", CoinCost: 50, PartnerName: "Campus Coffee", Category: "food", Active: true},
		"2": {ID: "2", Title: "Bookstore Voucher", CoinCost: 100, PartnerName: "Campus Books", Category: "books", Active: true},
		"9": {ID: "9", Title: "Retired Offer", CoinCost: 10, Active: false},
	}
}

type harnessOptions struct {
	lockTimeout  time.Duration
	welcomeBonus int64
	location     *time.Location
	cache        usecase.Cache
	retrier      usecase.Retrier
	metrics      usecase.MetricsRecorder
}

type harness struct {
	uc        *usecase.CoinsUseCase
	recon     *usecase.ReconciliationUseCase
	clock     *fakeClock
	txManager *memory.TxManager
	accounts  *memory.AccountRepository
	entries   *memory.EntryRepository
	outbox    *memory.OutboxRepository
}

// Monday 2024-03-04 10:00 UTC.
var testStart = time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)

func newHarness(t *testing.T, opts harnessOptions) *harness {
	t.Helper()

	if opts.welcomeBonus == 0 {
		opts.welcomeBonus = domain.WelcomeBonus
	}

	store := memory.NewStore(opts.lockTimeout)
	txManager := memory.NewTxManager(store)
	accountRepo := memory.NewAccountRepository(store)
	entryRepo := memory.NewEntryRepository(store)
	ledgerRepo := memory.NewLedgerRepository(store)
	outboxRepo := memory.NewOutboxRepository(store)

	clock := newFakeClock(testStart)
	ids := &seqIDs{prefix: "id"}
	txLog := usecase.NewTransactionLog(entryRepo)
	policy := usecase.NewRewardPolicy(entryRepo, domain.DefaultRewardTable(), opts.location)

	balances := usecase.NewBalanceStore(usecase.BalanceStoreConfig{
		TxManager:    txManager,
		AccountRepo:  accountRepo,
		Log:          txLog,
		Policy:       policy,
		OutboxRepo:   outboxRepo,
		IDGen:        ids,
		Clock:        clock,
		WelcomeBonus: opts.welcomeBonus,
	})

	uc := usecase.NewCoinsUseCase(usecase.CoinsConfig{
		Balances:    balances,
		Log:         txLog,
		Policy:      policy,
		Bonus:       usecase.NewDailyBonusCalculator(txManager, accountRepo, balances, policy, clock),
		Transfers:   usecase.NewTransferService(txManager, accountRepo, balances, ids, clock),
		Redemptions: usecase.NewRedemptionService(txManager, accountRepo, balances, testCatalog(), &seqIDs{prefix: "RDM"}, clock),
		AccountRepo: accountRepo,
		EntryRepo:   entryRepo,
		LedgerRepo:  ledgerRepo,
		Catalog:     testCatalog(),
		Cache:       opts.cache,
		Retrier:     opts.retrier,
		Metrics:     opts.metrics,
	})

	return &harness{
		uc:        uc,
		recon:     usecase.NewReconciliationUseCase(accountRepo, entryRepo, ledgerRepo),
		clock:     clock,
		txManager: txManager,
		accounts:  accountRepo,
		entries:   entryRepo,
		outbox:    outboxRepo,
	}
}

func (h *harness) open(t *testing.T, id string) *domain.Account {
	t.Helper()

	account, err := h.uc.OpenAccount(context.Background(), usecase.OpenAccountInput{AccountID: id, Scope: "campus-a"})
	require.NoError(t, err)

	return account
}

func (h *harness) balance(t *testing.T, id string) int64 {
	t.Helper()

	b, err := h.uc.GetBalance(context.Background(), id)
	require.NoError(t, err)

	return b.Balance
}

func (h *harness) entryCount(t *testing.T, id string) int64 {
	t.Helper()

	n, err := h.entries.Count(context.Background(), id, domain.EntryFilter{})
	require.NoError(t, err)

	return n
}

func (h *harness) assertConsistent(t *testing.T) {
	t.Helper()

	report, err := h.recon.CheckLedgerConsistency(context.Background())
	require.NoError(t, err)
	require.True(t, report.Consistent, "ledger inconsistent: %+v", report)
}
