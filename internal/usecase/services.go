package usecase

import (
	"time"

	"github.com/campuscoins/coinledger/internal/domain"
)

// Stores are the persistence ports shared by every service.
type Stores struct {
	TxManager   TransactionManager
	AccountRepo AccountRepository
	EntryRepo   EntryRepository
	LedgerRepo  LedgerRepository
	OutboxRepo  OutboxRepository
}

// ServiceOptions configure the service graph. WelcomeBonus is used as given; nil
// collaborators fall back to their defaults.
type ServiceOptions struct {
	Catalog      OfferCatalog
	IDGen        IDGenerator
	Codes        CodeGenerator
	Clock        Clock
	Location     *time.Location
	Rewards      domain.RewardTable
	WelcomeBonus int64
	Cache        Cache
	CacheTTL     time.Duration
	Retrier      Retrier
	Metrics      MetricsRecorder
}

// Services is the assembled application layer.
type Services struct {
	Coins          *CoinsUseCase
	Reconciliation *ReconciliationUseCase
}

// NewServices builds the coin services on top of stores.
func NewServices(stores Stores, opts ServiceOptions) *Services {
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}

	txLog := NewTransactionLog(stores.EntryRepo)
	policy := NewRewardPolicy(stores.EntryRepo, opts.Rewards, opts.Location)

	balances := NewBalanceStore(BalanceStoreConfig{
		TxManager:    stores.TxManager,
		AccountRepo:  stores.AccountRepo,
		Log:          txLog,
		Policy:       policy,
		OutboxRepo:   stores.OutboxRepo,
		IDGen:        opts.IDGen,
		Clock:        opts.Clock,
		WelcomeBonus: opts.WelcomeBonus,
	})

	coins := NewCoinsUseCase(CoinsConfig{
		Balances:    balances,
		Log:         txLog,
		Policy:      policy,
		Bonus:       NewDailyBonusCalculator(stores.TxManager, stores.AccountRepo, balances, policy, opts.Clock),
		Transfers:   NewTransferService(stores.TxManager, stores.AccountRepo, balances, opts.IDGen, opts.Clock),
		Redemptions: NewRedemptionService(stores.TxManager, stores.AccountRepo, balances, opts.Catalog, opts.Codes, opts.Clock),
		AccountRepo: stores.AccountRepo,
		EntryRepo:   stores.EntryRepo,
		LedgerRepo:  stores.LedgerRepo,
		Catalog:     opts.Catalog,
		Cache:       opts.Cache,
		CacheTTL:    opts.CacheTTL,
		Retrier:     opts.Retrier,
		Metrics:     opts.Metrics,
	})

	return &Services{
		Coins:          coins,
		Reconciliation: NewReconciliationUseCase(stores.AccountRepo, stores.EntryRepo, stores.LedgerRepo),
	}
}
