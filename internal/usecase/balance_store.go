package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/campuscoins/coinledger/internal/domain"
)

// BalanceStore owns account balances. Every change goes through applyLocked so the
// balance, totals and ledger entry are written under the same account lock.
type BalanceStore struct {
	txManager    TransactionManager
	accountRepo  AccountRepository
	log          *TransactionLog
	policy       *RewardPolicy
	outboxRepo   OutboxRepository
	idGen        IDGenerator
	clock        Clock
	welcomeBonus int64
}

// BalanceStoreConfig holds the dependencies of a BalanceStore.
type BalanceStoreConfig struct {
	TxManager    TransactionManager
	AccountRepo  AccountRepository
	Log          *TransactionLog
	Policy       *RewardPolicy
	OutboxRepo   OutboxRepository // optional
	IDGen        IDGenerator
	Clock        Clock
	WelcomeBonus int64
}

// NewBalanceStore creates a new BalanceStore.
func NewBalanceStore(cfg BalanceStoreConfig) *BalanceStore {
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}

	return &BalanceStore{
		txManager:    cfg.TxManager,
		accountRepo:  cfg.AccountRepo,
		log:          cfg.Log,
		policy:       cfg.Policy,
		outboxRepo:   cfg.OutboxRepo,
		idGen:        cfg.IDGen,
		clock:        cfg.Clock,
		welcomeBonus: cfg.WelcomeBonus,
	}
}

// DeltaInput represents a single signed balance change.
type DeltaInput struct {
	AccountID   string
	Amount      int64
	Kind        domain.EntryKind
	Description string
	ReferenceID *string
}

// Balance is the read model returned by GetBalance.
type Balance struct {
	AccountID     string
	Scope         string
	Balance       int64
	TotalEarned   int64
	TotalSpent    int64
	DailyStreak   int
	LastBonusDate *time.Time
}

// OpenAccountInput represents input for opening an account.
type OpenAccountInput struct {
	AccountID string
	Scope     string
}

// OpenAccount creates the account and credits the welcome bonus in one transaction.
func (s *BalanceStore) OpenAccount(ctx context.Context, input OpenAccountInput) (*domain.Account, error) {
	if err := domain.ValidateAccountID(input.AccountID); err != nil {
		return nil, err
	}

	if err := domain.ValidateScope(input.Scope); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, storageError(OpOpenAccount, err)
	}
	defer tx.Rollback(ctx)

	now := s.clock.Now()
	account := &domain.Account{
		ID:        input.AccountID,
		Scope:     input.Scope,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.accountRepo.CreateTx(ctx, tx, account); err != nil {
		return nil, storageError(OpOpenAccount, err)
	}

	if s.welcomeBonus > 0 {
		_, err := s.applyLocked(ctx, tx, account, DeltaInput{
			AccountID:   account.ID,
			Amount:      s.welcomeBonus,
			Kind:        domain.KindWelcomeBonus,
			Description: "Welcome bonus",
		}, now)
		if err != nil {
			return nil, storageError(OpOpenAccount, err)
		}
	}

	err = s.recordEvent(ctx, tx, domain.AggregateTypeAccount, account.ID, domain.EventTypeAccountOpened, map[string]any{
		"account_id": account.ID,
		"scope":      account.Scope,
		"balance":    account.Balance,
	}, now)
	if err != nil {
		return nil, storageError(OpOpenAccount, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storageError(OpOpenAccount, err)
	}

	return account, nil
}

// ApplyDelta atomically applies one signed change to an account and records it.
func (s *BalanceStore) ApplyDelta(ctx context.Context, input DeltaInput) (*domain.LedgerEntry, error) {
	if err := domain.ValidateDescription(input.Description); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, storageError(opApplyDelta, err)
	}
	defer tx.Rollback(ctx)

	account, err := s.accountRepo.GetByIDForUpdate(ctx, tx, input.AccountID)
	if err != nil {
		return nil, storageError(opApplyDelta, err)
	}

	now := s.clock.Now()

	entry, err := s.applyLocked(ctx, tx, account, input, now)
	if err != nil {
		return nil, storageError(opApplyDelta, err)
	}

	eventType := domain.EventTypeCoinsEarned
	if entry.Amount < 0 {
		eventType = domain.EventTypeCoinsSpent
	}

	err = s.recordEvent(ctx, tx, domain.AggregateTypeAccount, account.ID, eventType, domain.EntryPayload(entry), now)
	if err != nil {
		return nil, storageError(opApplyDelta, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storageError(opApplyDelta, err)
	}

	return entry, nil
}

// applyLocked performs check, update and append on an account already locked by tx.
// account is updated in place.
func (s *BalanceStore) applyLocked(
	ctx context.Context,
	tx Transaction,
	account *domain.Account,
	input DeltaInput,
	now time.Time,
) (*domain.LedgerEntry, error) {
	if !input.Kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown entry kind %q", domain.ErrValidation, input.Kind)
	}

	if err := account.ValidateDelta(input.Amount); err != nil {
		return nil, err
	}

	var claimDay *time.Time
	if s.policy.IsCapped(input.Kind) {
		if err := s.policy.CheckEligible(ctx, tx, account.ID, input.Kind, now); err != nil {
			return nil, err
		}

		day := s.policy.Day(now)
		claimDay = &day
	}

	account.ApplyDelta(input.Amount, now)

	if err := s.accountRepo.UpdateState(ctx, tx, account); err != nil {
		return nil, err
	}

	return s.log.Append(ctx, tx, &domain.LedgerEntry{
		AccountID:    account.ID,
		Amount:       input.Amount,
		Kind:         input.Kind,
		Description:  input.Description,
		ReferenceID:  input.ReferenceID,
		BalanceAfter: account.Balance,
		ClaimDay:     claimDay,
		CreatedAt:    now,
	})
}

func (s *BalanceStore) recordEvent(
	ctx context.Context,
	tx Transaction,
	aggregateType, aggregateID, eventType string,
	payload map[string]any,
	now time.Time,
) error {
	if s.outboxRepo == nil {
		return nil
	}

	event := domain.NewOutboxEvent(s.idGen.Generate(), aggregateType, aggregateID, eventType, payload, now)

	return s.outboxRepo.Create(ctx, tx, event)
}

// GetBalance returns the current balance and counters of an account.
func (s *BalanceStore) GetBalance(ctx context.Context, accountID string) (*Balance, error) {
	account, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return &Balance{
		AccountID:     account.ID,
		Scope:         account.Scope,
		Balance:       account.Balance,
		TotalEarned:   account.TotalEarned,
		TotalSpent:    account.TotalSpent,
		DailyStreak:   account.DailyStreak,
		LastBonusDate: account.LastBonusDate,
	}, nil
}

// GetAccount retrieves an account by ID.
func (s *BalanceStore) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, storageError("get_account", err)
	}

	return account, nil
}
