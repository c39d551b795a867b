package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/campuscoins/coinledger/internal/domain"
)

// DailyBonusCalculator grants the escalating once-per-day bonus.
type DailyBonusCalculator struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	balances    *BalanceStore
	policy      *RewardPolicy
	clock       Clock
}

// NewDailyBonusCalculator creates a new DailyBonusCalculator.
func NewDailyBonusCalculator(
	txManager TransactionManager,
	accountRepo AccountRepository,
	balances *BalanceStore,
	policy *RewardPolicy,
	clock Clock,
) *DailyBonusCalculator {
	if clock == nil {
		clock = SystemClock{}
	}

	return &DailyBonusCalculator{
		txManager:   txManager,
		accountRepo: accountRepo,
		balances:    balances,
		policy:      policy,
		clock:       clock,
	}
}

// BonusClaim is the result of a successful claim.
type BonusClaim struct {
	Amount int64
	Streak int
	Entry  *domain.LedgerEntry
}

// Claim grants today's bonus. The streak is derived from the locked account row and
// written back in the same transaction as the balance change.
func (c *DailyBonusCalculator) Claim(ctx context.Context, accountID string) (*BonusClaim, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := c.txManager.Begin(ctx)
	if err != nil {
		return nil, storageError(OpDailyBonus, err)
	}
	defer tx.Rollback(ctx)

	account, err := c.accountRepo.GetByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		return nil, storageError(OpDailyBonus, err)
	}

	now := c.clock.Now()
	today := c.policy.Day(now)

	if account.LastBonusDate != nil && account.LastBonusDate.Equal(today) {
		return nil, domain.ErrAlreadyClaimed
	}

	streak := domain.NextStreak(account.LastBonusDate, account.DailyStreak, today)
	amount := domain.DailyBonusAmount(streak)

	account.DailyStreak = streak
	account.LastBonusDate = &today

	entry, err := c.balances.applyLocked(ctx, tx, account, DeltaInput{
		AccountID:   account.ID,
		Amount:      amount,
		Kind:        domain.KindDailyBonus,
		Description: fmt.Sprintf("Daily bonus (%d days streak)", streak),
	}, now)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyClaimedToday) {
			return nil, domain.ErrAlreadyClaimed
		}

		return nil, storageError(OpDailyBonus, err)
	}

	payload := domain.EntryPayload(entry)
	payload["streak"] = streak

	err = c.balances.recordEvent(ctx, tx, domain.AggregateTypeAccount, account.ID, domain.EventTypeBonusClaimed, payload, now)
	if err != nil {
		return nil, storageError(OpDailyBonus, err)
	}

	if err := tx.Commit(ctx); err != nil {
		if errors.Is(err, domain.ErrAlreadyClaimedToday) {
			return nil, domain.ErrAlreadyClaimed
		}

		return nil, storageError(OpDailyBonus, err)
	}

	return &BonusClaim{
		Amount: amount,
		Streak: streak,
		Entry:  entry,
	}, nil
}
