package domain

import (
	"fmt"
	"math"
	"time"
)

// Account holds a member's coin balance and the counters maintained alongside it.
type Account struct {
	ID            string
	Scope         string
	Balance       int64
	TotalEarned   int64
	TotalSpent    int64
	DailyStreak   int
	LastBonusDate *time.Time
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ValidateDelta checks that amount can be applied without the balance going negative.
func (a *Account) ValidateDelta(amount int64) error {
	if amount == 0 {
		return fmt.Errorf("%w: amount must be non-zero", ErrValidation)
	}

	if amount > 0 && a.Balance > math.MaxInt64-amount {
		return fmt.Errorf("%w: balance overflow", ErrValidation)
	}

	if amount < 0 && a.Balance+amount < 0 {
		return &InsufficientBalanceError{
			AccountID: a.ID,
			Required:  -amount,
			Available: a.Balance,
		}
	}

	return nil
}

// ApplyDelta moves the balance by amount and updates the earned/spent totals.
func (a *Account) ApplyDelta(amount int64, at time.Time) {
	a.Balance += amount
	if amount > 0 {
		a.TotalEarned += amount
	} else {
		a.TotalSpent += -amount
	}

	a.Version++
	a.UpdatedAt = at
}

// Clone returns a copy that does not share the LastBonusDate pointer.
func (a *Account) Clone() *Account {
	c := *a
	if a.LastBonusDate != nil {
		d := *a.LastBonusDate
		c.LastBonusDate = &d
	}

	return &c
}
