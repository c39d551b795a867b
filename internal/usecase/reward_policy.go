package usecase

import (
	"context"
	"time"

	"github.com/campuscoins/coinledger/internal/domain"
)

// RewardPolicy resolves activity amounts and enforces the once-per-day caps.
type RewardPolicy struct {
	table     domain.RewardTable
	entryRepo EntryRepository
	location  *time.Location
}

// NewRewardPolicy creates a RewardPolicy. Calendar days are evaluated in loc (UTC when nil).
func NewRewardPolicy(entryRepo EntryRepository, table domain.RewardTable, loc *time.Location) *RewardPolicy {
	if table == nil {
		table = domain.DefaultRewardTable()
	}

	if loc == nil {
		loc = time.UTC
	}

	return &RewardPolicy{
		table:     table,
		entryRepo: entryRepo,
		location:  loc,
	}
}

// AmountFor returns the coins earned by kind, 0 for kinds that earn nothing.
func (p *RewardPolicy) AmountFor(kind domain.EntryKind) int64 {
	return p.table.AmountFor(kind)
}

// IsCapped reports whether kind may be recorded only once per calendar day.
func (p *RewardPolicy) IsCapped(kind domain.EntryKind) bool {
	return domain.IsCapped(kind)
}

// Location returns the reference time zone for calendar days.
func (p *RewardPolicy) Location() *time.Location {
	return p.location
}

// Day returns the calendar day containing now.
func (p *RewardPolicy) Day(now time.Time) time.Time {
	return domain.CalendarDay(now, p.location)
}

// CheckEligible fails with domain.ErrAlreadyClaimedToday when a capped kind was
// already recorded today. It must run inside tx after the account is locked.
func (p *RewardPolicy) CheckEligible(ctx context.Context, tx Transaction, accountID string, kind domain.EntryKind, now time.Time) error {
	if !p.IsCapped(kind) {
		return nil
	}

	from, to := domain.DayBounds(p.Day(now), p.location)

	exists, err := p.entryRepo.ExistsInRange(ctx, tx, accountID, kind, from, to)
	if err != nil {
		return err
	}

	if exists {
		return domain.ErrAlreadyClaimedToday
	}

	return nil
}
