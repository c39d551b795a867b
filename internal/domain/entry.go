package domain

import (
	"fmt"
	"time"
)

// EntryKind classifies a ledger entry. The set is closed.
type EntryKind string

const (
	KindWelcomeBonus    EntryKind = "welcome_bonus"
	KindEventCreate     EntryKind = "event_create"
	KindEventAttend     EntryKind = "event_attend"
	KindGroupCreate     EntryKind = "group_create"
	KindMessageSend     EntryKind = "message_send"
	KindDailyLogin      EntryKind = "daily_login"
	KindProfileComplete EntryKind = "profile_complete"
	KindDailyBonus      EntryKind = "daily_bonus"
	KindReferral        EntryKind = "referral"
	KindTransferOut     EntryKind = "transfer_out"
	KindTransferIn      EntryKind = "transfer_in"
	KindRedemption      EntryKind = "redemption"
	KindAdminAdjustment EntryKind = "admin_adjustment"
)

var entryKinds = map[EntryKind]bool{
	KindWelcomeBonus:    true,
	KindEventCreate:     true,
	KindEventAttend:     true,
	KindGroupCreate:     true,
	KindMessageSend:     true,
	KindDailyLogin:      true,
	KindProfileComplete: true,
	KindDailyBonus:      true,
	KindReferral:        true,
	KindTransferOut:     true,
	KindTransferIn:      true,
	KindRedemption:      true,
	KindAdminAdjustment: true,
}

// activityKinds are the kinds an external activity hook may earn.
var activityKinds = map[EntryKind]bool{
	KindEventCreate:     true,
	KindEventAttend:     true,
	KindGroupCreate:     true,
	KindMessageSend:     true,
	KindDailyLogin:      true,
	KindProfileComplete: true,
	KindReferral:        true,
}

// IsValid reports whether k is a member of the closed kind set.
func (k EntryKind) IsValid() bool {
	return entryKinds[k]
}

// ParseEntryKind converts s into an EntryKind.
func ParseEntryKind(s string) (EntryKind, error) {
	k := EntryKind(s)
	if !k.IsValid() {
		return "", fmt.Errorf("%w: unknown entry kind %q", ErrValidation, s)
	}

	return k, nil
}

// ParseActivity converts s into an earnable activity kind.
func ParseActivity(s string) (EntryKind, error) {
	k := EntryKind(s)
	if !activityKinds[k] {
		return "", fmt.Errorf("%w: %q", ErrInvalidActivityKind, s)
	}

	return k, nil
}

// ActivityKinds lists the earnable activity kinds.
func ActivityKinds() []EntryKind {
	return []EntryKind{
		KindEventCreate,
		KindEventAttend,
		KindGroupCreate,
		KindMessageSend,
		KindDailyLogin,
		KindProfileComplete,
		KindReferral,
	}
}

// LedgerEntry is one immutable record of a balance change.
type LedgerEntry struct {
	ID           int64
	AccountID    string
	Amount       int64
	Kind         EntryKind
	Description  string
	ReferenceID  *string
	BalanceAfter int64
	// ClaimDay is set for once-per-day kinds and is unique per account and kind.
	ClaimDay  *time.Time
	CreatedAt time.Time
}

// EntryFilter narrows a history query. Zero fields match everything.
type EntryFilter struct {
	Kind     EntryKind
	DateFrom *time.Time
	DateTo   *time.Time
}

// Matches reports whether e passes the filter.
func (f EntryFilter) Matches(e *LedgerEntry) bool {
	if f.Kind != "" && e.Kind != f.Kind {
		return false
	}

	if f.DateFrom != nil && e.CreatedAt.Before(*f.DateFrom) {
		return false
	}

	if f.DateTo != nil && e.CreatedAt.After(*f.DateTo) {
		return false
	}

	return true
}

// Sign selects entries by the sign of their amount.
type Sign int

const (
	SignAny Sign = iota
	SignPositive
	SignNegative
)

// SumPredicate selects the entries aggregated by a sum query.
type SumPredicate struct {
	Kind EntryKind
	Sign Sign
}

// Matches reports whether e is selected by the predicate.
func (p SumPredicate) Matches(e *LedgerEntry) bool {
	if p.Kind != "" && e.Kind != p.Kind {
		return false
	}

	switch p.Sign {
	case SignPositive:
		return e.Amount > 0
	case SignNegative:
		return e.Amount < 0
	default:
		return true
	}
}
