package domain

import "time"

// Daily bonus schedule: base + min(streak-1, DailyBonusMaxSteps) * DailyBonusStep.
const (
	DailyBonusBase     int64 = 10
	DailyBonusStep     int64 = 5
	DailyBonusMaxSteps       = 7
)

// WelcomeBonus is credited when an account is opened.
const WelcomeBonus int64 = 100

// RewardTable maps earnable kinds to their fixed coin amount.
type RewardTable map[EntryKind]int64

// DefaultRewardTable returns the standard activity rates.
func DefaultRewardTable() RewardTable {
	return RewardTable{
		KindEventCreate:     50,
		KindEventAttend:     25,
		KindGroupCreate:     30,
		KindMessageSend:     1,
		KindDailyLogin:      10,
		KindProfileComplete: 100,
		KindReferral:        200,
	}
}

// AmountFor returns the reward for kind, 0 when the kind earns nothing.
func (t RewardTable) AmountFor(kind EntryKind) int64 {
	return t[kind]
}

// cappedKinds may be recorded at most once per account per calendar day.
var cappedKinds = map[EntryKind]bool{
	KindDailyLogin:      true,
	KindProfileComplete: true,
	KindDailyBonus:      true,
}

// IsCapped reports whether kind is limited to once per calendar day.
func IsCapped(kind EntryKind) bool {
	return cappedKinds[kind]
}

// DailyBonusAmount returns the bonus for the given streak length.
func DailyBonusAmount(streak int) int64 {
	if streak < 1 {
		streak = 1
	}

	steps := min(streak-1, DailyBonusMaxSteps)

	return DailyBonusBase + int64(steps)*DailyBonusStep
}

// NextStreak computes the streak after claiming on today, given the last claim day.
func NextStreak(lastClaim *time.Time, current int, today time.Time) int {
	if lastClaim != nil && lastClaim.AddDate(0, 0, 1).Equal(today) {
		return current + 1
	}

	return 1
}

// CalendarDay returns the calendar date of t in loc, encoded as midnight UTC.
func CalendarDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayBounds returns the [start, end) instants of a calendar day in loc.
func DayBounds(day time.Time, loc *time.Location) (time.Time, time.Time) {
	y, m, d := day.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)

	return start, start.AddDate(0, 0, 1)
}
