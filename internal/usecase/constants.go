package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a storage transaction
	// This prevents long-running transactions from holding account locks
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// DefaultLeaderboardCacheTTL bounds how stale a cached leaderboard page may be
	DefaultLeaderboardCacheTTL = 30 * time.Second
)

// Operation names used for metrics and logs.
const (
	OpOpenAccount = "open_account"
	OpEarn        = "earn"
	OpDailyBonus  = "daily_bonus"
	OpTransfer    = "transfer"
	OpRedeem      = "redeem"
	OpAdjust      = "adjust"

	opApplyDelta = "apply_delta"
)
