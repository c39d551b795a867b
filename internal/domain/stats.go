package domain

import (
	"github.com/shopspring/decimal"
)

// LeaderboardEntry is one ranked account.
type LeaderboardEntry struct {
	Rank        int
	AccountID   string
	Scope       string
	Balance     int64
	TotalEarned int64
}

// AccountStats aggregates an account's history.
type AccountStats struct {
	AccountID        string
	TotalEarned      int64
	TotalSpent       int64
	TransactionCount int64
	MostFrequentKind EntryKind
	DailyStreak      int
}

// GlobalStats aggregates the whole economy.
type GlobalStats struct {
	TotalAccounts      int64
	CoinsInCirculation int64
	TotalIssued        int64
	TotalTransactions  int64
	AverageBalance     decimal.Decimal
}

// LedgerTotals are ledger-wide sums used for consistency checks.
type LedgerTotals struct {
	TotalBalance     int64
	TotalEntryAmount int64
	TotalIssued      int64
	AccountCount     int64
	EntryCount       int64
}

// BalanceDiscrepancy describes an account whose stored balance disagrees with its log.
type BalanceDiscrepancy struct {
	AccountID       string
	RecordedBalance int64
	EntrySum        int64
}
