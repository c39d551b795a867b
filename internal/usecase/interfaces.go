package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/campuscoins/coinledger/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	// CreateTx inserts a new account. Returns domain.ErrAccountExists on a duplicate id.
	CreateTx(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	// GetByIDsForUpdate locks the accounts in ascending id order. Missing ids are skipped.
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	// UpdateState persists balance, totals, streak and bonus date of a locked account.
	UpdateState(ctx context.Context, tx Transaction, account *domain.Account) error
	// Leaderboard lists accounts by balance descending, then id ascending. Empty scope means all.
	Leaderboard(ctx context.Context, scope string, limit, offset int) ([]*domain.Account, error)
	Count(ctx context.Context, scope string) (int64, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// EntryRepository defines data access for the append-only ledger.
type EntryRepository interface {
	// Append persists entry and assigns its sequential ID.
	Append(ctx context.Context, tx Transaction, entry *domain.LedgerEntry) error
	GetByID(ctx context.Context, accountID string, id int64) (*domain.LedgerEntry, error)
	// Query returns entries newest first.
	Query(ctx context.Context, accountID string, filter domain.EntryFilter, limit, offset int) ([]*domain.LedgerEntry, error)
	Count(ctx context.Context, accountID string, filter domain.EntryFilter) (int64, error)
	Sum(ctx context.Context, accountID string, pred domain.SumPredicate) (int64, error)
	// ExistsInRange reports whether the account has an entry of kind in [from, to), including
	// entries pending in tx.
	ExistsInRange(ctx context.Context, tx Transaction, accountID string, kind domain.EntryKind, from, to time.Time) (bool, error)
	KindCounts(ctx context.Context, accountID string) (map[domain.EntryKind]int64, error)
}

// LedgerRepository defines data access for ledger-wide operations.
type LedgerRepository interface {
	Totals(ctx context.Context) (domain.LedgerTotals, error)
	Discrepancies(ctx context.Context, limit int) ([]domain.BalanceDiscrepancy, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
}

// Transaction represents a storage transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// CodeGenerator generates opaque redemption codes.
type CodeGenerator interface {
	Generate() string
}

// OfferCatalog resolves redeemable offers.
type OfferCatalog interface {
	Get(ctx context.Context, id string) (*domain.Offer, error)
	List(ctx context.Context) ([]*domain.Offer, error)
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// Retrier re-runs an operation while it fails with a retriable error.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// MetricsRecorder receives business metrics from the use cases.
type MetricsRecorder interface {
	CoinsEarned(kind domain.EntryKind, amount int64)
	CoinsSpent(kind domain.EntryKind, amount int64)
	TransferCompleted(amount int64)
	RedemptionCompleted(offerID string, totalCost int64)
	BonusClaimed(streak int)
	OperationFailed(operation string, err error)
	ObserveOperation(operation string, d time.Duration)
}

// ErrCacheMiss is returned by Cache.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key whose request did not complete, so the client may retry.
	Release(ctx context.Context, key string) error
}

// SystemClock is the wall clock in UTC.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
