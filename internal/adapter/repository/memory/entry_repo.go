package memory

import (
	"context"
	"sort"
	"time"

	"github.com/campuscoins/coinledger/internal/domain"
	"github.com/campuscoins/coinledger/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	store *Store
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(store *Store) *EntryRepository {
	return &EntryRepository{store: store}
}

// Append stages an entry and assigns the next sequence number.
// A second claim-day entry for the same (account, kind, day) fails with ErrAlreadyClaimedToday.
func (r *EntryRepository) Append(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	if !t.held[entry.AccountID] {
		return domain.ErrConcurrencyConflict
	}

	if entry.ClaimDay != nil {
		key := claimKey{accountID: entry.AccountID, kind: entry.Kind, day: *entry.ClaimDay}
		if t.hasClaim(key) || r.claimed(key) {
			return domain.ErrAlreadyClaimedToday
		}
		t.claims = append(t.claims, key)
	}

	entry.ID = r.store.nextEntryID.Add(1)
	t.entries = append(t.entries, cloneEntry(entry))

	return nil
}

func (r *EntryRepository) claimed(key claimKey) bool {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	_, ok := r.store.claims[key]
	return ok
}

// GetByID retrieves one entry of an account.
func (r *EntryRepository) GetByID(ctx context.Context, accountID string, id int64) (*domain.LedgerEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, e := range r.store.accountEntries(accountID) {
		if e.ID == id {
			return cloneEntry(e), nil
		}
	}

	return nil, domain.ErrEntryNotFound
}

// Query returns matching entries newest first.
func (r *EntryRepository) Query(ctx context.Context, accountID string, filter domain.EntryFilter, limit, offset int) ([]*domain.LedgerEntry, error) {
	matched := r.matching(accountID, filter)

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	return page(matched, limit, offset), nil
}

// Count counts matching entries.
func (r *EntryRepository) Count(ctx context.Context, accountID string, filter domain.EntryFilter) (int64, error) {
	return int64(len(r.matching(accountID, filter))), nil
}

// Sum adds the amounts of entries matching pred.
func (r *EntryRepository) Sum(ctx context.Context, accountID string, pred domain.SumPredicate) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var total int64
	for _, e := range r.store.accountEntries(accountID) {
		if pred.Matches(e) {
			total += e.Amount
		}
	}

	return total, nil
}

// ExistsInRange checks committed and pending entries of kind in [from, to).
func (r *EntryRepository) ExistsInRange(ctx context.Context, tx usecase.Transaction, accountID string, kind domain.EntryKind, from, to time.Time) (bool, error) {
	t, err := asTx(tx)
	if err != nil {
		return false, err
	}

	inRange := func(e *domain.LedgerEntry) bool {
		return e.AccountID == accountID && e.Kind == kind && !e.CreatedAt.Before(from) && e.CreatedAt.Before(to)
	}

	for _, e := range t.entries {
		if inRange(e) {
			return true, nil
		}
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, e := range r.store.accountEntries(accountID) {
		if inRange(e) {
			return true, nil
		}
	}

	return false, nil
}

// KindCounts counts entries of the account per kind.
func (r *EntryRepository) KindCounts(ctx context.Context, accountID string) (map[domain.EntryKind]int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	counts := make(map[domain.EntryKind]int64)
	for _, e := range r.store.accountEntries(accountID) {
		counts[e.Kind]++
	}

	return counts, nil
}

func (r *EntryRepository) matching(accountID string, filter domain.EntryFilter) []*domain.LedgerEntry {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*domain.LedgerEntry
	for _, e := range r.store.accountEntries(accountID) {
		if filter.Matches(e) {
			out = append(out, cloneEntry(e))
		}
	}

	return out
}
