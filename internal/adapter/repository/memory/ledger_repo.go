package memory

import (
	"context"
	"sort"

	"github.com/campuscoins/coinledger/internal/domain"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	store *Store
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(store *Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

// Totals sums balances and entry amounts over one consistent snapshot.
func (r *LedgerRepository) Totals(ctx context.Context) (domain.LedgerTotals, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var totals domain.LedgerTotals
	for _, a := range r.store.accounts {
		totals.TotalBalance += a.Balance
		totals.AccountCount++
	}

	for _, e := range r.store.entries {
		totals.TotalEntryAmount += e.Amount
		if e.Amount > 0 {
			totals.TotalIssued += e.Amount
		}
		totals.EntryCount++
	}

	return totals, nil
}

// Discrepancies lists accounts whose balance differs from the sum of their entries.
func (r *LedgerRepository) Discrepancies(ctx context.Context, limit int) ([]domain.BalanceDiscrepancy, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	ids := make([]string, 0, len(r.store.accounts))
	for id := range r.store.accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []domain.BalanceDiscrepancy
	for _, id := range ids {
		var sum int64
		for _, e := range r.store.accountEntries(id) {
			sum += e.Amount
		}

		a := r.store.accounts[id]
		if a.Balance == sum && a.Balance >= 0 {
			continue
		}

		out = append(out, domain.BalanceDiscrepancy{AccountID: id, RecordedBalance: a.Balance, EntrySum: sum})
		if limit > 0 && len(out) >= limit {
			break
		}
	}

	return out, nil
}
