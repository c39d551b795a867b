package memory

import (
	"context"
	"sort"

	"github.com/campuscoins/coinledger/internal/domain"
	"github.com/campuscoins/coinledger/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	store *Store
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

// CreateTx locks the new id and stages the account for commit.
func (r *AccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	if err := t.lock(ctx, account.ID); err != nil {
		return err
	}

	if _, exists := t.account(account.ID); exists {
		return domain.ErrAccountExists
	}

	t.accounts[account.ID] = account.Clone()
	t.created[account.ID] = true

	return nil
}

// GetByID retrieves a committed account.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	a, ok := r.store.committedAccount(id)
	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	return a, nil
}

// GetByIDForUpdate locks an account for the rest of the transaction.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	t, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	if err := t.lock(ctx, id); err != nil {
		return nil, err
	}

	a, ok := t.account(id)
	if !ok {
		t.unlock(id)
		return nil, domain.ErrAccountNotFound
	}

	return a, nil
}

// GetByIDsForUpdate locks accounts in ascending id order.
func (r *AccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	t, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	accounts := make([]*domain.Account, 0, len(sorted))
	for i, id := range sorted {
		if i > 0 && sorted[i-1] == id {
			continue
		}

		if err := t.lock(ctx, id); err != nil {
			return nil, err
		}

		a, ok := t.account(id)
		if !ok {
			t.unlock(id)
			continue
		}
		accounts = append(accounts, a)
	}

	return accounts, nil
}

// UpdateState stages the new state of a locked account.
func (r *AccountRepository) UpdateState(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	if !t.held[account.ID] {
		return domain.ErrConcurrencyConflict
	}

	if _, ok := t.account(account.ID); !ok {
		return domain.ErrAccountNotFound
	}

	t.accounts[account.ID] = account.Clone()

	return nil
}

// Leaderboard lists accounts by balance descending, ties broken by id.
func (r *AccountRepository) Leaderboard(ctx context.Context, scope string, limit, offset int) ([]*domain.Account, error) {
	accounts := r.snapshot(scope)

	sort.Slice(accounts, func(i, j int) bool {
		if accounts[i].Balance != accounts[j].Balance {
			return accounts[i].Balance > accounts[j].Balance
		}
		return accounts[i].ID < accounts[j].ID
	})

	return page(accounts, limit, offset), nil
}

// Count returns the number of accounts in scope.
func (r *AccountRepository) Count(ctx context.Context, scope string) (int64, error) {
	return int64(len(r.snapshot(scope))), nil
}

// List lists accounts ordered by id.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	accounts := r.snapshot("")
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })

	return page(accounts, limit, offset), nil
}

func (r *AccountRepository) snapshot(scope string) []*domain.Account {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*domain.Account, 0, len(r.store.accounts))
	for _, a := range r.store.accounts {
		if scope != "" && a.Scope != scope {
			continue
		}
		out = append(out, a.Clone())
	}

	return out
}

func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}

	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	return items[offset:end]
}
