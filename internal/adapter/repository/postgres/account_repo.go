package postgres

import (
	"context"
	"errors"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/campuscoins/coinledger/internal/domain"
	"github.com/campuscoins/coinledger/internal/infrastructure/postgres/generated"
	"github.com/campuscoins/coinledger/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	queries *generated.Queries
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db generated.DBTX) *AccountRepository {
	return &AccountRepository{queries: generated.New(db)}
}

// CreateTx inserts a new account within a transaction.
func (r *AccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	err := txQueries(tx).CreateAccount(ctx, generated.CreateAccountParams{
		ID:            account.ID,
		Scope:         account.Scope,
		Balance:       account.Balance,
		TotalEarned:   account.TotalEarned,
		TotalSpent:    account.TotalSpent,
		DailyStreak:   int32(account.DailyStreak),
		LastBonusDate: dateToPg(account.LastBonusDate),
		Version:       account.Version,
		CreatedAt:     timeToPgTimestamptz(account.CreatedAt),
		UpdatedAt:     timeToPgTimestamptz(account.UpdatedAt),
	})

	return mapError(err)
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	row, err := r.queries.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return rowToAccount(row), nil
}

// GetByIDForUpdate retrieves an account by ID with a FOR UPDATE lock.
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
	row, err := txQueries(tx).GetAccountByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, mapError(err)
	}

	return rowToAccount(row), nil
}

// GetByIDsForUpdate locks multiple accounts in ascending id order.
func (r *AccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	rows, err := txQueries(tx).GetAccountsByIDsForUpdate(ctx, sorted)
	if err != nil {
		return nil, mapError(err)
	}

	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToAccount(row))
	}

	return accounts, nil
}

// UpdateState persists the mutable state of a locked account.
func (r *AccountRepository) UpdateState(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	n, err := txQueries(tx).UpdateAccountState(ctx, generated.UpdateAccountStateParams{
		ID:            account.ID,
		Balance:       account.Balance,
		TotalEarned:   account.TotalEarned,
		TotalSpent:    account.TotalSpent,
		DailyStreak:   int32(account.DailyStreak),
		LastBonusDate: dateToPg(account.LastBonusDate),
		Version:       account.Version,
		UpdatedAt:     timeToPgTimestamptz(account.UpdatedAt),
	})
	if err != nil {
		return mapError(err)
	}

	if n == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// Leaderboard lists accounts by balance descending, ties broken by id.
func (r *AccountRepository) Leaderboard(ctx context.Context, scope string, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.queries.ListLeaderboard(ctx, generated.ListLeaderboardParams{
		Scope:     scope,
		RowLimit:  int32(limit),
		RowOffset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToAccounts(rows), nil
}

// Count returns the number of accounts in scope. Empty scope counts all accounts.
func (r *AccountRepository) Count(ctx context.Context, scope string) (int64, error) {
	return r.queries.CountAccounts(ctx, scope)
}

// List lists accounts with pagination.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.queries.ListAccounts(ctx, generated.ListAccountsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToAccounts(rows), nil
}

func rowsToAccounts(rows []generated.Account) []*domain.Account {
	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToAccount(row))
	}

	return accounts
}

func rowToAccount(row generated.Account) *domain.Account {
	return &domain.Account{
		ID:            row.ID,
		Scope:         row.Scope,
		Balance:       row.Balance,
		TotalEarned:   row.TotalEarned,
		TotalSpent:    row.TotalSpent,
		DailyStreak:   int(row.DailyStreak),
		LastBonusDate: pgDateToTime(row.LastBonusDate),
		Version:       row.Version,
		CreatedAt:     row.CreatedAt.Time,
		UpdatedAt:     row.UpdatedAt.Time,
	}
}
