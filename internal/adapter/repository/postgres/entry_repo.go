package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/campuscoins/coinledger/internal/domain"
	"github.com/campuscoins/coinledger/internal/infrastructure/postgres/generated"
	"github.com/campuscoins/coinledger/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	queries *generated.Queries
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(db generated.DBTX) *EntryRepository {
	return &EntryRepository{queries: generated.New(db)}
}

// Append inserts an entry and assigns the sequence-generated ID.
func (r *EntryRepository) Append(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
	id, err := txQueries(tx).InsertLedgerEntry(ctx, generated.InsertLedgerEntryParams{
		AccountID:    entry.AccountID,
		Amount:       entry.Amount,
		Kind:         string(entry.Kind),
		Description:  entry.Description,
		ReferenceID:  textToPg(entry.ReferenceID),
		BalanceAfter: entry.BalanceAfter,
		ClaimDay:     dateToPg(entry.ClaimDay),
		CreatedAt:    timeToPgTimestamptz(entry.CreatedAt),
	})
	if err != nil {
		return mapError(err)
	}

	entry.ID = id

	return nil
}

// GetByID retrieves one entry of an account.
func (r *EntryRepository) GetByID(ctx context.Context, accountID string, id int64) (*domain.LedgerEntry, error) {
	row, err := r.queries.GetLedgerEntry(ctx, generated.GetLedgerEntryParams{AccountID: accountID, ID: id})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}

		return nil, err
	}

	return rowToEntry(row), nil
}

// Query returns matching entries newest first.
func (r *EntryRepository) Query(ctx context.Context, accountID string, filter domain.EntryFilter, limit, offset int) ([]*domain.LedgerEntry, error) {
	rows, err := r.queries.ListLedgerEntries(ctx, generated.ListLedgerEntriesParams{
		AccountID: accountID,
		Kind:      kindToPg(string(filter.Kind)),
		DateFrom:  optionalTimestamptz(filter.DateFrom),
		DateTo:    optionalTimestamptz(filter.DateTo),
		RowLimit:  int32(limit),
		RowOffset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.LedgerEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, rowToEntry(row))
	}

	return entries, nil
}

// Count counts matching entries.
func (r *EntryRepository) Count(ctx context.Context, accountID string, filter domain.EntryFilter) (int64, error) {
	return r.queries.CountLedgerEntries(ctx, generated.CountLedgerEntriesParams{
		AccountID: accountID,
		Kind:      kindToPg(string(filter.Kind)),
		DateFrom:  optionalTimestamptz(filter.DateFrom),
		DateTo:    optionalTimestamptz(filter.DateTo),
	})
}

// Sum adds the amounts of the entries selected by pred.
func (r *EntryRepository) Sum(ctx context.Context, accountID string, pred domain.SumPredicate) (int64, error) {
	var sign int32
	switch pred.Sign {
	case domain.SignPositive:
		sign = 1
	case domain.SignNegative:
		sign = -1
	}

	return r.queries.SumLedgerEntries(ctx, generated.SumLedgerEntriesParams{
		AccountID: accountID,
		Kind:      kindToPg(string(pred.Kind)),
		Sign:      sign,
	})
}

// ExistsInRange runs inside tx so entries written earlier in the same
// transaction are visible.
func (r *EntryRepository) ExistsInRange(ctx context.Context, tx usecase.Transaction, accountID string, kind domain.EntryKind, from, to time.Time) (bool, error) {
	exists, err := txQueries(tx).ExistsLedgerEntryInRange(ctx, generated.ExistsLedgerEntryInRangeParams{
		AccountID:   accountID,
		Kind:        string(kind),
		CreatedAt:   timeToPgTimestamptz(from),
		CreatedAt_2: timeToPgTimestamptz(to),
	})

	return exists, mapError(err)
}

// KindCounts counts entries of the account per kind.
func (r *EntryRepository) KindCounts(ctx context.Context, accountID string) (map[domain.EntryKind]int64, error) {
	rows, err := r.queries.CountLedgerEntriesByKind(ctx, accountID)
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.EntryKind]int64, len(rows))
	for _, row := range rows {
		counts[domain.EntryKind(row.Kind)] = row.EntryCount
	}

	return counts, nil
}

func rowToEntry(row generated.LedgerEntry) *domain.LedgerEntry {
	return &domain.LedgerEntry{
		ID:           row.ID,
		AccountID:    row.AccountID,
		Amount:       row.Amount,
		Kind:         domain.EntryKind(row.Kind),
		Description:  row.Description,
		ReferenceID:  pgTextToString(row.ReferenceID),
		BalanceAfter: row.BalanceAfter,
		ClaimDay:     pgDateToTime(row.ClaimDay),
		CreatedAt:    row.CreatedAt.Time,
	}
}
