package usecase

import (
	"context"
	"fmt"

	"github.com/campuscoins/coinledger/internal/domain"
)

// TransactionLog is the append-only history of balance changes.
type TransactionLog struct {
	entryRepo EntryRepository
}

// NewTransactionLog creates a new TransactionLog.
func NewTransactionLog(entryRepo EntryRepository) *TransactionLog {
	return &TransactionLog{entryRepo: entryRepo}
}

// EntryPage is one page of history, newest first.
type EntryPage struct {
	Entries    []*domain.LedgerEntry
	TotalCount int64
	TotalPages int
	Page       int
	Limit      int
}

// QueryEntriesInput represents input for a history query.
type QueryEntriesInput struct {
	AccountID string
	Filter    domain.EntryFilter
	Page      int
	Limit     int
}

// Append records entry inside tx and assigns its ID.
func (l *TransactionLog) Append(ctx context.Context, tx Transaction, entry *domain.LedgerEntry) (*domain.LedgerEntry, error) {
	if !entry.Kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown entry kind %q", domain.ErrValidation, entry.Kind)
	}

	if entry.Amount == 0 {
		return nil, fmt.Errorf("%w: entry amount must be non-zero", domain.ErrValidation)
	}

	if err := l.entryRepo.Append(ctx, tx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

// Query returns a page of an account's history.
func (l *TransactionLog) Query(ctx context.Context, input QueryEntriesInput) (*EntryPage, error) {
	if input.Filter.Kind != "" && !input.Filter.Kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown entry kind %q", domain.ErrValidation, input.Filter.Kind)
	}

	if input.Filter.DateFrom != nil && input.Filter.DateTo != nil && input.Filter.DateTo.Before(*input.Filter.DateFrom) {
		return nil, fmt.Errorf("%w: date_to is before date_from", domain.ErrValidation)
	}

	page, limit := domain.ValidatePagination(input.Page, input.Limit)

	total, err := l.entryRepo.Count(ctx, input.AccountID, input.Filter)
	if err != nil {
		return nil, err
	}

	entries := []*domain.LedgerEntry{}
	if offset := domain.PageOffset(page, limit); int64(offset) < total {
		entries, err = l.entryRepo.Query(ctx, input.AccountID, input.Filter, limit, offset)
		if err != nil {
			return nil, err
		}
	}

	return &EntryPage{
		Entries:    entries,
		TotalCount: total,
		TotalPages: domain.TotalPages(total, limit),
		Page:       page,
		Limit:      limit,
	}, nil
}

// Get returns a single entry owned by accountID.
func (l *TransactionLog) Get(ctx context.Context, accountID string, entryID int64) (*domain.LedgerEntry, error) {
	return l.entryRepo.GetByID(ctx, accountID, entryID)
}

// Sum aggregates the amounts of the entries selected by pred.
func (l *TransactionLog) Sum(ctx context.Context, accountID string, pred domain.SumPredicate) (int64, error) {
	return l.entryRepo.Sum(ctx, accountID, pred)
}
