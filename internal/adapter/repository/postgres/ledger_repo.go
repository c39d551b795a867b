package postgres

import (
	"context"
	"math"

	"github.com/campuscoins/coinledger/internal/domain"
	"github.com/campuscoins/coinledger/internal/infrastructure/postgres/generated"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// Totals reads ledger-wide sums in a single statement, so one snapshot is used.
func (r *LedgerRepository) Totals(ctx context.Context) (domain.LedgerTotals, error) {
	row, err := r.queries.GetLedgerTotals(ctx)
	if err != nil {
		return domain.LedgerTotals{}, err
	}

	return domain.LedgerTotals{
		TotalBalance:     row.TotalBalance,
		TotalEntryAmount: row.TotalEntryAmount,
		TotalIssued:      row.TotalIssued,
		AccountCount:     row.AccountCount,
		EntryCount:       row.EntryCount,
	}, nil
}

// Discrepancies lists accounts whose balance differs from their entry sum.
func (r *LedgerRepository) Discrepancies(ctx context.Context, limit int) ([]domain.BalanceDiscrepancy, error) {
	if limit <= 0 {
		limit = math.MaxInt32
	}

	rows, err := r.queries.ListBalanceDiscrepancies(ctx, int32(limit))
	if err != nil {
		return nil, err
	}

	out := make([]domain.BalanceDiscrepancy, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.BalanceDiscrepancy{
			AccountID:       row.ID,
			RecordedBalance: row.Balance,
			EntrySum:        row.EntrySum,
		})
	}

	return out, nil
}
