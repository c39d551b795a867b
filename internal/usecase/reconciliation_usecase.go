package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/campuscoins/coinledger/internal/domain"
)

// ReconciliationUseCase verifies that balances agree with the ledger.
type ReconciliationUseCase struct {
	accountRepo AccountRepository
	entryRepo   EntryRepository
	ledgerRepo  LedgerRepository
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	ledgerRepo LedgerRepository,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		ledgerRepo:  ledgerRepo,
	}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	AccountID         string
	RecordedBalance   int64
	CalculatedBalance int64
	Difference        int64
	IsReconciled      bool
	LastChecked       time.Time
}

// ReconcileAccount compares an account's stored balance with the sum of its entries.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, accountID string) (*ReconciliationResult, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, storageError("reconcile", err)
	}

	sum, err := uc.entryRepo.Sum(ctx, accountID, domain.SumPredicate{})
	if err != nil {
		return nil, storageError("reconcile", err)
	}

	return &ReconciliationResult{
		AccountID:         accountID,
		RecordedBalance:   account.Balance,
		CalculatedBalance: sum,
		Difference:        account.Balance - sum,
		IsReconciled:      account.Balance == sum && account.Balance >= 0,
		LastChecked:       time.Now().UTC(),
	}, nil
}

// ReconcileAllAccounts reconciles every account, page by page.
func (uc *ReconciliationUseCase) ReconcileAllAccounts(ctx context.Context) ([]*ReconciliationResult, error) {
	const pageSize = 500

	var results []*ReconciliationResult
	for offset := 0; ; offset += pageSize {
		accounts, err := uc.accountRepo.List(ctx, pageSize, offset)
		if err != nil {
			return nil, storageError("reconcile", err)
		}

		for _, account := range accounts {
			result, err := uc.ReconcileAccount(ctx, account.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to reconcile account %s: %w", account.ID, err)
			}
			results = append(results, result)
		}

		if len(accounts) < pageSize {
			break
		}
	}

	return results, nil
}

// ConsistencyReport is the outcome of a ledger-wide invariant check.
type ConsistencyReport struct {
	Consistent       bool
	TotalBalance     int64
	TotalEntryAmount int64
	Difference       int64
	AccountCount     int64
	EntryCount       int64
	Discrepancies    []domain.BalanceDiscrepancy
	CheckedAt        time.Time
}

// CheckLedgerConsistency verifies that the sum of balances equals the sum of entries
// and that no single account disagrees with its own history.
func (uc *ReconciliationUseCase) CheckLedgerConsistency(ctx context.Context) (*ConsistencyReport, error) {
	totals, err := uc.ledgerRepo.Totals(ctx)
	if err != nil {
		return nil, storageError("consistency", err)
	}

	discrepancies, err := uc.ledgerRepo.Discrepancies(ctx, 100)
	if err != nil {
		return nil, storageError("consistency", err)
	}

	return &ConsistencyReport{
		Consistent:       totals.TotalBalance == totals.TotalEntryAmount && len(discrepancies) == 0,
		TotalBalance:     totals.TotalBalance,
		TotalEntryAmount: totals.TotalEntryAmount,
		Difference:       totals.TotalBalance - totals.TotalEntryAmount,
		AccountCount:     totals.AccountCount,
		EntryCount:       totals.EntryCount,
		Discrepancies:    discrepancies,
		CheckedAt:        time.Now().UTC(),
	}, nil
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	TotalAccounts      int
	ReconciledAccounts int
	Discrepancies      []*ReconciliationResult
	LedgerConsistent   bool
	CheckedAt          time.Time
}

// GenerateReconciliationReport generates a comprehensive reconciliation report
func (uc *ReconciliationUseCase) GenerateReconciliationReport(ctx context.Context) (*ReconciliationReport, error) {
	results, err := uc.ReconcileAllAccounts(ctx)
	if err != nil {
		return nil, err
	}

	consistency, err := uc.CheckLedgerConsistency(ctx)
	if err != nil {
		return nil, err
	}

	report := &ReconciliationReport{
		TotalAccounts:    len(results),
		Discrepancies:    make([]*ReconciliationResult, 0),
		LedgerConsistent: consistency.Consistent,
		CheckedAt:        time.Now().UTC(),
	}

	for _, result := range results {
		if result.IsReconciled {
			report.ReconciledAccounts++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
		}
	}

	return report, nil
}
