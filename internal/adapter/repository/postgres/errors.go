package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/campuscoins/coinledger/internal/domain"
)

// PostgreSQL error codes the ledger reacts to.
const (
	pgErrLockNotAvailable     = "55P03"
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
	pgErrUniqueViolation      = "23505"
)

// Constraint names from the migrations.
const (
	constraintAccountsPkey = "accounts_pkey"
	constraintClaimDay     = "ledger_entries_claim_day_key"
)

// mapError translates driver errors into the domain taxonomy. Unknown errors are
// returned unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgErrLockNotAvailable, pgErrDeadlock, pgErrSerializationFailure:
		return fmt.Errorf("%w: %s", domain.ErrConcurrencyConflict, pgErr.Message)
	case pgErrUniqueViolation:
		switch pgErr.ConstraintName {
		case constraintAccountsPkey:
			return domain.ErrAccountExists
		case constraintClaimDay:
			return domain.ErrAlreadyClaimedToday
		}
	}

	return err
}
