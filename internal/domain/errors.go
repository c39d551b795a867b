package domain

import (
	"errors"
	"fmt"
)

var (
	// Input errors
	ErrValidation          = errors.New("validation failed")
	ErrInvalidActivityKind = errors.New("invalid activity kind")
	ErrSelfTransfer        = errors.New("cannot transfer coins to yourself")

	// Account errors
	ErrAccountNotFound     = errors.New("account not found")
	ErrAccountExists       = errors.New("account already exists")
	ErrInsufficientBalance = errors.New("insufficient balance")

	// Ledger errors
	ErrEntryNotFound       = errors.New("ledger entry not found")
	ErrAlreadyClaimedToday = errors.New("reward already claimed today")
	ErrAlreadyClaimed      = errors.New("daily bonus already claimed today")

	// Catalog errors
	ErrOfferNotFound = errors.New("offer not found")
	ErrOfferInactive = errors.New("offer is not active")

	// Storage errors
	ErrConcurrencyConflict = errors.New("concurrent update conflict, retry the operation")
	ErrStorageUnavailable  = errors.New("storage unavailable")
)

var knownErrors = []error{
	ErrValidation,
	ErrInvalidActivityKind,
	ErrSelfTransfer,
	ErrAccountNotFound,
	ErrAccountExists,
	ErrInsufficientBalance,
	ErrEntryNotFound,
	ErrAlreadyClaimedToday,
	ErrAlreadyClaimed,
	ErrOfferNotFound,
	ErrOfferInactive,
	ErrConcurrencyConflict,
	ErrStorageUnavailable,
}

// InsufficientBalanceError reports how many coins a debit needed and how many were available.
type InsufficientBalanceError struct {
	AccountID string
	Required  int64
	Available int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance on account %s: required %d, available %d", e.AccountID, e.Required, e.Available)
}

// Is makes errors.Is(err, ErrInsufficientBalance) match.
func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// IsKnown reports whether err belongs to the ledger error taxonomy.
func IsKnown(err error) bool {
	for _, known := range knownErrors {
		if errors.Is(err, known) {
			return true
		}
	}

	return false
}

// IsRetriable reports whether the operation that produced err may be retried as-is.
func IsRetriable(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict)
}
