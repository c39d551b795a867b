package domain

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// Validation constants
const (
	MaxAccountIDLength    = 64
	MaxScopeLength        = 128
	MaxDescriptionLength  = 200
	MinTransferAmount     = 1
	MaxTransferAmount     = 10000
	MinRedeemQuantity     = 1
	MaxRedeemQuantity     = 100
	DefaultPageSize       = 20
	MaxPageSize           = 100
	MaxLeaderboardEntries = 100
	MaxReferenceIDLength  = 128

	// MaxOfferTitleLength leaves room for the "Redeemed: " prefix and the
	// largest quantity suffix inside MaxDescriptionLength.
	MaxOfferTitleLength = MaxDescriptionLength - len("Redeemed: ") - len(" (x100)")
)

// ValidateAccountID validates an account identifier.
func ValidateAccountID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: account id cannot be empty", ErrValidation)
	}

	if len(id) > MaxAccountIDLength {
		return fmt.Errorf("%w: account id exceeds %d characters", ErrValidation, MaxAccountIDLength)
	}

	return nil
}

// ValidateScope validates a leaderboard scope (campus or university name).
func ValidateScope(scope string) error {
	if utf8.RuneCountInString(scope) > MaxScopeLength {
		return fmt.Errorf("%w: scope exceeds %d characters", ErrValidation, MaxScopeLength)
	}

	return nil
}

// ValidateDescription validates a free-text entry description.
func ValidateDescription(description string) error {
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters", ErrValidation, MaxDescriptionLength)
	}

	return nil
}

// ValidateOfferTitle checks that a redemption description built from title
// stays within MaxDescriptionLength.
func ValidateOfferTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: offer title cannot be empty", ErrValidation)
	}

	if utf8.RuneCountInString(title) > MaxOfferTitleLength {
		return fmt.Errorf("%w: offer title exceeds %d characters", ErrValidation, MaxOfferTitleLength)
	}

	return nil
}

// ValidateTransferAmount validates a peer transfer amount.
func ValidateTransferAmount(amount int64) error {
	if amount < MinTransferAmount {
		return fmt.Errorf("%w: transfer amount must be at least %d", ErrValidation, MinTransferAmount)
	}

	if amount > MaxTransferAmount {
		return fmt.Errorf("%w: transfer amount must not exceed %d", ErrValidation, MaxTransferAmount)
	}

	return nil
}

// ValidateQuantity validates a redemption quantity.
func ValidateQuantity(quantity int) error {
	if quantity < MinRedeemQuantity || quantity > MaxRedeemQuantity {
		return fmt.Errorf("%w: quantity must be between %d and %d", ErrValidation, MinRedeemQuantity, MaxRedeemQuantity)
	}

	return nil
}

// ValidatePagination normalizes a 1-based page and page size. The page is
// capped so that PageOffset always fits in a signed 32-bit integer.
func ValidatePagination(page, limit int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if page < 1 {
		page = 1
	}

	if maxPage := math.MaxInt32/limit + 1; page > maxPage {
		page = maxPage
	}

	return page, limit
}

// PageOffset returns the row offset of a page normalized by ValidatePagination.
func PageOffset(page, limit int) int {
	return (page - 1) * limit
}

// TotalPages returns the number of pages needed for total items.
func TotalPages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}

	return int((total + int64(limit) - 1) / int64(limit))
}
