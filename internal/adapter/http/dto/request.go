package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/campuscoins/coinledger/internal/domain"
	"github.com/campuscoins/coinledger/internal/usecase"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// Validate checks struct tags and wraps failures in domain.ErrValidation.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}

	return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "ne":
		return fmt.Sprintf("%s must not be %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

// OpenAccountRequest represents a request to open an account.
type OpenAccountRequest struct {
	AccountID string `json:"account_id" validate:"required,max=64"`
	Scope     string `json:"scope"      validate:"max=128"`
}

// ToUseCaseInput converts to use case input.
func (r *OpenAccountRequest) ToUseCaseInput() usecase.OpenAccountInput {
	return usecase.OpenAccountInput{AccountID: r.AccountID, Scope: r.Scope}
}

// EarnRequest represents an activity reward.
type EarnRequest struct {
	Activity    string  `json:"activity"               validate:"required"`
	ReferenceID *string `json:"reference_id,omitempty" validate:"omitempty,max=128"`
	Description string  `json:"description,omitempty"  validate:"max=200"`
}

// ToUseCaseInput converts to use case input.
func (r *EarnRequest) ToUseCaseInput(accountID string) usecase.EarnInput {
	return usecase.EarnInput{
		AccountID:   accountID,
		Activity:    r.Activity,
		ReferenceID: r.ReferenceID,
		Description: r.Description,
	}
}

// TransferRequest represents a peer transfer.
type TransferRequest struct {
	RecipientID string `json:"recipient_id"          validate:"required,max=64"`
	Amount      int64  `json:"amount"                validate:"gte=1,lte=10000"`
	Description string `json:"description,omitempty" validate:"max=200"`
}

// ToUseCaseInput converts to use case input.
func (r *TransferRequest) ToUseCaseInput(senderID string) usecase.TransferInput {
	return usecase.TransferInput{
		SenderID:    senderID,
		RecipientID: r.RecipientID,
		Amount:      r.Amount,
		Description: r.Description,
	}
}

// RedeemRequest represents an offer redemption. Quantity defaults to 1.
type RedeemRequest struct {
	OfferID  string `json:"offer_id"           validate:"required"`
	Quantity int    `json:"quantity,omitempty" validate:"omitempty,gte=1,lte=100"`
}

// ToUseCaseInput converts to use case input.
func (r *RedeemRequest) ToUseCaseInput(accountID string) usecase.RedeemInput {
	quantity := r.Quantity
	if quantity == 0 {
		quantity = 1
	}

	return usecase.RedeemInput{AccountID: accountID, OfferID: r.OfferID, Quantity: quantity}
}

// AdjustRequest represents an admin correction.
type AdjustRequest struct {
	Amount      int64  `json:"amount"      validate:"ne=0"`
	Description string `json:"description" validate:"required,max=200"`
}

// ToUseCaseInput converts to use case input.
func (r *AdjustRequest) ToUseCaseInput(accountID string) usecase.AdjustInput {
	return usecase.AdjustInput{AccountID: accountID, Amount: r.Amount, Description: r.Description}
}
