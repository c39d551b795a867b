package usecase

import (
	"context"
	"fmt"
	"math"

	"github.com/campuscoins/coinledger/internal/domain"
)

// RedemptionService spends coins on catalog offers.
type RedemptionService struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	balances    *BalanceStore
	catalog     OfferCatalog
	codes       CodeGenerator
	clock       Clock
}

// NewRedemptionService creates a new RedemptionService.
func NewRedemptionService(
	txManager TransactionManager,
	accountRepo AccountRepository,
	balances *BalanceStore,
	catalog OfferCatalog,
	codes CodeGenerator,
	clock Clock,
) *RedemptionService {
	if clock == nil {
		clock = SystemClock{}
	}

	return &RedemptionService{
		txManager:   txManager,
		accountRepo: accountRepo,
		balances:    balances,
		catalog:     catalog,
		codes:       codes,
		clock:       clock,
	}
}

// RedeemInput represents input for a redemption. A zero UnitCost uses the catalog price.
type RedeemInput struct {
	AccountID string
	OfferID   string
	UnitCost  int64
	Quantity  int
}

// Redeem debits unitCost*quantity and returns an opaque redemption code.
func (s *RedemptionService) Redeem(ctx context.Context, input RedeemInput) (*domain.Redemption, error) {
	if err := domain.ValidateQuantity(input.Quantity); err != nil {
		return nil, err
	}

	if input.UnitCost < 0 {
		return nil, fmt.Errorf("%w: unit cost must be positive", domain.ErrValidation)
	}

	offer, err := s.catalog.Get(ctx, input.OfferID)
	if err != nil {
		return nil, storageError(OpRedeem, err)
	}

	if !offer.Active {
		return nil, domain.ErrOfferInactive
	}

	unitCost := input.UnitCost
	if unitCost == 0 {
		unitCost = offer.CoinCost
	}

	if unitCost <= 0 {
		return nil, fmt.Errorf("%w: offer %s has no price", domain.ErrValidation, offer.ID)
	}

	if unitCost > math.MaxInt64/int64(input.Quantity) {
		return nil, fmt.Errorf("%w: total cost overflows", domain.ErrValidation)
	}

	totalCost := unitCost * int64(input.Quantity)

	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, storageError(OpRedeem, err)
	}
	defer tx.Rollback(ctx)

	account, err := s.accountRepo.GetByIDForUpdate(ctx, tx, input.AccountID)
	if err != nil {
		return nil, storageError(OpRedeem, err)
	}

	now := s.clock.Now()
	offerID := offer.ID

	entry, err := s.balances.applyLocked(ctx, tx, account, DeltaInput{
		AccountID:   account.ID,
		Amount:      -totalCost,
		Kind:        domain.KindRedemption,
		Description: fmt.Sprintf("Redeemed: %s (x%d)", offer.Title, input.Quantity),
		ReferenceID: &offerID,
	}, now)
	if err != nil {
		return nil, storageError(OpRedeem, err)
	}

	code := s.codes.Generate()

	payload := domain.EntryPayload(entry)
	payload["offer_id"] = offer.ID
	payload["quantity"] = input.Quantity
	payload["total_cost"] = totalCost
	payload["code"] = code

	err = s.balances.recordEvent(ctx, tx, domain.AggregateTypeAccount, account.ID, domain.EventTypeOfferRedeemed, payload, now)
	if err != nil {
		return nil, storageError(OpRedeem, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storageError(OpRedeem, err)
	}

	return &domain.Redemption{
		Entry:     entry,
		Code:      code,
		OfferID:   offer.ID,
		Quantity:  input.Quantity,
		UnitCost:  unitCost,
		TotalCost: totalCost,
	}, nil
}
