package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/campuscoins/coinledger/internal/domain"
)

// TransferService moves coins between two members.
type TransferService struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	balances    *BalanceStore
	idGen       IDGenerator
	clock       Clock
}

// NewTransferService creates a new TransferService.
func NewTransferService(
	txManager TransactionManager,
	accountRepo AccountRepository,
	balances *BalanceStore,
	idGen IDGenerator,
	clock Clock,
) *TransferService {
	if clock == nil {
		clock = SystemClock{}
	}

	return &TransferService{
		txManager:   txManager,
		accountRepo: accountRepo,
		balances:    balances,
		idGen:       idGen,
		clock:       clock,
	}
}

// TransferInput represents input for a peer transfer.
type TransferInput struct {
	SenderID    string
	RecipientID string
	Amount      int64
	Description string
}

// Transfer debits the sender and credits the recipient in a single transaction.
// Either both entries are committed or neither is.
func (s *TransferService) Transfer(ctx context.Context, input TransferInput) (*domain.TransferPair, error) {
	// 0. Validate inputs before starting transaction
	if input.SenderID == input.RecipientID {
		return nil, domain.ErrSelfTransfer
	}

	if err := domain.ValidateAccountID(input.RecipientID); err != nil {
		return nil, err
	}

	if err := domain.ValidateTransferAmount(input.Amount); err != nil {
		return nil, err
	}

	if err := domain.ValidateDescription(input.Description); err != nil {
		return nil, err
	}

	// 1. Sort ids so concurrent opposite transfers lock in the same order
	accountIDs := []string{input.SenderID, input.RecipientID}
	sort.Strings(accountIDs)

	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	// 2. Begin transaction
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, storageError(OpTransfer, err)
	}
	defer tx.Rollback(ctx)

	// 3. Lock accounts in sorted order
	accounts, err := s.accountRepo.GetByIDsForUpdate(ctx, tx, accountIDs)
	if err != nil {
		return nil, storageError(OpTransfer, err)
	}

	accountMap := make(map[string]*domain.Account, len(accounts))
	for _, a := range accounts {
		accountMap[a.ID] = a
	}

	sender := accountMap[input.SenderID]
	recipient := accountMap[input.RecipientID]

	if sender == nil || recipient == nil {
		return nil, domain.ErrAccountNotFound
	}

	// 4. Write both legs
	now := s.clock.Now()
	transferID := s.idGen.Generate()

	outDescription := input.Description
	if outDescription == "" {
		outDescription = fmt.Sprintf("Transferred to %s", recipient.ID)
	}

	inDescription := input.Description
	if inDescription == "" {
		inDescription = fmt.Sprintf("Received from %s", sender.ID)
	}

	out, err := s.balances.applyLocked(ctx, tx, sender, DeltaInput{
		AccountID:   sender.ID,
		Amount:      -input.Amount,
		Kind:        domain.KindTransferOut,
		Description: outDescription,
		ReferenceID: &recipient.ID,
	}, now)
	if err != nil {
		return nil, storageError(OpTransfer, err)
	}

	in, err := s.balances.applyLocked(ctx, tx, recipient, DeltaInput{
		AccountID:   recipient.ID,
		Amount:      input.Amount,
		Kind:        domain.KindTransferIn,
		Description: inDescription,
		ReferenceID: &sender.ID,
	}, now)
	if err != nil {
		return nil, storageError(OpTransfer, err)
	}

	err = s.balances.recordEvent(ctx, tx, domain.AggregateTypeTransfer, transferID, domain.EventTypeCoinsTransferred, map[string]any{
		"transfer_id":  transferID,
		"sender_id":    sender.ID,
		"recipient_id": recipient.ID,
		"amount":       input.Amount,
		"out_entry_id": out.ID,
		"in_entry_id":  in.ID,
	}, now)
	if err != nil {
		return nil, storageError(OpTransfer, err)
	}

	// 5. Commit transaction
	if err := tx.Commit(ctx); err != nil {
		return nil, storageError(OpTransfer, err)
	}

	return &domain.TransferPair{
		ID:          transferID,
		SenderID:    sender.ID,
		RecipientID: recipient.ID,
		Amount:      input.Amount,
		Out:         out,
		In:          in,
		CreatedAt:   now,
	}, nil
}
