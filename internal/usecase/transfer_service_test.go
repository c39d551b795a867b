package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuscoins/coinledger/internal/domain"
	"github.com/campuscoins/coinledger/internal/usecase"
)

// openWith opens id and adjusts it to the wanted balance.
func (h *harness) openWith(t *testing.T, id string, balance int64) {
	t.Helper()
	h.open(t, id)

	if delta := balance - domain.WelcomeBonus; delta != 0 {
		_, err := h.uc.AdjustBalance(context.Background(), usecase.AdjustInput{AccountID: id, Amount: delta, Description: "seed"})
		require.NoError(t, err)
	}
}

func TestTransferService_Transfer(t *testing.T) {
	tests := []struct {
		name          string
		input         usecase.TransferInput
		wantErr       error
		wantSender    int64
		wantRecipient int64
	}{
		{
			name:          "successful transfer",
			input:         usecase.TransferInput{SenderID: "alice", RecipientID: "bob", Amount: 50},
			wantSender:    70,
			wantRecipient: 80,
		},
		{
			name:          "entire balance",
			input:         usecase.TransferInput{SenderID: "alice", RecipientID: "bob", Amount: 120},
			wantSender:    0,
			wantRecipient: 150,
		},
		{
			name:          "insufficient balance",
			input:         usecase.TransferInput{SenderID: "alice", RecipientID: "bob", Amount: 121},
			wantErr:       domain.ErrInsufficientBalance,
			wantSender:    120,
			wantRecipient: 30,
		},
		{
			name:          "self transfer",
			input:         usecase.TransferInput{SenderID: "alice", RecipientID: "alice", Amount: 10},
			wantErr:       domain.ErrSelfTransfer,
			wantSender:    120,
			wantRecipient: 30,
		},
		{
			name:          "zero amount",
			input:         usecase.TransferInput{SenderID: "alice", RecipientID: "bob", Amount: 0},
			wantErr:       domain.ErrValidation,
			wantSender:    120,
			wantRecipient: 30,
		},
		{
			name:          "above maximum",
			input:         usecase.TransferInput{SenderID: "alice", RecipientID: "bob", Amount: domain.MaxTransferAmount + 1},
			wantErr:       domain.ErrValidation,
			wantSender:    120,
			wantRecipient: 30,
		},
		{
			name:          "unknown recipient",
			input:         usecase.TransferInput{SenderID: "alice", RecipientID: "ghost", Amount: 10},
			wantErr:       domain.ErrAccountNotFound,
			wantSender:    120,
			wantRecipient: 30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, harnessOptions{})
			h.openWith(t, "alice", 120)
			h.openWith(t, "bob", 30)

			pair, err := h.uc.TransferCoins(context.Background(), tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Zero(t, pair.Net())
				assert.Equal(t, "bob", *pair.Out.ReferenceID)
				assert.Equal(t, "alice", *pair.In.ReferenceID)
				assert.Equal(t, "Transferred to bob", pair.Out.Description)
				assert.Equal(t, "Received from alice", pair.In.Description)
			}

			assert.Equal(t, tt.wantSender, h.balance(t, "alice"))
			assert.Equal(t, tt.wantRecipient, h.balance(t, "bob"))
			h.assertConsistent(t)
		})
	}
}

func TestTransferService_EntriesReferenceCounterparty(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	h.openWith(t, "alice", 120)
	h.openWith(t, "bob", 30)

	pair, err := h.uc.TransferCoins(context.Background(), usecase.TransferInput{
		SenderID:    "alice",
		RecipientID: "bob",
		Amount:      50,
		Description: "lunch",
	})
	require.NoError(t, err)

	require.NotNil(t, pair.Out.ReferenceID)
	require.NotNil(t, pair.In.ReferenceID)
	assert.Equal(t, "bob", *pair.Out.ReferenceID)
	assert.Equal(t, "alice", *pair.In.ReferenceID)
	assert.Equal(t, "lunch", pair.Out.Description)
	assert.Equal(t, "lunch", pair.In.Description)
	assert.NotEqual(t, pair.ID, *pair.Out.ReferenceID)
}

func TestTransferService_OppositeDirectionsDoNotDeadlock(t *testing.T) {
	h := newHarness(t, harnessOptions{lockTimeout: 5 * time.Second})
	h.openWith(t, "alice", 1000)
	h.openWith(t, "bob", 1000)

	const rounds = 50
	var wg sync.WaitGroup
	for i := 0; i < rounds; i++ {
		i := i
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := h.uc.TransferCoins(context.Background(), usecase.TransferInput{SenderID: "alice", RecipientID: "bob", Amount: int64(i%5 + 1)})
			if err != nil {
				t.Errorf("alice->bob: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			_, err := h.uc.TransferCoins(context.Background(), usecase.TransferInput{SenderID: "bob", RecipientID: "alice", Amount: int64(i%5 + 1)})
			if err != nil {
				t.Errorf("bob->alice: %v", err)
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("transfers did not finish")
	}

	assert.Equal(t, int64(1000), h.balance(t, "alice"))
	assert.Equal(t, int64(1000), h.balance(t, "bob"))
	h.assertConsistent(t)
}

func TestTransferService_LockConflictLeavesNoTrace(t *testing.T) {
	h := newHarness(t, harnessOptions{lockTimeout: 50 * time.Millisecond})
	ctx := context.Background()
	h.openWith(t, "alice", 120)
	h.openWith(t, "bob", 30)

	tx, err := h.txManager.Begin(ctx)
	require.NoError(t, err)
	_, err = h.accounts.GetByIDForUpdate(ctx, tx, "bob")
	require.NoError(t, err)

	_, err = h.uc.TransferCoins(ctx, usecase.TransferInput{SenderID: "alice", RecipientID: "bob", Amount: 50})
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
	require.NoError(t, tx.Rollback(ctx))

	assert.Equal(t, int64(120), h.balance(t, "alice"))
	assert.Equal(t, int64(30), h.balance(t, "bob"))

	// alice lock was released with the failed transaction.
	_, err = h.uc.EarnCoins(ctx, usecase.EarnInput{AccountID: "alice", Activity: "message_send"})
	require.NoError(t, err)
}
