package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/campuscoins/coinledger/internal/domain"
	"github.com/campuscoins/coinledger/internal/usecase"
)

var errTxClosed = errors.New("memory: transaction already closed")

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	store *Store
}

// NewTxManager creates a new TxManager.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Tx{
		store:    m.store,
		held:     make(map[string]bool),
		accounts: make(map[string]*domain.Account),
		created:  make(map[string]bool),
	}, nil
}

// Tx buffers writes until Commit.
type Tx struct {
	store    *Store
	held     map[string]bool
	order    []string
	accounts map[string]*domain.Account
	created  map[string]bool
	entries  []*domain.LedgerEntry
	claims   []claimKey
	outbox   []*domain.OutboxEvent
	closed   bool
}

func asTx(tx usecase.Transaction) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok {
		return nil, fmt.Errorf("memory: unexpected transaction type %T", tx)
	}

	if t.closed {
		return nil, errTxClosed
	}

	return t, nil
}

func (t *Tx) lock(ctx context.Context, accountID string) error {
	if t.held[accountID] {
		return nil
	}

	if err := t.store.acquire(ctx, accountID); err != nil {
		return err
	}

	t.held[accountID] = true
	t.order = append(t.order, accountID)

	return nil
}

func (t *Tx) unlock(accountID string) {
	if !t.held[accountID] {
		return
	}

	delete(t.held, accountID)
	for i, id := range t.order {
		if id == accountID {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}

	t.store.release(accountID)
}

// account returns the tx view of a locked account.
func (t *Tx) account(id string) (*domain.Account, bool) {
	if a, ok := t.accounts[id]; ok {
		return a.Clone(), true
	}

	return t.store.committedAccount(id)
}

func (t *Tx) hasClaim(key claimKey) bool {
	for _, c := range t.claims {
		if c == key {
			return true
		}
	}

	return false
}

// Commit publishes the buffered writes atomically and releases all locks.
func (t *Tx) Commit(ctx context.Context) error {
	if t.closed {
		return errTxClosed
	}
	defer t.finish()

	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range t.created {
		if _, exists := s.accounts[id]; exists {
			return domain.ErrAccountExists
		}
	}

	for _, key := range t.claims {
		if _, exists := s.claims[key]; exists {
			return domain.ErrAlreadyClaimedToday
		}
	}

	for id, a := range t.accounts {
		s.accounts[id] = a.Clone()
	}

	sort.Slice(t.entries, func(i, j int) bool { return t.entries[i].ID < t.entries[j].ID })
	for _, e := range t.entries {
		s.entries = append(s.entries, cloneEntry(e))
		s.byAccount[e.AccountID] = append(s.byAccount[e.AccountID], len(s.entries)-1)
	}

	for _, key := range t.claims {
		s.claims[key] = struct{}{}
	}

	for _, e := range t.outbox {
		s.outbox = append(s.outbox, cloneEvent(e))
		s.outboxIdx[e.ID] = len(s.outbox) - 1
	}

	return nil
}

// Rollback discards the buffered writes and releases all locks.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.closed {
		return nil
	}

	t.finish()

	return nil
}

func (t *Tx) finish() {
	t.closed = true
	for i := len(t.order) - 1; i >= 0; i-- {
		t.store.release(t.order[i])
	}

	t.order = nil
	t.held = map[string]bool{}
}
