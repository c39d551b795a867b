// Package memory is an embedded, single-process implementation of the ledger ports.
//
// Accounts live in an arena guarded by one RWMutex, and every account has its own
// lock channel. A transaction acquires account locks (with a bounded wait), buffers
// its writes, and publishes them under the arena write lock on commit, so readers
// never observe a balance without the entry that produced it.
package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/campuscoins/coinledger/internal/domain"
)

// DefaultLockTimeout bounds how long a transaction waits for an account lock.
const DefaultLockTimeout = 2 * time.Second

type claimKey struct {
	accountID string
	kind      domain.EntryKind
	day       time.Time
}

// Store is the shared state behind the memory repositories.
type Store struct {
	mu        sync.RWMutex
	accounts  map[string]*domain.Account
	entries   []*domain.LedgerEntry
	byAccount map[string][]int
	claims    map[claimKey]struct{}
	outbox    []*domain.OutboxEvent
	outboxIdx map[string]int

	locksMu sync.Mutex
	locks   map[string]*accountLock

	nextEntryID atomic.Int64
	lockTimeout time.Duration
}

// NewStore creates an empty Store. A non-positive lockTimeout uses DefaultLockTimeout.
func NewStore(lockTimeout time.Duration) *Store {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}

	return &Store{
		accounts:    make(map[string]*domain.Account),
		byAccount:   make(map[string][]int),
		claims:      make(map[claimKey]struct{}),
		outboxIdx:   make(map[string]int),
		locks:       make(map[string]*accountLock),
		lockTimeout: lockTimeout,
	}
}

// accountLock is a one-slot semaphore. refs counts holders plus waiters; the
// entry is dropped from Store.locks when it reaches zero.
type accountLock struct {
	ch   chan struct{}
	refs int
}

func (s *Store) lockFor(accountID string) *accountLock {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	l, ok := s.locks[accountID]
	if !ok {
		l = &accountLock{ch: make(chan struct{}, 1)}
		s.locks[accountID] = l
	}
	l.refs++

	return l
}

func (s *Store) unref(accountID string, l *accountLock) {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	l.refs--
	if l.refs == 0 && s.locks[accountID] == l {
		delete(s.locks, accountID)
	}
}

// acquire waits for the account lock, failing with ErrConcurrencyConflict on timeout.
func (s *Store) acquire(ctx context.Context, accountID string) error {
	l := s.lockFor(accountID)

	select {
	case l.ch <- struct{}{}:
		return nil
	default:
	}

	timer := time.NewTimer(s.lockTimeout)
	defer timer.Stop()

	select {
	case l.ch <- struct{}{}:
		return nil
	case <-timer.C:
		s.unref(accountID, l)
		return fmt.Errorf("%w: lock wait timeout on account %s", domain.ErrConcurrencyConflict, accountID)
	case <-ctx.Done():
		s.unref(accountID, l)
		return fmt.Errorf("%w: %v", domain.ErrConcurrencyConflict, ctx.Err())
	}
}

func (s *Store) release(accountID string) {
	s.locksMu.Lock()
	l := s.locks[accountID]
	s.locksMu.Unlock()

	<-l.ch
	s.unref(accountID, l)
}

// lockedIDs reports how many account ids currently have a lock entry.
func (s *Store) lockedIDs() int {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	return len(s.locks)
}

func (s *Store) committedAccount(id string) (*domain.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, false
	}

	return a.Clone(), true
}

func cloneEntry(e *domain.LedgerEntry) *domain.LedgerEntry {
	c := *e
	if e.ReferenceID != nil {
		ref := *e.ReferenceID
		c.ReferenceID = &ref
	}
	if e.ClaimDay != nil {
		day := *e.ClaimDay
		c.ClaimDay = &day
	}

	return &c
}

func cloneEvent(e *domain.OutboxEvent) *domain.OutboxEvent {
	c := *e
	if e.PublishedAt != nil {
		at := *e.PublishedAt
		c.PublishedAt = &at
	}

	return &c
}

// accountEntries returns the committed entries of an account, oldest first. Caller holds mu.
func (s *Store) accountEntries(accountID string) []*domain.LedgerEntry {
	idx := s.byAccount[accountID]
	out := make([]*domain.LedgerEntry, 0, len(idx))
	for _, i := range idx {
		out = append(out, s.entries[i])
	}

	return out
}
