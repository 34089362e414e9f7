// Package memory is an in-process implementation of the ledger storage
// contracts. It backs the memory storage driver and the service tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/api-sage/atm-ledger/src/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Option func(*Store)

// WithClock overrides the time source used for created/updated timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

type accountEntry struct {
	// lock serialises ledger units that touch this account.
	lock    sync.Mutex
	account domain.Account
}

type Store struct {
	mu              sync.RWMutex
	users           map[string]domain.User
	usernames       map[string]string
	emails          map[string]string
	identifications map[string]string
	accounts        map[string]*accountEntry
	transactions    map[string][]domain.Transaction
	seq             atomic.Int64
	now             func() time.Time
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		users:           make(map[string]domain.User),
		usernames:       make(map[string]string),
		emails:          make(map[string]string),
		identifications: make(map[string]string),
		accounts:        make(map[string]*accountEntry),
		transactions:    make(map[string][]domain.Transaction),
		now:             func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) RunInTx(ctx context.Context, accountNumbers []string, fn func(ctx context.Context, tx domain.LedgerTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	numbers := sortedUnique(accountNumbers)

	s.mu.RLock()
	entries := make([]*accountEntry, 0, len(numbers))
	for _, number := range numbers {
		if entry, ok := s.accounts[number]; ok {
			entries = append(entries, entry)
		}
	}
	s.mu.RUnlock()

	for _, entry := range entries {
		entry.lock.Lock()
	}
	defer func() {
		for i := len(entries) - 1; i >= 0; i-- {
			entries[i].lock.Unlock()
		}
	}()

	tx := &ledgerTx{
		store:    s,
		locked:   make(map[string]struct{}, len(numbers)),
		accounts: make(map[string]domain.Account, len(entries)),
		dirty:    make(map[string]struct{}),
	}
	for _, number := range numbers {
		tx.locked[number] = struct{}{}
	}

	s.mu.RLock()
	for _, entry := range entries {
		tx.accounts[entry.account.AccountNumber] = entry.account
	}
	s.mu.RUnlock()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.commit(tx)
	return nil
}

func (s *Store) commit(tx *ledgerTx) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for number := range tx.dirty {
		s.accounts[number].account = tx.accounts[number]
	}
	for _, entry := range tx.staged {
		s.transactions[entry.AccountNumber] = append(s.transactions[entry.AccountNumber], entry)
	}
}

type ledgerTx struct {
	store    *Store
	locked   map[string]struct{}
	accounts map[string]domain.Account
	dirty    map[string]struct{}
	staged   []domain.Transaction
}

func (tx *ledgerTx) lookup(accountNumber string) (domain.Account, error) {
	if _, ok := tx.locked[accountNumber]; !ok {
		return domain.Account{}, fmt.Errorf("account %s was not locked by this ledger unit", accountNumber)
	}
	account, ok := tx.accounts[accountNumber]
	if !ok {
		return domain.Account{}, domain.ErrNotFound
	}
	return account, nil
}

func (tx *ledgerTx) Account(_ context.Context, accountNumber string) (domain.Account, error) {
	return tx.lookup(accountNumber)
}

func (tx *ledgerTx) UpdateBalance(_ context.Context, accountNumber string, expected decimal.Decimal, next decimal.Decimal) error {
	account, err := tx.lookup(accountNumber)
	if err != nil {
		return err
	}
	if !account.Balance.Equal(expected) {
		return domain.ErrBalanceConflict
	}
	if next.IsNegative() {
		return domain.ErrInsufficientFunds
	}

	account.Balance = next
	account.UpdatedAt = tx.store.now()
	tx.accounts[accountNumber] = account
	tx.dirty[accountNumber] = struct{}{}
	return nil
}

func (tx *ledgerTx) AppendTransaction(_ context.Context, entry domain.Transaction) (domain.Transaction, error) {
	if _, err := tx.lookup(entry.AccountNumber); err != nil {
		return domain.Transaction{}, err
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.Seq = tx.store.seq.Add(1)
	entry.CreatedAt = tx.store.now()
	tx.staged = append(tx.staged, entry)
	return entry, nil
}

func sortedUnique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
