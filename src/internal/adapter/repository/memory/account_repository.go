package memory

import (
	"context"
	"sort"

	"github.com/api-sage/atm-ledger/src/internal/domain"
)

func (s *Store) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return domain.Account{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[account.OwnerID]; !ok {
		return domain.Account{}, domain.ErrNotFound
	}
	return s.insertAccountLocked(account)
}

func (s *Store) insertAccountLocked(account domain.Account) (domain.Account, error) {
	if _, exists := s.accounts[account.AccountNumber]; exists {
		return domain.Account{}, domain.ErrDuplicateAccountNumber
	}

	now := s.now()
	account.Balance = account.Balance.Round(domain.AmountScale)
	account.CreatedAt = now
	account.UpdatedAt = now
	s.accounts[account.AccountNumber] = &accountEntry{account: account}
	return account, nil
}

func (s *Store) GetByAccountNumber(ctx context.Context, accountNumber string) (domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return domain.Account{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.accounts[accountNumber]
	if !ok {
		return domain.Account{}, domain.ErrNotFound
	}
	return entry.account, nil
}

func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Account, 0)
	for _, entry := range s.accounts {
		if entry.account.OwnerID == ownerID {
			out = append(out, entry.account)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].AccountNumber < out[j].AccountNumber
	})
	return out, nil
}
