package memory

import (
	"context"

	"github.com/api-sage/atm-ledger/src/internal/domain"
)

func (s *Store) CreateWithAccount(ctx context.Context, user domain.User, account domain.Account) (domain.User, domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, domain.Account{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; ok {
		return domain.User{}, domain.Account{}, domain.ErrDuplicateUser
	}
	if _, ok := s.usernames[user.Username]; ok {
		return domain.User{}, domain.Account{}, domain.ErrDuplicateUser
	}
	if _, ok := s.emails[user.Email]; ok {
		return domain.User{}, domain.Account{}, domain.ErrDuplicateUser
	}
	if _, ok := s.identifications[user.Identification]; ok {
		return domain.User{}, domain.Account{}, domain.ErrDuplicateUser
	}
	if _, ok := s.accounts[account.AccountNumber]; ok {
		return domain.User{}, domain.Account{}, domain.ErrDuplicateAccountNumber
	}

	user.CreatedAt = s.now()
	account.OwnerID = user.ID
	created, err := s.insertAccountLocked(account)
	if err != nil {
		return domain.User{}, domain.Account{}, err
	}

	s.users[user.ID] = user
	s.usernames[user.Username] = user.ID
	s.emails[user.Email] = user.ID
	s.identifications[user.Identification] = user.ID

	return user, created, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return user, nil
}

func (s *Store) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usernames[username]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return s.users[id], nil
}
