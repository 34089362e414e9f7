package domain

import "context"

type UserRepository interface {
	// CreateWithAccount stores a new user and its first account in one atomic
	// unit. It fails with ErrDuplicateUser or ErrDuplicateAccountNumber.
	CreateWithAccount(ctx context.Context, user User, account Account) (User, Account, error)
	GetByID(ctx context.Context, id string) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
}
