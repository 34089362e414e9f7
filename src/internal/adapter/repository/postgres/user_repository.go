package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/api-sage/atm-ledger/src/internal/domain"
	"github.com/api-sage/atm-ledger/src/internal/logger"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateWithAccount(ctx context.Context, user domain.User, account domain.Account) (_ domain.User, _ domain.Account, err error) {
	logger.Info("user repository create with account", logger.Fields{
		"userId":        user.ID,
		"username":      user.Username,
		"accountNumber": account.AccountNumber,
	})

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.User{}, domain.Account{}, fmt.Errorf("begin registration transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `
INSERT INTO users (
	id,
	username,
	email,
	identification,
	phone_number,
	password_hash
) VALUES ($1, $2, $3, $4, $5, $6)
RETURNING created_at`

	if err = tx.QueryRowContext(
		ctx,
		query,
		user.ID,
		user.Username,
		user.Email,
		user.Identification,
		user.PhoneNumber,
		user.PasswordHash,
	).Scan(&user.CreatedAt); err != nil {
		if hasCode(err, uniqueViolation) {
			err = domain.ErrDuplicateUser
			return domain.User{}, domain.Account{}, err
		}
		logger.Error("user repository create failed", err, logger.Fields{"username": user.Username})
		return domain.User{}, domain.Account{}, fmt.Errorf("create user: %w", err)
	}

	account.OwnerID = user.ID
	created, err := insertAccount(ctx, tx, account)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateAccountNumber) {
			return domain.User{}, domain.Account{}, err
		}
		logger.Error("user repository create account failed", err, logger.Fields{"userId": user.ID})
		return domain.User{}, domain.Account{}, fmt.Errorf("create first account: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return domain.User{}, domain.Account{}, fmt.Errorf("commit registration transaction: %w", err)
	}

	logger.Info("user repository create with account success", logger.Fields{
		"userId":        user.ID,
		"accountNumber": created.AccountNumber,
	})
	return user, created, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	const query = `
SELECT id, username, email, identification, phone_number, password_hash, created_at
FROM users
WHERE id = $1`

	return r.getOne(ctx, query, id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	const query = `
SELECT id, username, email, identification, phone_number, password_hash, created_at
FROM users
WHERE username = $1`

	return r.getOne(ctx, query, username)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg string) (domain.User, error) {
	var (
		user  domain.User
		phone sql.NullString
	)
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Identification,
		&phone,
		&user.PasswordHash,
		&user.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		logger.Error("user repository get failed", err, nil)
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	if phone.Valid {
		user.PhoneNumber = &phone.String
	}

	return user, nil
}
