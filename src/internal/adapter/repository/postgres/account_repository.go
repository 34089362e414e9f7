package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/api-sage/atm-ledger/src/internal/domain"
	"github.com/api-sage/atm-ledger/src/internal/logger"
)

type rowScanner interface {
	Scan(dest ...any) error
}

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	logger.Info("account repository create", logger.Fields{
		"ownerId":       account.OwnerID,
		"accountNumber": account.AccountNumber,
		"class":         account.Class,
	})

	created, err := insertAccount(ctx, r.db, account)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateAccountNumber) || errors.Is(err, domain.ErrNotFound) {
			return domain.Account{}, err
		}
		logger.Error("account repository create failed", err, logger.Fields{
			"ownerId":       account.OwnerID,
			"accountNumber": account.AccountNumber,
		})
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}

	logger.Info("account repository create success", logger.Fields{
		"accountNumber": created.AccountNumber,
	})
	return created, nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func insertAccount(ctx context.Context, q queryRower, account domain.Account) (domain.Account, error) {
	const query = `
INSERT INTO accounts (
	account_number,
	owner_id,
	account_class,
	balance
) VALUES ($1, $2, $3, $4)
RETURNING created_at, updated_at`

	account.Balance = account.Balance.Round(domain.AmountScale)
	if err := q.QueryRowContext(
		ctx,
		query,
		account.AccountNumber,
		account.OwnerID,
		account.Class,
		account.Balance,
	).Scan(&account.CreatedAt, &account.UpdatedAt); err != nil {
		if pqErr, ok := pqError(err); ok {
			switch string(pqErr.Code) {
			case uniqueViolation:
				if pqErr.Constraint == accountsPrimaryKey {
					return domain.Account{}, domain.ErrDuplicateAccountNumber
				}
			case foreignKeyViolation:
				return domain.Account{}, domain.ErrNotFound
			}
		}
		return domain.Account{}, err
	}

	return account, nil
}

func (r *AccountRepository) GetByAccountNumber(ctx context.Context, accountNumber string) (domain.Account, error) {
	const query = `
SELECT account_number, owner_id, account_class, balance, created_at, updated_at
FROM accounts
WHERE account_number = $1`

	var account domain.Account
	if err := scanAccount(r.db.QueryRowContext(ctx, query, accountNumber), &account); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.Info("account repository record not found", logger.Fields{
				"accountNumber": accountNumber,
			})
			return domain.Account{}, domain.ErrNotFound
		}
		logger.Error("account repository get failed", err, logger.Fields{
			"accountNumber": accountNumber,
		})
		return domain.Account{}, fmt.Errorf("get account by account number: %w", err)
	}

	return account, nil
}

func (r *AccountRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Account, error) {
	const query = `
SELECT account_number, owner_id, account_class, balance, created_at, updated_at
FROM accounts
WHERE owner_id = $1
ORDER BY created_at, account_number`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		logger.Error("account repository list by owner failed", err, logger.Fields{"ownerId": ownerID})
		return nil, fmt.Errorf("list accounts by owner: %w", err)
	}
	defer rows.Close()

	accounts := make([]domain.Account, 0)
	for rows.Next() {
		var account domain.Account
		if err := scanAccount(rows, &account); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}

	return accounts, nil
}

func scanAccount(row rowScanner, account *domain.Account) error {
	return row.Scan(
		&account.AccountNumber,
		&account.OwnerID,
		&account.Class,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
}
