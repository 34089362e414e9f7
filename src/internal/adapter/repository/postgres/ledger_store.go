package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/api-sage/atm-ledger/src/internal/domain"
	"github.com/api-sage/atm-ledger/src/internal/logger"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type LedgerStore struct {
	db *sql.DB
}

func NewLedgerStore(db *sql.DB) *LedgerStore {
	return &LedgerStore{db: db}
}

func (s *LedgerStore) RunInTx(ctx context.Context, accountNumbers []string, fn func(ctx context.Context, tx domain.LedgerTx) error) (err error) {
	numbers := sortedUnique(accountNumbers)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("ledger store begin tx failed", err, nil)
		return fmt.Errorf("begin ledger transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Rows are locked in the ORDER BY order, so every unit acquires its
	// accounts in ascending account-number order.
	const lockQuery = `
SELECT account_number, owner_id, account_class, balance, created_at, updated_at
FROM accounts
WHERE account_number = ANY($1)
ORDER BY account_number
FOR UPDATE`

	rows, err := tx.QueryContext(ctx, lockQuery, pq.Array(numbers))
	if err != nil {
		logger.Error("ledger store lock accounts failed", err, logger.Fields{"accountNumbers": numbers})
		return fmt.Errorf("lock accounts: %w", err)
	}

	ltx := &ledgerTx{
		tx:       tx,
		locked:   make(map[string]struct{}, len(numbers)),
		accounts: make(map[string]domain.Account, len(numbers)),
	}
	for _, number := range numbers {
		ltx.locked[number] = struct{}{}
	}

	for rows.Next() {
		var account domain.Account
		if err = scanAccount(rows, &account); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan locked account: %w", err)
		}
		ltx.accounts[account.AccountNumber] = account
	}
	if err = rows.Err(); err != nil {
		_ = rows.Close()
		return fmt.Errorf("iterate locked accounts: %w", err)
	}
	if err = rows.Close(); err != nil {
		return fmt.Errorf("close locked accounts: %w", err)
	}

	if err = fn(ctx, ltx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		logger.Error("ledger store commit failed", err, logger.Fields{"accountNumbers": numbers})
		return fmt.Errorf("commit ledger transaction: %w", err)
	}

	return nil
}

type ledgerTx struct {
	tx       *sql.Tx
	locked   map[string]struct{}
	accounts map[string]domain.Account
}

func (t *ledgerTx) lookup(accountNumber string) (domain.Account, error) {
	if _, ok := t.locked[accountNumber]; !ok {
		return domain.Account{}, fmt.Errorf("account %s was not locked by this ledger unit", accountNumber)
	}
	account, ok := t.accounts[accountNumber]
	if !ok {
		return domain.Account{}, domain.ErrNotFound
	}
	return account, nil
}

func (t *ledgerTx) Account(_ context.Context, accountNumber string) (domain.Account, error) {
	return t.lookup(accountNumber)
}

func (t *ledgerTx) UpdateBalance(ctx context.Context, accountNumber string, expected decimal.Decimal, next decimal.Decimal) error {
	account, err := t.lookup(accountNumber)
	if err != nil {
		return err
	}

	const query = `
UPDATE accounts
SET balance = $3::numeric,
    updated_at = NOW()
WHERE account_number = $1
  AND balance = $2::numeric
RETURNING updated_at`

	if err := t.tx.QueryRowContext(ctx, query, accountNumber, expected, next).Scan(&account.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrBalanceConflict
		}
		if hasCode(err, checkViolation) {
			return domain.ErrInsufficientFunds
		}
		logger.Error("ledger store update balance failed", err, logger.Fields{"accountNumber": accountNumber})
		return fmt.Errorf("update balance: %w", err)
	}

	account.Balance = next
	t.accounts[accountNumber] = account
	return nil
}

func (t *ledgerTx) AppendTransaction(ctx context.Context, entry domain.Transaction) (domain.Transaction, error) {
	if _, err := t.lookup(entry.AccountNumber); err != nil {
		return domain.Transaction{}, err
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	const query = `
INSERT INTO transactions (
	id,
	account_number,
	kind,
	direction,
	amount,
	description,
	counterparty_account
) VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING seq, created_at`

	if err := t.tx.QueryRowContext(
		ctx,
		query,
		entry.ID,
		entry.AccountNumber,
		entry.Kind,
		entry.Direction,
		entry.Amount,
		entry.Description,
		entry.CounterpartyAccount,
	).Scan(&entry.Seq, &entry.CreatedAt); err != nil {
		logger.Error("ledger store append transaction failed", err, logger.Fields{
			"accountNumber": entry.AccountNumber,
			"kind":          entry.Kind,
		})
		return domain.Transaction{}, fmt.Errorf("append transaction: %w", err)
	}

	return entry, nil
}
