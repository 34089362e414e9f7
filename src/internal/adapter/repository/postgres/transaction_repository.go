package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/api-sage/atm-ledger/src/internal/domain"
	"github.com/api-sage/atm-ledger/src/internal/logger"
)

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) ListRecent(ctx context.Context, accountNumber string, limit int) ([]domain.Transaction, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE account_number = $1)`, accountNumber).Scan(&exists); err != nil {
		logger.Error("transaction repository account check failed", err, logger.Fields{"accountNumber": accountNumber})
		return nil, fmt.Errorf("check account exists: %w", err)
	}
	if !exists {
		return nil, domain.ErrNotFound
	}
	if limit <= 0 {
		return []domain.Transaction{}, nil
	}

	const query = `
SELECT id, seq, account_number, kind, direction, amount, description, counterparty_account, created_at
FROM transactions
WHERE account_number = $1
ORDER BY created_at DESC, seq DESC
LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, accountNumber, limit)
	if err != nil {
		logger.Error("transaction repository list recent failed", err, logger.Fields{"accountNumber": accountNumber})
		return nil, fmt.Errorf("list recent transactions: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.Transaction, 0, limit)
	for rows.Next() {
		var (
			entry        domain.Transaction
			description  sql.NullString
			counterparty sql.NullString
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.Seq,
			&entry.AccountNumber,
			&entry.Kind,
			&entry.Direction,
			&entry.Amount,
			&description,
			&counterparty,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if description.Valid {
			entry.Description = &description.String
		}
		if counterparty.Valid {
			entry.CounterpartyAccount = &counterparty.String
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return entries, nil
}
