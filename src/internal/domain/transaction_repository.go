package domain

import "context"

type TransactionRepository interface {
	ListRecent(ctx context.Context, accountNumber string, limit int) ([]Transaction, error)
}
