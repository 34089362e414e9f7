package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// LedgerTx is the view of storage inside one atomic ledger unit. Only the
// accounts named when the unit was opened are visible and writable.
type LedgerTx interface {
	Account(ctx context.Context, accountNumber string) (Account, error)
	// UpdateBalance replaces the balance only if it still equals expected.
	UpdateBalance(ctx context.Context, accountNumber string, expected decimal.Decimal, next decimal.Decimal) error
	AppendTransaction(ctx context.Context, entry Transaction) (Transaction, error)
}

// LedgerStore runs fn with exclusive access to the named accounts, locked in
// ascending account-number order. Everything fn writes commits together when
// fn returns nil and is discarded otherwise.
type LedgerStore interface {
	RunInTx(ctx context.Context, accountNumbers []string, fn func(ctx context.Context, tx LedgerTx) error) error
}
