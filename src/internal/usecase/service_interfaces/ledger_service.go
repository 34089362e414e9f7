package service_interfaces

import (
	"context"

	"github.com/api-sage/atm-ledger/src/internal/domain"
	"github.com/shopspring/decimal"
)

type LedgerService interface {
	OpenAccount(ctx context.Context, ownerID string, class domain.AccountClass) (domain.Account, error)
	GetAccount(ctx context.Context, accountNumber string) (domain.Account, error)
	ListAccounts(ctx context.Context, ownerID string) ([]domain.Account, error)
	Deposit(ctx context.Context, accountNumber string, amount decimal.Decimal) (domain.Receipt, error)
	Withdraw(ctx context.Context, accountNumber string, amount decimal.Decimal) (domain.Receipt, error)
	Transfer(ctx context.Context, sourceAccountNumber string, destinationAccountNumber string, amount decimal.Decimal) (domain.TransferReceipt, error)
	PayBill(ctx context.Context, accountNumber string, bill domain.BillPayment) (domain.Receipt, error)
	ListRecentTransactions(ctx context.Context, accountNumber string, limit int) ([]domain.Transaction, error)
}
