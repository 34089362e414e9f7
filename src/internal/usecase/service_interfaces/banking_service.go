package service_interfaces

import (
	"context"

	"github.com/api-sage/atm-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/atm-ledger/src/internal/commons"
)

type BankingService interface {
	OpenAccount(ctx context.Context, userID string, req models.OpenAccountRequest) (commons.Response[models.AccountResponse], error)
	ListAccounts(ctx context.Context, userID string) (commons.Response[[]models.AccountResponse], error)
	GetAccount(ctx context.Context, userID string, accountNumber string) (commons.Response[models.AccountDetailsResponse], error)
	ListTransactions(ctx context.Context, userID string, accountNumber string, limit int) (commons.Response[[]models.TransactionResponse], error)
	Deposit(ctx context.Context, userID string, req models.DepositRequest) (commons.Response[models.ReceiptResponse], error)
	Withdraw(ctx context.Context, userID string, req models.WithdrawRequest) (commons.Response[models.ReceiptResponse], error)
	Transfer(ctx context.Context, userID string, req models.TransferRequest) (commons.Response[models.TransferResponse], error)
	PayBill(ctx context.Context, userID string, req models.BillPaymentRequest) (commons.Response[models.ReceiptResponse], error)
}
