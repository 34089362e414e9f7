package services

import (
	"time"

	"github.com/api-sage/atm-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/atm-ledger/src/internal/domain"
	"github.com/shopspring/decimal"
)

func formatAmount(value decimal.Decimal) string {
	return value.StringFixed(domain.AmountScale)
}

func toAccountResponse(account domain.Account) models.AccountResponse {
	return models.AccountResponse{
		AccountNumber: account.AccountNumber,
		AccountClass:  string(account.Class),
		Balance:       formatAmount(account.Balance),
		CreatedAt:     account.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     account.UpdatedAt.Format(time.RFC3339),
	}
}

func toAccountResponses(accounts []domain.Account) []models.AccountResponse {
	out := make([]models.AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		out = append(out, toAccountResponse(account))
	}
	return out
}

func toTransactionResponse(entry domain.Transaction) models.TransactionResponse {
	return models.TransactionResponse{
		ID:                  entry.ID,
		AccountNumber:       entry.AccountNumber,
		Kind:                string(entry.Kind),
		Direction:           string(entry.Direction),
		Amount:              formatAmount(entry.Amount),
		Description:         entry.Description,
		CounterpartyAccount: entry.CounterpartyAccount,
		CreatedAt:           entry.CreatedAt.Format(time.RFC3339Nano),
	}
}

func toTransactionResponses(entries []domain.Transaction) []models.TransactionResponse {
	out := make([]models.TransactionResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, toTransactionResponse(entry))
	}
	return out
}

func toReceiptResponse(receipt domain.Receipt) models.ReceiptResponse {
	return models.ReceiptResponse{
		AccountNumber: receipt.AccountNumber,
		Balance:       formatAmount(receipt.Balance),
		Transaction:   toTransactionResponse(receipt.Transaction),
	}
}

func toTransferResponse(receipt domain.TransferReceipt) models.TransferResponse {
	response := models.TransferResponse{
		SourceAccountNumber:      receipt.SourceAccountNumber,
		DestinationAccountNumber: receipt.DestinationAccountNumber,
		Amount:                   formatAmount(receipt.Amount),
		SourceBalance:            formatAmount(receipt.SourceBalance),
		Debit:                    toTransactionResponse(receipt.Debit),
	}
	if receipt.Credit != nil {
		credit := toTransactionResponse(*receipt.Credit)
		response.Credit = &credit
	}
	return response
}
