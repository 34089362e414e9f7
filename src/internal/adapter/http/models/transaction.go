package models

import (
	"strings"

	"github.com/api-sage/atm-ledger/src/internal/domain"
	"github.com/shopspring/decimal"
)

type DepositRequest struct {
	AccountNumber string          `json:"accountNumber"`
	Amount        decimal.Decimal `json:"amount"`
}

func (r DepositRequest) Validate() error {
	var errs []string

	if !isTenDigits(r.AccountNumber) {
		errs = append(errs, "accountNumber must be exactly 10 digits")
	}
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, "amount must be greater than zero")
	}

	return joinErrors(errs)
}

type WithdrawRequest struct {
	AccountNumber string          `json:"accountNumber"`
	Amount        decimal.Decimal `json:"amount"`
}

func (r WithdrawRequest) Validate() error {
	return DepositRequest(r).Validate()
}

type TransferRequest struct {
	SourceAccountNumber      string          `json:"sourceAccountNumber"`
	DestinationAccountNumber string          `json:"destinationAccountNumber"`
	Amount                   decimal.Decimal `json:"amount"`
}

func (r TransferRequest) Validate() error {
	var errs []string

	if !isTenDigits(r.SourceAccountNumber) {
		errs = append(errs, "sourceAccountNumber must be exactly 10 digits")
	}
	if !isTenDigits(r.DestinationAccountNumber) {
		errs = append(errs, "destinationAccountNumber must be exactly 10 digits")
	}
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, "amount must be greater than zero")
	}

	return joinErrors(errs)
}

type BillPaymentRequest struct {
	AccountNumber string          `json:"accountNumber"`
	ServiceType   string          `json:"serviceType"`
	BillNumber    string          `json:"billNumber"`
	Amount        decimal.Decimal `json:"amount"`
}

func (r BillPaymentRequest) Validate() error {
	var errs []string

	if !isTenDigits(r.AccountNumber) {
		errs = append(errs, "accountNumber must be exactly 10 digits")
	}
	if !domain.ServiceType(NormalizeCode(r.ServiceType)).Valid() {
		errs = append(errs, "serviceType must be WATER or ELECTRICITY")
	}
	billNumber := strings.TrimSpace(r.BillNumber)
	if billNumber == "" {
		errs = append(errs, "billNumber is required")
	} else if len(billNumber) > domain.MaxBillNumberLength {
		errs = append(errs, "billNumber must be at most 50 characters")
	}
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, "amount must be greater than zero")
	}

	return joinErrors(errs)
}

type TransactionResponse struct {
	ID                  string  `json:"id"`
	AccountNumber       string  `json:"accountNumber"`
	Kind                string  `json:"kind"`
	Direction           string  `json:"direction"`
	Amount              string  `json:"amount"`
	Description         *string `json:"description,omitempty"`
	CounterpartyAccount *string `json:"counterpartyAccount,omitempty"`
	CreatedAt           string  `json:"createdAt"`
}

type ReceiptResponse struct {
	AccountNumber string              `json:"accountNumber"`
	Balance       string              `json:"balance"`
	Transaction   TransactionResponse `json:"transaction"`
}

type TransferResponse struct {
	SourceAccountNumber      string               `json:"sourceAccountNumber"`
	DestinationAccountNumber string               `json:"destinationAccountNumber"`
	Amount                   string               `json:"amount"`
	SourceBalance            string               `json:"sourceBalance"`
	Debit                    TransactionResponse  `json:"debit"`
	Credit                   *TransactionResponse `json:"credit,omitempty"`
}
