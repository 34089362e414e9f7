package domain

import "github.com/shopspring/decimal"

// Receipt is the outcome of a single-account balance change.
type Receipt struct {
	AccountNumber string
	Balance       decimal.Decimal
	Transaction   Transaction
}

// TransferReceipt is the outcome of a transfer. Credit is nil when mirrored
// credit entries are disabled.
type TransferReceipt struct {
	SourceAccountNumber      string
	DestinationAccountNumber string
	Amount                   decimal.Decimal
	SourceBalance            decimal.Decimal
	DestinationBalance       decimal.Decimal
	Debit                    Transaction
	Credit                   *Transaction
}
