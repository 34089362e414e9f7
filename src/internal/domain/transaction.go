package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionKind string

const (
	TransactionKindDeposit     TransactionKind = "DEPOSIT"
	TransactionKindWithdrawal  TransactionKind = "WITHDRAWAL"
	TransactionKindTransfer    TransactionKind = "TRANSFER"
	TransactionKindBillPayment TransactionKind = "BILL_PAYMENT"
)

type EntryDirection string

const (
	EntryDebit  EntryDirection = "DEBIT"
	EntryCredit EntryDirection = "CREDIT"
)

// Transaction is an append-only audit entry. Seq is assigned by storage and
// orders entries that share a timestamp.
type Transaction struct {
	ID            string
	Seq           int64
	AccountNumber string
	Kind          TransactionKind
	Direction     EntryDirection
	Amount        decimal.Decimal
	Description   *string
	// CounterpartyAccount is set for transfers only: the destination on the
	// debit entry, the source on the mirrored credit entry.
	CounterpartyAccount *string
	CreatedAt           time.Time
}
