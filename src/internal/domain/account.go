package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountClass string

const (
	AccountClassCurrent AccountClass = "CURRENT"
	AccountClassSavings AccountClass = "SAVINGS"
)

func (c AccountClass) Valid() bool {
	return c == AccountClassCurrent || c == AccountClassSavings
}

// Account is identified by its 10-digit account number and owned by exactly
// one user. Balance is never negative at rest.
type Account struct {
	AccountNumber string
	OwnerID       string
	Class         AccountClass
	Balance       decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
