package models

import (
	"errors"
	"strings"

	"github.com/api-sage/atm-ledger/src/internal/domain"
)

type OpenAccountRequest struct {
	AccountClass string `json:"accountClass"`
}

func (r OpenAccountRequest) Validate() error {
	if !domain.AccountClass(NormalizeCode(r.AccountClass)).Valid() {
		return errors.New("accountClass must be CURRENT or SAVINGS")
	}
	return nil
}

type AccountResponse struct {
	AccountNumber string `json:"accountNumber"`
	AccountClass  string `json:"accountClass"`
	Balance       string `json:"balance"`
	CreatedAt     string `json:"createdAt"`
	UpdatedAt     string `json:"updatedAt"`
}

// AccountDetailsResponse carries the full dashboard for an owned account and
// only the number and class for anyone else's, enough to confirm a transfer
// destination.
type AccountDetailsResponse struct {
	AccountNumber      string                `json:"accountNumber"`
	AccountClass       string                `json:"accountClass"`
	Owned              bool                  `json:"owned"`
	Balance            *string               `json:"balance,omitempty"`
	RecentTransactions []TransactionResponse `json:"recentTransactions,omitempty"`
}

// ValidateAccountNumber checks the shape of a path or body account number.
func ValidateAccountNumber(field string, value string) error {
	if !isTenDigits(value) {
		return errors.New(field + " must be exactly 10 digits")
	}
	return nil
}

func joinErrors(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return errors.New(strings.Join(errs, "; "))
}
