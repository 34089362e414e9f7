package models

import (
	"errors"
	"net/mail"
	"strings"

	"github.com/api-sage/atm-ledger/src/internal/domain"
)

const (
	minPasswordLength = 8
	// bcrypt ignores input past 72 bytes.
	maxPasswordLength = 72
)

type RegisterRequest struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Identification string `json:"identification"`
	PhoneNumber    string `json:"phoneNumber,omitempty"`
	Password       string `json:"password"`
	AccountClass   string `json:"accountClass"`
}

func (r RegisterRequest) Validate() error {
	var errs []string

	username := strings.TrimSpace(r.Username)
	if username == "" {
		errs = append(errs, "username is required")
	} else if len(username) > 150 {
		errs = append(errs, "username must be at most 150 characters")
	}

	email := strings.TrimSpace(r.Email)
	if email == "" {
		errs = append(errs, "email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs = append(errs, "email is not a valid address")
	}

	if !isTenDigits(r.Identification) {
		errs = append(errs, "identification must be exactly 10 digits")
	}
	if strings.TrimSpace(r.PhoneNumber) != "" && !isTenDigits(r.PhoneNumber) {
		errs = append(errs, "phoneNumber must be exactly 10 digits")
	}
	if len(r.Password) < minPasswordLength {
		errs = append(errs, "password must be at least 8 characters")
	} else if len(r.Password) > maxPasswordLength {
		errs = append(errs, "password must be at most 72 bytes")
	}
	if !domain.AccountClass(NormalizeCode(r.AccountClass)).Valid() {
		errs = append(errs, "accountClass must be CURRENT or SAVINGS")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type RegisterResponse struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	AccountNumber string `json:"accountNumber"`
	AccountClass  string `json:"accountClass"`
	CreatedAt     string `json:"createdAt"`
}

type ProfileResponse struct {
	ID             string            `json:"id"`
	Username       string            `json:"username"`
	Email          string            `json:"email"`
	Identification string            `json:"identification"`
	PhoneNumber    *string           `json:"phoneNumber,omitempty"`
	CreatedAt      string            `json:"createdAt"`
	Accounts       []AccountResponse `json:"accounts"`
}

// NormalizeCode trims and upper-cases enum-like request values.
func NormalizeCode(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

func isTenDigits(value string) bool {
	trimmed := strings.TrimSpace(value)
	return len(trimmed) == 10 && digitsOnly(trimmed)
}

func digitsOnly(value string) bool {
	for _, ch := range value {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}
