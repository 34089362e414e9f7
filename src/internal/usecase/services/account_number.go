package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/api-sage/atm-ledger/src/internal/domain"
	"github.com/api-sage/atm-ledger/src/internal/logger"
)

const accountNumberDigits = 10

var accountNumberSpace = big.NewInt(10_000_000_000)

// GenerateAccountNumber returns 10 uniformly random decimal digits.
func GenerateAccountNumber() (string, error) {
	n, err := rand.Int(rand.Reader, accountNumberSpace)
	if err != nil {
		return "", fmt.Errorf("read random account number: %w", err)
	}
	return fmt.Sprintf("%0*d", accountNumberDigits, n.Int64()), nil
}

// AccountNumberAllocator retries account creation with fresh numbers while
// storage reports a collision, up to a fixed number of attempts. With a
// 10^10 space a handful of attempts is enough for any realistic fill level.
type AccountNumberAllocator struct {
	generate    func() (string, error)
	maxAttempts int
}

func NewAccountNumberAllocator(maxAttempts int, generate func() (string, error)) *AccountNumberAllocator {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	if generate == nil {
		generate = GenerateAccountNumber
	}
	return &AccountNumberAllocator{generate: generate, maxAttempts: maxAttempts}
}

// Allocate calls insert with candidate numbers until it succeeds, fails with
// something other than ErrDuplicateAccountNumber, or attempts run out.
func (a *AccountNumberAllocator) Allocate(ctx context.Context, insert func(ctx context.Context, accountNumber string) error) error {
	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		number, err := a.generate()
		if err != nil {
			return err
		}

		err = insert(ctx, number)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrDuplicateAccountNumber) {
			return err
		}

		logger.Warn("account number collision", logger.Fields{
			"attempt":     attempt,
			"maxAttempts": a.maxAttempts,
		})
	}

	return domain.ErrAccountNumberExhausted
}
