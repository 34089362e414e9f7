package services

import (
	"errors"
	"fmt"

	"github.com/api-sage/atm-ledger/src/internal/domain"
)

// ErrValidation marks a request rejected before it reached the ledger.
var ErrValidation = errors.New("validation failed")

// storageFailure wraps err so callers can match both ErrStorageFailure and
// the underlying cause.
func storageFailure(op string, err error) error {
	if errors.Is(err, domain.ErrStorageFailure) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageFailure, err)
}
