package domain

import "errors"

var (
	ErrNotFound           = errors.New("record not found")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidDestination = errors.New("destination account must differ from source account")
	ErrStorageFailure     = errors.New("storage failure")
)

var (
	ErrBalanceConflict        = errors.New("balance changed concurrently")
	ErrDuplicateAccountNumber = errors.New("account number already exists")
	ErrAccountNumberExhausted = errors.New("could not allocate a unique account number")
	ErrDuplicateUser          = errors.New("user already exists")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrAccountNotOwned        = errors.New("account does not belong to user")
	ErrInvalidAccountClass    = errors.New("invalid account class")
	ErrInvalidBill            = errors.New("invalid bill payment")
)
