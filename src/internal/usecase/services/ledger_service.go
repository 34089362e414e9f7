package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/api-sage/atm-ledger/src/internal/domain"
	"github.com/api-sage/atm-ledger/src/internal/logger"
	"github.com/shopspring/decimal"
)

type LedgerOption func(*LedgerService)

// WithMirrorTransferCredits controls whether a transfer also appends a CREDIT
// entry on the destination account.
func WithMirrorTransferCredits(enabled bool) LedgerOption {
	return func(s *LedgerService) {
		s.mirrorTransferCredits = enabled
	}
}

// LedgerService owns every balance mutation. Each operation is one atomic
// unit of the LedgerStore: balances and audit entries commit together.
type LedgerService struct {
	store                 domain.LedgerStore
	accountRepo           domain.AccountRepository
	transactionRepo       domain.TransactionRepository
	allocator             *AccountNumberAllocator
	mirrorTransferCredits bool
}

func NewLedgerService(
	store domain.LedgerStore,
	accountRepo domain.AccountRepository,
	transactionRepo domain.TransactionRepository,
	allocator *AccountNumberAllocator,
	opts ...LedgerOption,
) *LedgerService {
	s := &LedgerService{
		store:                 store,
		accountRepo:           accountRepo,
		transactionRepo:       transactionRepo,
		allocator:             allocator,
		mirrorTransferCredits: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LedgerService) OpenAccount(ctx context.Context, ownerID string, class domain.AccountClass) (domain.Account, error) {
	logger.Info("ledger open account request", logger.Fields{
		"ownerId": ownerID,
		"class":   class,
	})

	if !class.Valid() {
		return domain.Account{}, fmt.Errorf("%w: %q", domain.ErrInvalidAccountClass, class)
	}

	var created domain.Account
	err := s.allocator.Allocate(ctx, func(ctx context.Context, accountNumber string) error {
		account, err := s.accountRepo.Create(ctx, domain.Account{
			AccountNumber: accountNumber,
			OwnerID:       ownerID,
			Class:         class,
			Balance:       decimal.Zero,
		})
		if err != nil {
			return err
		}
		created = account
		return nil
	})
	if err != nil {
		return domain.Account{}, s.fail("open account", err, logger.Fields{"ownerId": ownerID})
	}

	logger.Info("ledger open account success", logger.Fields{
		"ownerId":       ownerID,
		"accountNumber": created.AccountNumber,
	})
	return created, nil
}

func (s *LedgerService) GetAccount(ctx context.Context, accountNumber string) (domain.Account, error) {
	account, err := s.accountRepo.GetByAccountNumber(ctx, accountNumber)
	if err != nil {
		return domain.Account{}, s.fail("get account", err, logger.Fields{"accountNumber": accountNumber})
	}
	return account, nil
}

func (s *LedgerService) ListAccounts(ctx context.Context, ownerID string) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, s.fail("list accounts", err, logger.Fields{"ownerId": ownerID})
	}
	return accounts, nil
}

func (s *LedgerService) Deposit(ctx context.Context, accountNumber string, amount decimal.Decimal) (domain.Receipt, error) {
	fields := logger.Fields{
		"accountNumber": accountNumber,
		"amount":        amount.String(),
	}
	logger.Info("ledger deposit request", fields)

	if !domain.ValidAmount(amount) {
		return domain.Receipt{}, invalidAmount(amount)
	}

	var receipt domain.Receipt
	err := s.store.RunInTx(ctx, []string{accountNumber}, func(ctx context.Context, tx domain.LedgerTx) error {
		account, err := tx.Account(ctx, accountNumber)
		if err != nil {
			return err
		}

		next, err := credited(account.Balance, amount)
		if err != nil {
			return err
		}
		if err := tx.UpdateBalance(ctx, accountNumber, account.Balance, next); err != nil {
			return err
		}

		entry, err := tx.AppendTransaction(ctx, domain.Transaction{
			AccountNumber: accountNumber,
			Kind:          domain.TransactionKindDeposit,
			Direction:     domain.EntryCredit,
			Amount:        amount,
		})
		if err != nil {
			return err
		}

		receipt = domain.Receipt{AccountNumber: accountNumber, Balance: next, Transaction: entry}
		return nil
	})
	if err != nil {
		return domain.Receipt{}, s.fail("deposit", err, fields)
	}

	logger.Info("ledger deposit success", logger.Fields{
		"accountNumber": accountNumber,
		"balance":       receipt.Balance.StringFixed(domain.AmountScale),
	})
	return receipt, nil
}

func (s *LedgerService) Withdraw(ctx context.Context, accountNumber string, amount decimal.Decimal) (domain.Receipt, error) {
	return s.debit(ctx, "withdraw", accountNumber, amount, domain.TransactionKindWithdrawal, nil)
}

// PayBill debits the account like a withdrawal and records the bill being paid.
func (s *LedgerService) PayBill(ctx context.Context, accountNumber string, bill domain.BillPayment) (domain.Receipt, error) {
	billNumber := strings.TrimSpace(bill.BillNumber)
	if !bill.ServiceType.Valid() {
		return domain.Receipt{}, fmt.Errorf("%w: %q", domain.ErrInvalidBill, bill.ServiceType)
	}
	if billNumber == "" || len(billNumber) > domain.MaxBillNumberLength {
		return domain.Receipt{}, fmt.Errorf("%w: bill number must be 1-%d characters", domain.ErrInvalidBill, domain.MaxBillNumberLength)
	}

	description := fmt.Sprintf("%s bill %s", bill.ServiceType, billNumber)
	return s.debit(ctx, "pay bill", accountNumber, bill.Amount, domain.TransactionKindBillPayment, &description)
}

func (s *LedgerService) debit(
	ctx context.Context,
	op string,
	accountNumber string,
	amount decimal.Decimal,
	kind domain.TransactionKind,
	description *string,
) (domain.Receipt, error) {
	fields := logger.Fields{
		"accountNumber": accountNumber,
		"amount":        amount.String(),
		"kind":          kind,
	}
	logger.Info("ledger "+op+" request", fields)

	if !domain.ValidAmount(amount) {
		return domain.Receipt{}, invalidAmount(amount)
	}

	var receipt domain.Receipt
	err := s.store.RunInTx(ctx, []string{accountNumber}, func(ctx context.Context, tx domain.LedgerTx) error {
		account, err := tx.Account(ctx, accountNumber)
		if err != nil {
			return err
		}
		if amount.GreaterThan(account.Balance) {
			return domain.ErrInsufficientFunds
		}

		next := account.Balance.Sub(amount)
		if err := tx.UpdateBalance(ctx, accountNumber, account.Balance, next); err != nil {
			return err
		}

		entry, err := tx.AppendTransaction(ctx, domain.Transaction{
			AccountNumber: accountNumber,
			Kind:          kind,
			Direction:     domain.EntryDebit,
			Amount:        amount,
			Description:   description,
		})
		if err != nil {
			return err
		}

		receipt = domain.Receipt{AccountNumber: accountNumber, Balance: next, Transaction: entry}
		return nil
	})
	if err != nil {
		return domain.Receipt{}, s.fail(op, err, fields)
	}

	logger.Info("ledger "+op+" success", logger.Fields{
		"accountNumber": accountNumber,
		"balance":       receipt.Balance.StringFixed(domain.AmountScale),
	})
	return receipt, nil
}

func (s *LedgerService) Transfer(ctx context.Context, sourceAccountNumber string, destinationAccountNumber string, amount decimal.Decimal) (domain.TransferReceipt, error) {
	fields := logger.Fields{
		"sourceAccountNumber":      sourceAccountNumber,
		"destinationAccountNumber": destinationAccountNumber,
		"amount":                   amount.String(),
	}
	logger.Info("ledger transfer request", fields)

	if sourceAccountNumber == destinationAccountNumber {
		return domain.TransferReceipt{}, domain.ErrInvalidDestination
	}
	if !domain.ValidAmount(amount) {
		return domain.TransferReceipt{}, invalidAmount(amount)
	}

	var receipt domain.TransferReceipt
	accounts := []string{sourceAccountNumber, destinationAccountNumber}
	err := s.store.RunInTx(ctx, accounts, func(ctx context.Context, tx domain.LedgerTx) error {
		source, err := tx.Account(ctx, sourceAccountNumber)
		if err != nil {
			return fmt.Errorf("source account %s: %w", sourceAccountNumber, err)
		}
		destination, err := tx.Account(ctx, destinationAccountNumber)
		if err != nil {
			return fmt.Errorf("destination account %s: %w", destinationAccountNumber, err)
		}

		if amount.GreaterThan(source.Balance) {
			return domain.ErrInsufficientFunds
		}
		nextSource := source.Balance.Sub(amount)
		nextDestination, err := credited(destination.Balance, amount)
		if err != nil {
			return err
		}

		if err := tx.UpdateBalance(ctx, sourceAccountNumber, source.Balance, nextSource); err != nil {
			return err
		}
		if err := tx.UpdateBalance(ctx, destinationAccountNumber, destination.Balance, nextDestination); err != nil {
			return err
		}

		debitDescription := "Transfer to account " + destinationAccountNumber
		debit, err := tx.AppendTransaction(ctx, domain.Transaction{
			AccountNumber:       sourceAccountNumber,
			Kind:                domain.TransactionKindTransfer,
			Direction:           domain.EntryDebit,
			Amount:              amount,
			Description:         &debitDescription,
			CounterpartyAccount: &destinationAccountNumber,
		})
		if err != nil {
			return err
		}

		receipt = domain.TransferReceipt{
			SourceAccountNumber:      sourceAccountNumber,
			DestinationAccountNumber: destinationAccountNumber,
			Amount:                   amount,
			SourceBalance:            nextSource,
			DestinationBalance:       nextDestination,
			Debit:                    debit,
		}

		if !s.mirrorTransferCredits {
			return nil
		}

		creditDescription := "Transfer from account " + sourceAccountNumber
		credit, err := tx.AppendTransaction(ctx, domain.Transaction{
			AccountNumber:       destinationAccountNumber,
			Kind:                domain.TransactionKindTransfer,
			Direction:           domain.EntryCredit,
			Amount:              amount,
			Description:         &creditDescription,
			CounterpartyAccount: &sourceAccountNumber,
		})
		if err != nil {
			return err
		}
		receipt.Credit = &credit
		return nil
	})
	if err != nil {
		return domain.TransferReceipt{}, s.fail("transfer", err, fields)
	}

	logger.Info("ledger transfer success", logger.Fields{
		"sourceAccountNumber":      sourceAccountNumber,
		"destinationAccountNumber": destinationAccountNumber,
		"sourceBalance":            receipt.SourceBalance.StringFixed(domain.AmountScale),
	})
	return receipt, nil
}

// ListRecentTransactions returns up to limit entries, newest first.
func (s *LedgerService) ListRecentTransactions(ctx context.Context, accountNumber string, limit int) ([]domain.Transaction, error) {
	entries, err := s.transactionRepo.ListRecent(ctx, accountNumber, limit)
	if err != nil {
		return nil, s.fail("list recent transactions", err, logger.Fields{
			"accountNumber": accountNumber,
			"limit":         limit,
		})
	}
	return entries, nil
}

// fail logs err and returns it unchanged when it is a ledger outcome the
// caller can act on; anything else is reported as a storage failure.
func (s *LedgerService) fail(op string, err error, fields logger.Fields) error {
	if isLedgerOutcome(err) {
		logger.Info("ledger "+op+" rejected", mergeFields(fields, logger.Fields{"reason": err.Error()}))
		return err
	}

	logger.Error("ledger "+op+" failed", err, fields)
	return storageFailure(op, err)
}

func isLedgerOutcome(err error) bool {
	for _, target := range []error{
		domain.ErrNotFound,
		domain.ErrInsufficientFunds,
		domain.ErrInvalidAmount,
		domain.ErrInvalidDestination,
		domain.ErrInvalidAccountClass,
		domain.ErrInvalidBill,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func credited(balance decimal.Decimal, amount decimal.Decimal) (decimal.Decimal, error) {
	next := balance.Add(amount)
	if next.GreaterThan(domain.MaxAmount) {
		return decimal.Zero, fmt.Errorf("%w: balance would exceed %s", domain.ErrInvalidAmount, domain.MaxAmount.StringFixed(domain.AmountScale))
	}
	return next, nil
}

func invalidAmount(amount decimal.Decimal) error {
	return fmt.Errorf("%w: %s must be positive with at most %d decimal places and not exceed %s",
		domain.ErrInvalidAmount, amount.String(), domain.AmountScale, domain.MaxAmount.StringFixed(domain.AmountScale))
}

func mergeFields(a logger.Fields, b logger.Fields) logger.Fields {
	out := make(logger.Fields, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}
