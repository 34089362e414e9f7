package services

import (
	"context"
	"errors"
	"strings"

	"github.com/api-sage/atm-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/atm-ledger/src/internal/commons"
	"github.com/api-sage/atm-ledger/src/internal/domain"
	"github.com/api-sage/atm-ledger/src/internal/logger"
	"github.com/api-sage/atm-ledger/src/internal/usecase/service_interfaces"
)

const maxTransactionsLimit = 100

// BankingService is the customer-facing boundary over the ledger. The caller
// supplies the authenticated user ID; every account named in a request is
// checked against it before the ledger is touched.
type BankingService struct {
	ledger      service_interfaces.LedgerService
	recentLimit int
}

func NewBankingService(ledger service_interfaces.LedgerService, recentLimit int) *BankingService {
	if recentLimit <= 0 {
		recentLimit = 3
	}
	return &BankingService{ledger: ledger, recentLimit: recentLimit}
}

func (s *BankingService) OpenAccount(ctx context.Context, userID string, req models.OpenAccountRequest) (commons.Response[models.AccountResponse], error) {
	logger.Info("banking service open account request", logger.Fields{
		"userId":  userID,
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error()), errors.Join(ErrValidation, err)
	}

	account, err := s.ledger.OpenAccount(ctx, userID, domain.AccountClass(models.NormalizeCode(req.AccountClass)))
	if err != nil {
		return failure[models.AccountResponse](err, "failed to open account")
	}

	return commons.SuccessResponse("account opened successfully", toAccountResponse(account)), nil
}

func (s *BankingService) ListAccounts(ctx context.Context, userID string) (commons.Response[[]models.AccountResponse], error) {
	accounts, err := s.ledger.ListAccounts(ctx, userID)
	if err != nil {
		return failure[[]models.AccountResponse](err, "failed to list accounts")
	}
	return commons.SuccessResponse("accounts fetched successfully", toAccountResponses(accounts)), nil
}

// GetAccount returns the dashboard of an owned account: balance and the most
// recent transactions. Any other existing account is returned as a preview.
func (s *BankingService) GetAccount(ctx context.Context, userID string, accountNumber string) (commons.Response[models.AccountDetailsResponse], error) {
	logger.Info("banking service get account request", logger.Fields{
		"userId":        userID,
		"accountNumber": accountNumber,
	})

	if err := models.ValidateAccountNumber("accountNumber", accountNumber); err != nil {
		return commons.ErrorResponse[models.AccountDetailsResponse]("validation failed", err.Error()), errors.Join(ErrValidation, err)
	}

	account, err := s.ledger.GetAccount(ctx, strings.TrimSpace(accountNumber))
	if err != nil {
		return failure[models.AccountDetailsResponse](err, "failed to get account")
	}

	response := models.AccountDetailsResponse{
		AccountNumber: account.AccountNumber,
		AccountClass:  string(account.Class),
		Owned:         account.OwnerID == userID,
	}
	if !response.Owned {
		return commons.SuccessResponse("account found", response), nil
	}

	entries, err := s.ledger.ListRecentTransactions(ctx, account.AccountNumber, s.recentLimit)
	if err != nil {
		return failure[models.AccountDetailsResponse](err, "failed to get account")
	}
	balance := formatAmount(account.Balance)
	response.Balance = &balance
	response.RecentTransactions = toTransactionResponses(entries)

	return commons.SuccessResponse("account fetched successfully", response), nil
}

func (s *BankingService) ListTransactions(ctx context.Context, userID string, accountNumber string, limit int) (commons.Response[[]models.TransactionResponse], error) {
	if err := models.ValidateAccountNumber("accountNumber", accountNumber); err != nil {
		return commons.ErrorResponse[[]models.TransactionResponse]("validation failed", err.Error()), errors.Join(ErrValidation, err)
	}
	if limit > maxTransactionsLimit {
		limit = maxTransactionsLimit
	}

	accountNumber = strings.TrimSpace(accountNumber)
	if err := s.ensureOwned(ctx, userID, accountNumber); err != nil {
		return failure[[]models.TransactionResponse](err, "failed to list transactions")
	}

	entries, err := s.ledger.ListRecentTransactions(ctx, accountNumber, limit)
	if err != nil {
		return failure[[]models.TransactionResponse](err, "failed to list transactions")
	}
	return commons.SuccessResponse("transactions fetched successfully", toTransactionResponses(entries)), nil
}

func (s *BankingService) Deposit(ctx context.Context, userID string, req models.DepositRequest) (commons.Response[models.ReceiptResponse], error) {
	logger.Info("banking service deposit request", logger.Fields{
		"userId":  userID,
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.ReceiptResponse]("validation failed", err.Error()), errors.Join(ErrValidation, err)
	}

	accountNumber := strings.TrimSpace(req.AccountNumber)
	if err := s.ensureOwned(ctx, userID, accountNumber); err != nil {
		return failure[models.ReceiptResponse](err, "deposit failed")
	}

	receipt, err := s.ledger.Deposit(ctx, accountNumber, req.Amount)
	if err != nil {
		return failure[models.ReceiptResponse](err, "deposit failed")
	}
	return commons.SuccessResponse("deposit successful", toReceiptResponse(receipt)), nil
}

func (s *BankingService) Withdraw(ctx context.Context, userID string, req models.WithdrawRequest) (commons.Response[models.ReceiptResponse], error) {
	logger.Info("banking service withdraw request", logger.Fields{
		"userId":  userID,
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.ReceiptResponse]("validation failed", err.Error()), errors.Join(ErrValidation, err)
	}

	accountNumber := strings.TrimSpace(req.AccountNumber)
	if err := s.ensureOwned(ctx, userID, accountNumber); err != nil {
		return failure[models.ReceiptResponse](err, "withdrawal failed")
	}

	receipt, err := s.ledger.Withdraw(ctx, accountNumber, req.Amount)
	if err != nil {
		return failure[models.ReceiptResponse](err, "withdrawal failed")
	}
	return commons.SuccessResponse("withdrawal successful", toReceiptResponse(receipt)), nil
}

// Transfer requires the caller to own the source account only.
func (s *BankingService) Transfer(ctx context.Context, userID string, req models.TransferRequest) (commons.Response[models.TransferResponse], error) {
	logger.Info("banking service transfer request", logger.Fields{
		"userId":  userID,
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.TransferResponse]("validation failed", err.Error()), errors.Join(ErrValidation, err)
	}

	source := strings.TrimSpace(req.SourceAccountNumber)
	destination := strings.TrimSpace(req.DestinationAccountNumber)
	if source != destination {
		if err := s.ensureOwned(ctx, userID, source); err != nil {
			return failure[models.TransferResponse](err, "transfer failed")
		}
	}

	receipt, err := s.ledger.Transfer(ctx, source, destination, req.Amount)
	if err != nil {
		return failure[models.TransferResponse](err, "transfer failed")
	}
	return commons.SuccessResponse("transfer successful", toTransferResponse(receipt)), nil
}

func (s *BankingService) PayBill(ctx context.Context, userID string, req models.BillPaymentRequest) (commons.Response[models.ReceiptResponse], error) {
	logger.Info("banking service pay bill request", logger.Fields{
		"userId":  userID,
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.ReceiptResponse]("validation failed", err.Error()), errors.Join(ErrValidation, err)
	}

	accountNumber := strings.TrimSpace(req.AccountNumber)
	if err := s.ensureOwned(ctx, userID, accountNumber); err != nil {
		return failure[models.ReceiptResponse](err, "bill payment failed")
	}

	receipt, err := s.ledger.PayBill(ctx, accountNumber, domain.BillPayment{
		ServiceType: domain.ServiceType(models.NormalizeCode(req.ServiceType)),
		BillNumber:  strings.TrimSpace(req.BillNumber),
		Amount:      req.Amount,
	})
	if err != nil {
		return failure[models.ReceiptResponse](err, "bill payment failed")
	}
	return commons.SuccessResponse("bill paid successfully", toReceiptResponse(receipt)), nil
}

func (s *BankingService) ensureOwned(ctx context.Context, userID string, accountNumber string) error {
	account, err := s.ledger.GetAccount(ctx, accountNumber)
	if err != nil {
		return err
	}
	if account.OwnerID != userID {
		logger.Info("banking service account not owned", logger.Fields{
			"userId":        userID,
			"accountNumber": accountNumber,
		})
		return domain.ErrAccountNotOwned
	}
	return nil
}

// failure maps a ledger error to the response message shown to customers.
// Storage details never leave the service.
func failure[T any](err error, fallback string) (commons.Response[T], error) {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		return commons.ErrorResponse[T]("invalid amount", err.Error()), err
	case errors.Is(err, domain.ErrInvalidDestination):
		return commons.ErrorResponse[T]("invalid destination", err.Error()), err
	case errors.Is(err, domain.ErrInvalidAccountClass), errors.Is(err, domain.ErrInvalidBill):
		return commons.ErrorResponse[T]("validation failed", err.Error()), err
	case errors.Is(err, domain.ErrNotFound):
		return commons.ErrorResponse[T]("Account not found"), err
	case errors.Is(err, domain.ErrAccountNotOwned):
		return commons.ErrorResponse[T]("Account does not belong to user"), err
	case errors.Is(err, domain.ErrInsufficientFunds):
		return commons.ErrorResponse[T]("Insufficient balance"), err
	default:
		return commons.ErrorResponse[T](fallback, "Unable to complete request right now"), storageFailure(fallback, err)
	}
}
