package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/api-sage/atm-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/atm-ledger/src/internal/commons"
	"github.com/api-sage/atm-ledger/src/internal/domain"
	"github.com/api-sage/atm-ledger/src/internal/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	userRepo    domain.UserRepository
	accountRepo domain.AccountRepository
	allocator   *AccountNumberAllocator
}

func NewUserService(userRepo domain.UserRepository, accountRepo domain.AccountRepository, allocator *AccountNumberAllocator) *UserService {
	return &UserService{
		userRepo:    userRepo,
		accountRepo: accountRepo,
		allocator:   allocator,
	}
}

// Register creates a customer together with its first account.
func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (commons.Response[models.RegisterResponse], error) {
	logger.Info("user service register request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		logger.Error("user service register validation failed", err, nil)
		return commons.ErrorResponse[models.RegisterResponse]("validation failed", err.Error()), errors.Join(ErrValidation, err)
	}

	passwordHash, err := hashPassword(req.Password)
	if err != nil {
		logger.Error("user service register hash password failed", err, nil)
		return commons.ErrorResponse[models.RegisterResponse]("failed to register user", "Unable to register user right now"), err
	}

	var phoneNumber *string
	if trimmed := strings.TrimSpace(req.PhoneNumber); trimmed != "" {
		phoneNumber = &trimmed
	}

	user := domain.User{
		ID:             uuid.NewString(),
		Username:       strings.ToLower(strings.TrimSpace(req.Username)),
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		Identification: strings.TrimSpace(req.Identification),
		PhoneNumber:    phoneNumber,
		PasswordHash:   passwordHash,
	}
	class := domain.AccountClass(models.NormalizeCode(req.AccountClass))

	var (
		createdUser    domain.User
		createdAccount domain.Account
	)
	err = s.allocator.Allocate(ctx, func(ctx context.Context, accountNumber string) error {
		u, a, err := s.userRepo.CreateWithAccount(ctx, user, domain.Account{
			AccountNumber: accountNumber,
			Class:         class,
			Balance:       decimal.Zero,
		})
		if err != nil {
			return err
		}
		createdUser, createdAccount = u, a
		return nil
	})
	if err != nil {
		logger.Error("user service register repository failed", err, logger.Fields{
			"username": user.Username,
		})
		if errors.Is(err, domain.ErrDuplicateUser) {
			return commons.ErrorResponse[models.RegisterResponse]("user already exists", "username, email or identification is already registered"), err
		}
		return commons.ErrorResponse[models.RegisterResponse]("failed to register user", "Unable to register user right now"), storageFailure("register user", err)
	}

	response := models.RegisterResponse{
		ID:            createdUser.ID,
		Username:      createdUser.Username,
		Email:         createdUser.Email,
		AccountNumber: createdAccount.AccountNumber,
		AccountClass:  string(createdAccount.Class),
		CreatedAt:     createdUser.CreatedAt.Format(time.RFC3339),
	}

	logger.Info("user service register success", logger.Fields{
		"userId":        response.ID,
		"username":      response.Username,
		"accountNumber": response.AccountNumber,
	})

	return commons.SuccessResponse("user registered successfully", response), nil
}

// Authenticate verifies a username and password pair. Unknown users and wrong
// passwords are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, username string, password string) (domain.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || password == "" {
		return domain.User{}, domain.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.Info("user service authenticate unknown user", logger.Fields{"username": username})
			return domain.User{}, domain.ErrInvalidCredentials
		}
		logger.Error("user service authenticate lookup failed", err, logger.Fields{"username": username})
		return domain.User{}, storageFailure("authenticate", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Info("user service authenticate wrong password", logger.Fields{"username": username})
		return domain.User{}, domain.ErrInvalidCredentials
	}

	return user, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (commons.Response[models.ProfileResponse], error) {
	logger.Info("user service get profile request", logger.Fields{
		"userId": userID,
	})

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		logger.Error("user service get profile failed", err, logger.Fields{"userId": userID})
		if errors.Is(err, domain.ErrNotFound) {
			return commons.ErrorResponse[models.ProfileResponse]("User not found"), err
		}
		return commons.ErrorResponse[models.ProfileResponse]("failed to get user", "Unable to fetch user right now"), storageFailure("get user", err)
	}

	accounts, err := s.accountRepo.ListByOwner(ctx, userID)
	if err != nil {
		logger.Error("user service list accounts failed", err, logger.Fields{"userId": userID})
		return commons.ErrorResponse[models.ProfileResponse]("failed to get user", "Unable to fetch user right now"), storageFailure("list accounts", err)
	}

	response := models.ProfileResponse{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		Identification: user.Identification,
		PhoneNumber:    user.PhoneNumber,
		CreatedAt:      user.CreatedAt.Format(time.RFC3339),
		Accounts:       toAccountResponses(accounts),
	}

	return commons.SuccessResponse("user fetched successfully", response), nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
