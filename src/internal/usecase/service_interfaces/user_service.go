package service_interfaces

import (
	"context"

	"github.com/api-sage/atm-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/atm-ledger/src/internal/commons"
	"github.com/api-sage/atm-ledger/src/internal/domain"
)

type UserService interface {
	Register(ctx context.Context, req models.RegisterRequest) (commons.Response[models.RegisterResponse], error)
	Authenticate(ctx context.Context, username string, password string) (domain.User, error)
	GetProfile(ctx context.Context, userID string) (commons.Response[models.ProfileResponse], error)
}
