package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/api-sage/atm-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/atm-ledger/src/internal/commons"
)

type UserService interface {
	Register(ctx context.Context, req models.RegisterRequest) (commons.Response[models.RegisterResponse], error)
	GetProfile(ctx context.Context, userID string) (commons.Response[models.ProfileResponse], error)
}

type UserController struct {
	service UserService
}

func NewUserController(service UserService) *UserController {
	return &UserController{service: service}
}

// RegisterRoutes leaves /register public; /me needs a verified customer.
func (c *UserController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	profileHandler := http.HandlerFunc(c.getProfile)
	if authMiddleware != nil {
		profileHandler = authMiddleware(profileHandler).ServeHTTP
	}
	mux.Handle("/register", http.HandlerFunc(c.register))
	mux.Handle("/me", http.HandlerFunc(profileHandler))
}

func (c *UserController) register(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodPost {
		reject[models.RegisterResponse](w, r, start, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req models.RegisterRequest
	if !decodeBody[models.RegisterResponse](w, r, start, &req) {
		return
	}

	response, err := c.service.Register(r.Context(), req)
	respond(w, r, start, http.StatusCreated, response, err)
}

func (c *UserController) getProfile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodGet {
		reject[models.ProfileResponse](w, r, start, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	userID, ok := customerID[models.ProfileResponse](w, r, start)
	if !ok {
		return
	}

	response, err := c.service.GetProfile(r.Context(), userID)
	respond(w, r, start, http.StatusOK, response, err)
}
