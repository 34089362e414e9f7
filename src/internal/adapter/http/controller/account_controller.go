package controller

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/api-sage/atm-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/atm-ledger/src/internal/commons"
)

type AccountService interface {
	OpenAccount(ctx context.Context, userID string, req models.OpenAccountRequest) (commons.Response[models.AccountResponse], error)
	ListAccounts(ctx context.Context, userID string) (commons.Response[[]models.AccountResponse], error)
	GetAccount(ctx context.Context, userID string, accountNumber string) (commons.Response[models.AccountDetailsResponse], error)
	ListTransactions(ctx context.Context, userID string, accountNumber string, limit int) (commons.Response[[]models.TransactionResponse], error)
}

type AccountController struct {
	service      AccountService
	defaultLimit int
}

func NewAccountController(service AccountService, defaultLimit int) *AccountController {
	return &AccountController{service: service, defaultLimit: defaultLimit}
}

func (c *AccountController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	accountsHandler := http.HandlerFunc(c.accounts)
	accountHandler := http.HandlerFunc(c.getAccount)
	transactionsHandler := http.HandlerFunc(c.listTransactions)
	if authMiddleware != nil {
		accountsHandler = authMiddleware(accountsHandler).ServeHTTP
		accountHandler = authMiddleware(accountHandler).ServeHTTP
		transactionsHandler = authMiddleware(transactionsHandler).ServeHTTP
	}
	mux.Handle("/accounts", http.HandlerFunc(accountsHandler))
	mux.Handle("/accounts/{accountNumber}", http.HandlerFunc(accountHandler))
	mux.Handle("/accounts/{accountNumber}/transactions", http.HandlerFunc(transactionsHandler))
}

func (c *AccountController) accounts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		c.listAccounts(w, r)
	case http.MethodPost:
		c.openAccount(w, r)
	default:
		start := time.Now()
		logRequest(r, nil)
		reject[models.AccountResponse](w, r, start, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (c *AccountController) openAccount(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	userID, ok := customerID[models.AccountResponse](w, r, start)
	if !ok {
		return
	}

	var req models.OpenAccountRequest
	if !decodeBody[models.AccountResponse](w, r, start, &req) {
		return
	}

	response, err := c.service.OpenAccount(r.Context(), userID, req)
	respond(w, r, start, http.StatusCreated, response, err)
}

func (c *AccountController) listAccounts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	userID, ok := customerID[[]models.AccountResponse](w, r, start)
	if !ok {
		return
	}

	response, err := c.service.ListAccounts(r.Context(), userID)
	respond(w, r, start, http.StatusOK, response, err)
}

func (c *AccountController) getAccount(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodGet {
		reject[models.AccountDetailsResponse](w, r, start, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	userID, ok := customerID[models.AccountDetailsResponse](w, r, start)
	if !ok {
		return
	}

	response, err := c.service.GetAccount(r.Context(), userID, r.PathValue("accountNumber"))
	respond(w, r, start, http.StatusOK, response, err)
}

func (c *AccountController) listTransactions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodGet {
		reject[[]models.TransactionResponse](w, r, start, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	userID, ok := customerID[[]models.TransactionResponse](w, r, start)
	if !ok {
		return
	}

	limit := c.defaultLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			reject[[]models.TransactionResponse](w, r, start, http.StatusBadRequest, "validation failed", "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	response, err := c.service.ListTransactions(r.Context(), userID, r.PathValue("accountNumber"), limit)
	respond(w, r, start, http.StatusOK, response, err)
}
