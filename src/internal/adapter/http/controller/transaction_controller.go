package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/api-sage/atm-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/atm-ledger/src/internal/commons"
)

type TransactionService interface {
	Deposit(ctx context.Context, userID string, req models.DepositRequest) (commons.Response[models.ReceiptResponse], error)
	Withdraw(ctx context.Context, userID string, req models.WithdrawRequest) (commons.Response[models.ReceiptResponse], error)
	Transfer(ctx context.Context, userID string, req models.TransferRequest) (commons.Response[models.TransferResponse], error)
	PayBill(ctx context.Context, userID string, req models.BillPaymentRequest) (commons.Response[models.ReceiptResponse], error)
}

type TransactionController struct {
	service TransactionService
}

func NewTransactionController(service TransactionService) *TransactionController {
	return &TransactionController{service: service}
}

func (c *TransactionController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	routes := map[string]http.HandlerFunc{
		"/deposit":       c.deposit,
		"/withdraw":      c.withdraw,
		"/transfer":      c.transfer,
		"/bill-payments": c.payBill,
	}
	for pattern, handler := range routes {
		if authMiddleware != nil {
			handler = authMiddleware(handler).ServeHTTP
		}
		mux.Handle(pattern, handler)
	}
}

func (c *TransactionController) deposit(w http.ResponseWriter, r *http.Request) {
	handlePost(w, r, c.service.Deposit)
}

func (c *TransactionController) withdraw(w http.ResponseWriter, r *http.Request) {
	handlePost(w, r, c.service.Withdraw)
}

func (c *TransactionController) transfer(w http.ResponseWriter, r *http.Request) {
	handlePost(w, r, c.service.Transfer)
}

func (c *TransactionController) payBill(w http.ResponseWriter, r *http.Request) {
	handlePost(w, r, c.service.PayBill)
}

// handlePost runs the shared flow of a money-moving endpoint: method check,
// caller identity, body decoding, then the service call.
func handlePost[Req any, Resp any](
	w http.ResponseWriter,
	r *http.Request,
	call func(ctx context.Context, userID string, req Req) (commons.Response[Resp], error),
) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodPost {
		reject[Resp](w, r, start, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	userID, ok := customerID[Resp](w, r, start)
	if !ok {
		return
	}

	var req Req
	if !decodeBody[Resp](w, r, start, &req) {
		return
	}

	response, err := call(r.Context(), userID, req)
	respond(w, r, start, http.StatusOK, response, err)
}
