package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/api-sage/atm-ledger/src/internal/adapter/http/middleware"
	"github.com/api-sage/atm-ledger/src/internal/commons"
	"github.com/api-sage/atm-ledger/src/internal/domain"
	"github.com/api-sage/atm-ledger/src/internal/logger"
	"github.com/api-sage/atm-ledger/src/internal/usecase/services"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidDestination),
		errors.Is(err, domain.ErrInvalidAccountClass),
		errors.Is(err, domain.ErrInvalidBill):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrAccountNotOwned):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateUser):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respond writes a service result, choosing the status from err.
func respond[T any](w http.ResponseWriter, r *http.Request, start time.Time, successStatus int, response commons.Response[T], err error) {
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		status := statusFor(err)
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, successStatus, response)
	logResponse(r, successStatus, response, start)
}

func reject[T any](w http.ResponseWriter, r *http.Request, start time.Time, status int, message string, details ...string) {
	response := commons.ErrorResponse[T](message, details...)
	writeJSON(w, status, response)
	logResponse(r, status, response, start)
}

// customerID returns the user verified by the auth middleware.
func customerID[T any](w http.ResponseWriter, r *http.Request, start time.Time) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		reject[T](w, r, start, http.StatusUnauthorized, "unauthorized")
		return "", false
	}
	return userID, true
}

func decodeBody[T any, Req any](w http.ResponseWriter, r *http.Request, start time.Time, req *Req) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		logError(r, err, nil)
		reject[T](w, r, start, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	logRequest(r, *req)
	return true
}
