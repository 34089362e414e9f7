package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/api-sage/atm-ledger/src/internal/domain"
	"github.com/api-sage/atm-ledger/src/internal/logger"
)

type Authenticator interface {
	Authenticate(ctx context.Context, username string, password string) (domain.User, error)
}

type contextKey struct{}

var userIDKey contextKey

// UserIDFromContext returns the customer verified by BasicAuth.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// WithUserID attaches a verified customer ID to ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// BasicAuth verifies customer credentials on every request and attaches the
// customer ID to the request context.
func BasicAuth(authenticator Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if authenticator == nil {
				logger.Error("basic auth middleware missing authenticator", nil, logger.Fields{
					"method": r.Method,
					"path":   r.URL.Path,
				})
				http.Error(w, "server auth configuration is missing", http.StatusInternalServerError)
				return
			}

			username, password, ok := r.BasicAuth()
			if !ok {
				unauthorized(w, r, "missing")
				return
			}

			user, err := authenticator.Authenticate(r.Context(), username, password)
			if err != nil {
				if errors.Is(err, domain.ErrInvalidCredentials) {
					unauthorized(w, r, "invalid")
					return
				}
				logger.Error("basic auth middleware authentication failed", err, logger.Fields{
					"method": r.Method,
					"path":   r.URL.Path,
				})
				http.Error(w, "authentication unavailable", http.StatusInternalServerError)
				return
			}

			logger.Info("basic auth middleware authorized request", logger.Fields{
				"method": r.Method,
				"path":   r.URL.Path,
				"userId": user.ID,
			})
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), user.ID)))
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request, credentials string) {
	logger.Info("basic auth middleware unauthorized request", logger.Fields{
		"method":      r.Method,
		"path":        r.URL.Path,
		"credentials": credentials,
	})
	w.Header().Set("WWW-Authenticate", `Basic realm="atm-ledger"`)
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}
