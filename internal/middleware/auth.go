package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/sharenet/backend/internal/api"
)

type contextKey string

const ctxAccountIDKey contextKey = "account_id"

// TokenValidator resolves a bearer token to an account id.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (int64, error)
}

// JWTAuth authenticates requests by validating the Bearer token and setting
// the account id into the request context.
func JWTAuth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := extractBearer(r)
			if raw == "" {
				api.Error(w, http.StatusUnauthorized, "missing or malformed Authorization header")
				return
			}
			accountID, err := validator.ValidateToken(r.Context(), raw)
			if err != nil {
				api.Error(w, http.StatusUnauthorized, "invalid token")
				return
			}
			ctx := context.WithValue(r.Context(), ctxAccountIDKey, accountID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AccountIDFromCtx returns the authenticated account id, or false when the
// request was not authenticated.
func AccountIDFromCtx(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(ctxAccountIDKey).(int64)
	return id, ok
}

// WithAccountID returns a context carrying the given account id. Used by tests.
func WithAccountID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, ctxAccountIDKey, id)
}

func extractBearer(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(authz, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authz, prefix))
}
