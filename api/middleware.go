package api

import (
	"context"
	"net/http"
	"strings"

	"noteboard/auth"
	"noteboard/domain"
)

type contextKey struct{ name string }

var callerKey = &contextKey{"caller"}

// Caller returns the authenticated board identity of the request, if any.
func Caller(ctx context.Context) (domain.Address, bool) {
	addr, ok := ctx.Value(callerKey).(domain.Address)
	return addr, ok
}

// Authenticate resolves the bearer token into a caller address and stores it
// in the request context. Requests without a valid token are rejected; the
// board's own owner check still runs in the service layer.
func Authenticate(a auth.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			addr, err := a.ValidateToken(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), callerKey, addr)))
		})
	}
}
