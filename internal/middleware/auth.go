package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/mkarim/marketplace/internal/apperror"
	"github.com/mkarim/marketplace/internal/model"
	"github.com/mkarim/marketplace/internal/service"
)

// contextKey is unexported so only this package can read or write the
// authenticated user in a request context.
type contextKey string

const userKey contextKey = "user"

// RequireAuth gates protected routes behind a bearer session token.
//
// It reads "Authorization: Bearer <token>", resolves the token to its user
// and stores the user in the request context. The two failure modes get
// distinct statuses, which the frontend relies on to tell "log in first"
// apart from "your session died":
//
//	no token at all      → 401 unauthenticated
//	unknown/expired token → 403 forbidden
func RequireAuth(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := auth.UserFromToken(r.Context(), bearerToken(r))
			if err != nil {
				switch {
				case errors.Is(err, apperror.ErrUnauthenticated):
					writeAuthError(w, http.StatusUnauthorized, "unauthenticated", "Access token required")
				case errors.Is(err, apperror.ErrForbidden):
					writeAuthError(w, http.StatusForbidden, "forbidden", "Invalid or expired token")
				default:
					writeAuthError(w, http.StatusInternalServerError, "internal_error", "An internal error occurred")
				}
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext retrieves the authenticated user placed there by
// RequireAuth. ok is false on unprotected routes.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok && user != nil
}

// bearerToken extracts the token from the Authorization header; "" when the
// header is missing or not a Bearer scheme.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func writeAuthError(w http.ResponseWriter, status int, errType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + errType + `","message":"` + message + `"}`))
}
