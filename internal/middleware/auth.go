package middleware

import (
	"context"
	"net/http"

	"github.com/openaudit/openaudit/internal/domain"
	"github.com/openaudit/openaudit/internal/errors"
	"github.com/openaudit/openaudit/internal/utils"
)

// Key to store the resolved user in the request context
type key int

const userContextKey key = 0

// SessionResolver maps a session token to an authenticated user.
// A nil user with a nil error means anonymous; resolution never fails the
// request on its own.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*domain.User, error)
}

// ResolveSession resolves the session cookie on every request and attaches
// the identity (if any) to the request context. Requests without a valid
// session proceed as anonymous.
func ResolveSession(resolver SessionResolver, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := resolver.Resolve(r.Context(), cookie.Value)
			if err != nil {
				utils.WriteError(w, err)
				return
			}
			if user == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuthenticated rejects anonymous requests. Must run after
// ResolveSession.
func RequireAuthenticated() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetUserFromContext(r) == nil {
				utils.WriteError(w, &errors.ErrorWithStatusCode{
					Message:    "Please sign in.",
					StatusCode: http.StatusUnauthorized,
					Code:       errors.CodeUnauthenticated,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetUserFromContext returns the resolved user, or nil for anonymous.
func GetUserFromContext(r *http.Request) *domain.User {
	user, ok := r.Context().Value(userContextKey).(*domain.User)
	if !ok {
		return nil
	}
	return user
}
