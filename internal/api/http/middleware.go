package http

import (
	"context"
	"net/http"
	"strings"

	"sigap-backend/internal/apperr"
	"sigap-backend/internal/domain"
	"sigap-backend/internal/repository"
	"sigap-backend/internal/security"
)

type contextKey string

const userContextKey contextKey = "authenticated-user"

// AuthMiddleware validates the bearer token and loads the current account
// from the database, so role changes and deactivation apply immediately
// instead of at token expiry.
type AuthMiddleware struct {
	tokens   security.TokenManager
	userRepo repository.UserRepository
}

func NewAuthMiddleware(tokens security.TokenManager, userRepo repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, userRepo: userRepo}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, r, apperr.Authentication("missing bearer token"))
			return
		}
		claims, err := m.tokens.Validate(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			writeError(w, r, apperr.Authentication("invalid or expired token"))
			return
		}
		user, err := m.userRepo.GetByID(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, r, apperr.Authentication("account no longer exists"))
			return
		}
		if !user.IsActive {
			writeError(w, r, apperr.Forbidden("account is deactivated"))
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles wraps a handler so only the named roles reach it. An
// authenticated caller with the wrong role gets 403, not 404: resources are
// not hidden, they are refused.
func RequireRoles(roles ...domain.Role) func(http.HandlerFunc) http.HandlerFunc {
	allowed := make(map[domain.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			user := UserFromContext(r.Context())
			if user == nil {
				writeError(w, r, apperr.Authentication("not authenticated"))
				return
			}
			if !allowed[user.Role] {
				writeError(w, r, apperr.Forbidden("insufficient role"))
				return
			}
			next(w, r)
		}
	}
}

// UserFromContext returns the authenticated user, or nil outside the
// authenticated subtree.
func UserFromContext(ctx context.Context) *domain.User {
	user, _ := ctx.Value(userContextKey).(*domain.User)
	return user
}
