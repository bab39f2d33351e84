package middleware

import (
	"context"
	"net/http"
	"strings"

	"belt-and-braces/internal/domain"
	"belt-and-braces/internal/service"

	"go.uber.org/zap"
)

type contextKey string

const (
	UserKey contextKey = "user"
)

// AuthMiddleware extracts a bearer token from the Authorization header and
// resolves it to a stored user. Requests without a valid token never reach
// the wrapped handler.
func AuthMiddleware(users service.UserService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug("Missing authorization header")
				respondWithError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				logger.Debug("Invalid authorization header format")
				respondWithError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			user, err := users.ResolveToken(r.Context(), parts[1])
			if err != nil {
				if err == service.ErrInvalidToken {
					logger.Debug("Token validation failed", zap.Error(err))
					respondWithError(w, http.StatusUnauthorized, "invalid token")
					return
				}
				logger.Error("Failed to resolve token", zap.Error(err))
				respondWithError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)

			logger.Debug("User authenticated",
				zap.Int64("user_id", user.ID),
				zap.String("username", user.Username),
			)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser extracts the authenticated user from the request context
func GetUser(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(UserKey).(*domain.User)
	return user, ok
}
