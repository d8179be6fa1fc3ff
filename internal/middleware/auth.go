package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/hlog"
	"podcast-generator/internal/auth"
)

type contextKey string

// UserIDContextKey is the key for the authenticated user id in the context.
const UserIDContextKey = contextKey("user_id")

// UserIDFromContext returns the id stored by Auth.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDContextKey).(string)
	return userID, ok && userID != ""
}

// WithUserID returns a copy of ctx carrying userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDContextKey, userID)
}

// Auth resolves the bearer token through authn and stores the user id in the
// request context.
func Auth(authn auth.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				WriteFailure(w, http.StatusUnauthorized, "Authorization header is required")
				return
			}

			scheme, token, found := strings.Cut(authHeader, " ")
			token = strings.TrimSpace(token)
			if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
				WriteFailure(w, http.StatusUnauthorized, "Authorization header format must be 'Bearer <token>'")
				return
			}

			userID, err := authn.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, auth.ErrInvalidToken) {
					hlog.FromRequest(r).Warn().Err(err).Msg("Rejected credential")
					WriteFailure(w, http.StatusUnauthorized, "Invalid or expired token")
					return
				}
				hlog.FromRequest(r).Error().Err(err).Msg("Identity lookup failed")
				WriteFailure(w, http.StatusUnauthorized, "Unable to verify credentials")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}
