package server

import (
	"context"
	"net/http"
	"strings"

	apperrors "github.com/vidtube/vidtube-server/internal/errors"
	"github.com/vidtube/vidtube-server/internal/metrics"
	"github.com/vidtube/vidtube-server/users"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyUser stores the authenticated user (public view)
const ContextKeyUser ContextKey = "user"

const bearerPrefix = "Bearer "

// RequireAuth is the authentication gate for API routes. It accepts the
// access token from the accessToken cookie or an "Authorization: Bearer"
// header and attaches the user it was issued for to the request context.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			accessToken := extractAccessToken(r)

			user, err := s.sessions.Authenticate(r.Context(), accessToken)
			if err != nil {
				metrics.RecordGateRejection(gateRejectionReason(accessToken, err))
				writeError(w, r, err)
				return
			}

			next(w, r.WithContext(WithUser(r.Context(), user)))
		}
	}
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *users.User) context.Context {
	return context.WithValue(ctx, ContextKeyUser, user)
}

// UserFromContext returns the user attached by RequireAuth.
func UserFromContext(ctx context.Context) (*users.User, bool) {
	user, ok := ctx.Value(ContextKeyUser).(*users.User)
	return user, ok && user != nil
}

func extractAccessToken(r *http.Request) string {
	if cookie, err := r.Cookie(accessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if len(header) > len(bearerPrefix) && strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return strings.TrimSpace(header[len(bearerPrefix):])
	}
	return ""
}

func gateRejectionReason(accessToken string, err error) string {
	if accessToken == "" {
		return "missing_token"
	}
	return apperrors.KindOf(err).String()
}
